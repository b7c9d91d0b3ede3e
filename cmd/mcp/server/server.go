// Package server provides the MCP server implementation.
package server

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/noswipe/noswipe-backend/cmd/mcp/client"
)

// Server is the MCP server for the NoSwipe matching API.
type Server struct {
	client    *client.Client
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server with the given API client.
func NewServer(apiClient *client.Client) *Server {
	s := &Server{
		client: apiClient,
	}

	s.mcpServer = server.NewMCPServer(
		"noswipe",
		"1.0.0",
		server.WithResourceCapabilities(true, false),
		server.WithLogging(),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// list_matches - Current match batch
	s.mcpServer.AddTool(mcp.NewTool("list_matches",
		mcp.WithDescription(
			"List the current batch of matched prospects for the authenticated user, "+
				"sorted by compatibility score. A fresh batch is generated on demand "+
				"when none is live."),
	), s.handleListMatches)

	// get_compatibility - Score one pair
	s.mcpServer.AddTool(mcp.NewTool("get_compatibility",
		mcp.WithDescription(
			"Compute the mutual compatibility score between the authenticated user "+
				"and one other profile. Both sides need a calibrated preference model."),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("The user ID of the profile to score against"),
		),
	), s.handleGetCompatibility)

	// send_feedback - Record a feedback signal
	s.mcpServer.AddTool(mcp.NewTool("send_feedback",
		mcp.WithDescription(
			"Record a feedback signal toward another profile. This feeds the "+
				"authenticated user's preference model; a dislike also starts a "+
				"matching cooldown for the pair."),
		mcp.WithString("target_id",
			mcp.Required(),
			mcp.Description("The user ID of the profile the feedback is about"),
		),
		mcp.WithString("kind",
			mcp.Required(),
			mcp.Description(
				"Feedback kind: 'like', 'dislike', 'profile_view', 'chat_initiated', "+
					"'chat_replied', or 'extended_chat'"),
		),
	), s.handleSendFeedback)

	// calibrate - Fit the preference model
	s.mcpServer.AddTool(mcp.NewTool("calibrate",
		mcp.WithDescription(
			"Fit the authenticated user's photo preference model from their photo "+
				"ratings. Needs rated photos; returns the number of training samples used."),
	), s.handleCalibrate)

	// get_retrain_status - Recalibration recommendation
	s.mcpServer.AddTool(mcp.NewTool("get_retrain_status",
		mcp.WithDescription(
			"Report whether the authenticated user's recent feedback volume is high "+
				"enough that recalibrating their preference model is recommended."),
	), s.handleGetRetrainStatus)
}
