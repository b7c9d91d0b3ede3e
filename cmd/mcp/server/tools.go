package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/noswipe/noswipe-backend/cmd/mcp/client"
)

func (s *Server) handleListMatches(
	ctx context.Context,
	_ mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	matches, err := s.client.ListMatches(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list matches: %v", err)), nil
	}

	return formatMatchesResult(matches)
}

func (s *Server) handleGetCompatibility(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	targetID, ok := args["target_id"].(string)
	if !ok || targetID == "" {
		return mcp.NewToolResultError("target_id is required"), nil
	}

	compatibility, err := s.client.GetCompatibility(ctx, targetID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to get compatibility: %v", err)
		return mcp.NewToolResultError(errMsg), nil
	}

	msg := fmt.Sprintf("Compatibility with %s: %.3f", compatibility.TargetID, compatibility.Score)
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleSendFeedback(
	ctx context.Context,
	request mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments

	targetID, ok := args["target_id"].(string)
	if !ok || targetID == "" {
		return mcp.NewToolResultError("target_id is required"), nil
	}

	kind, ok := args["kind"].(string)
	if !ok || kind == "" {
		return mcp.NewToolResultError("kind is required"), nil
	}

	result, err := s.client.SendFeedback(ctx, kind, targetID)
	if err != nil {
		errMsg := fmt.Sprintf("failed to send feedback: %v", err)
		return mcp.NewToolResultError(errMsg), nil
	}

	msg := fmt.Sprintf("Recorded '%s' toward %s (weight %.1f)", result.Kind, targetID, result.Score)
	if result.RetrainDue {
		msg += "; enough recent feedback has accumulated that recalibration is recommended"
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleCalibrate(
	ctx context.Context,
	_ mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	result, err := s.client.Calibrate(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to calibrate: %v", err)), nil
	}

	msg := fmt.Sprintf("Calibrated preference model from %d rated photos (extractor %s)",
		result.Samples, result.ExtractorVersion)
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleGetRetrainStatus(
	ctx context.Context,
	_ mcp.CallToolRequest,
) (*mcp.CallToolResult, error) {
	status, err := s.client.GetRetrainStatus(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get retrain status: %v", err)), nil
	}

	recommendation := "not recommended"
	if status.RetrainRecommended {
		recommendation = "recommended"
	}
	msg := fmt.Sprintf("Recalibration %s: %d feedback events in the trailing week (threshold %d)",
		recommendation, status.RecentEvents, status.Threshold)
	return mcp.NewToolResultText(msg), nil
}

func formatMatchesResult(matches []client.Match) (*mcp.CallToolResult, error) {
	if len(matches) == 0 {
		return mcp.NewToolResultText("No matches in the current batch."), nil
	}

	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		errMsg := fmt.Sprintf("failed to format matches: %v", err)
		return mcp.NewToolResultError(errMsg), nil
	}

	msg := fmt.Sprintf("Found %d match(es):\n\n%s", len(matches), string(data))
	return mcp.NewToolResultText(msg), nil
}
