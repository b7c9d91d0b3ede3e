package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerResources() {
	// Register the compatibility resource template
	s.mcpServer.AddResourceTemplate(
		mcp.NewResourceTemplate(
			"compatibility://{target_id}",
			"Compatibility score against one profile",
			mcp.WithTemplateDescription(
				"Fetch the mutual compatibility score between the authenticated "+
					"user and the profile identified by target_id. The score blends "+
					"the pair's photo preference predictions with their interest "+
					"similarity, on a 0-1 scale."),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleCompatibilityResource,
	)
}

func (s *Server) handleCompatibilityResource(
	ctx context.Context,
	request mcp.ReadResourceRequest,
) ([]mcp.ResourceContents, error) {
	// Extract target_id from the URI (format: compatibility://{target_id})
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "compatibility://") {
		return nil, fmt.Errorf("invalid compatibility URI format: %s", uri)
	}

	targetID := strings.TrimPrefix(uri, "compatibility://")
	if targetID == "" {
		return nil, fmt.Errorf("missing target_id in URI: %s", uri)
	}

	compatibility, err := s.client.GetCompatibility(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch compatibility for %s: %w", targetID, err)
	}

	data, err := json.MarshalIndent(compatibility, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal compatibility: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
