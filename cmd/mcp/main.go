// Package main provides the entry point for the NoSwipe MCP server.
//
// This MCP server allows AI agents to interact with the NoSwipe matching
// API programmatically.
//
// Configuration:
//
//	NOSWIPE_API_URL   - Base URL of the API (default: https://api.noswipe.app)
//	NOSWIPE_API_TOKEN - API token for authentication (required, format: user_api|xxx)
package main

import (
	"log"
	"os"

	"github.com/noswipe/noswipe-backend/cmd/mcp/client"
	"github.com/noswipe/noswipe-backend/cmd/mcp/server"
)

func main() {
	apiURL := os.Getenv("NOSWIPE_API_URL")
	if apiURL == "" {
		apiURL = "https://api.noswipe.app"
	}

	apiToken := os.Getenv("NOSWIPE_API_TOKEN")
	if apiToken == "" {
		log.Fatal("NOSWIPE_API_TOKEN environment variable is required")
	}

	apiClient := client.NewClient(apiURL, apiToken)
	srv := server.NewServer(apiClient)

	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
