package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	profileLookupToolName    = "profile_lookup"
	profileLookupDescription = "Look up what nexus remembers about a user: their name, extracted facts and stated preferences."
)

// ProfileLookupInput represents the input arguments for the profile_lookup tool.
type ProfileLookupInput struct {
	UserID string `json:"user_id" jsonschema:"the id of the user to look up"`
}

// ProfileLookupOutput represents the structured output of a profile lookup.
type ProfileLookupOutput struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name,omitempty"`
	Facts       []string          `json:"facts"`
	Preferences map[string]string `json:"preferences"`
}

func (s *Server) handleProfileLookup(ctx context.Context, _ *mcp.CallToolRequest, input ProfileLookupInput) (*mcp.CallToolResult, ProfileLookupOutput, error) {
	if input.UserID == "" {
		return errorResult("user_id is required"), ProfileLookupOutput{}, nil
	}

	h := s.config.Registry.Open(ctx, input.UserID, "")
	rec := h.Profile.Record()

	output := ProfileLookupOutput{
		UserID:      rec.UserID,
		Facts:       rec.Facts,
		Preferences: rec.Preferences,
	}
	if rec.Name != nil {
		output.Name = *rec.Name
	}
	if output.Facts == nil {
		output.Facts = []string{}
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize profile: %v", err)), ProfileLookupOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
