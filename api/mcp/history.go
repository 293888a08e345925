package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Yash3561/Nexus/pkg/memory"
)

var (
	historyToolName    = "conversation_history"
	historyDescription = "Return the most recent messages of a nexus conversation session. Without a session_id, today's default session for the user is used."
)

const defaultHistoryLimit = 20

// HistoryInput represents the input arguments for the conversation_history tool.
type HistoryInput struct {
	UserID    string `json:"user_id" jsonschema:"the id of the user who owns the session"`
	SessionID string `json:"session_id,omitempty" jsonschema:"the session id, defaults to today's session"`
	Limit     int    `json:"limit,omitempty" jsonschema:"maximum number of trailing messages to return, default 20"`
}

// HistoryOutput represents the structured output of a history request.
type HistoryOutput struct {
	SessionID string           `json:"session_id"`
	Total     int              `json:"total"`
	Messages  []memory.Message `json:"messages"`
}

func (s *Server) handleConversationHistory(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
	if input.UserID == "" {
		return errorResult("user_id is required"), HistoryOutput{}, nil
	}
	if input.Limit < 0 {
		return errorResult("limit must not be negative"), HistoryOutput{}, nil
	}

	limit := input.Limit
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	h := s.config.Registry.Open(ctx, input.UserID, input.SessionID)
	msgs := h.Conversation.Messages()
	total := len(msgs)
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	output := HistoryOutput{
		SessionID: h.SessionID,
		Total:     total,
		Messages:  msgs,
	}
	if output.Messages == nil {
		output.Messages = []memory.Message{}
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize history: %v", err)), HistoryOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
