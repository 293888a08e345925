// Package chatcmder provides the chat command for an interactive session
// against a running nexus API server.
package chatcmder

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Yash3561/Nexus/pkg/assistant"
	"github.com/Yash3561/Nexus/pkg/cliui"
	"github.com/Yash3561/Nexus/pkg/config"
	"github.com/Yash3561/Nexus/pkg/logger"
	"github.com/Yash3561/Nexus/pkg/search"
	"github.com/Yash3561/Nexus/pkg/sse"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("nexus> ")
)

type chatCommander struct {
	apiTarget string
	userID    string
	sessionID string
	markdown  bool
	debug     bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
	width  int
	client *http.Client
	logger *slog.Logger
}

type streamRequest struct {
	Text      string `json:"text"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// streamFrame is the union of the chunk, done and error frames sent by
// /api/stream.
type streamFrame struct {
	Chunk    string          `json:"chunk"`
	Done     bool            `json:"done"`
	FullText string          `json:"full_text"`
	Sources  []search.Source `json:"sources"`
	Error    string          `json:"error"`
}

// reply is a completed assistant turn.
type reply struct {
	Text    string
	Sources []search.Source
}

const chatLongDesc string = `Start an interactive chat session with a running nexus server.

Each message is sent to the server's streaming endpoint and the reply is
printed as it arrives. Web sources used for the answer are listed after the
reply. The conversation is remembered by the server under --user and
--session, so re-running with the same session continues it.

Examples:
  nexus chat
  nexus chat --user ava --session kitchen
  nexus chat --api-target http://localhost:8000 --markdown`

const chatShortDesc string = "Interactive chat with a nexus server"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed(config.FlagAPITarget) {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			cmder.in = cmd.InOrStdin()
			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.Registry, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().StringVarP(&cmder.userID, "user", "u", assistant.DefaultUserID, "User the conversation belongs to")
	cmd.Flags().StringVarP(&cmder.sessionID, "session", "s", "", "Session to continue (a new one is started when empty)")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render replies as markdown once complete")

	return cmd
}

func (c *chatCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.logger == nil {
		c.logger = logger.New(logger.WithDebug(c.debug), logger.WithWriter(c.errOut))
	}
	if c.client == nil {
		c.client = &http.Client{
			// replies may include a web search and a slow model
			Timeout: 5 * time.Minute,
		}
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}

	cliui.SetOutput(c.out)
	c.width = cliui.Width(c.out)
	// markdown is only rendered for a terminal
	if c.markdown && !cliui.IsTerminal(c.out) {
		c.markdown = false
	}

	fmt.Fprintln(c.out)
	fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("Server:"), cliui.ValueStyle.Render(c.apiTarget))
	fmt.Fprintf(c.out, "  %s %s\n", cliui.KeyStyle.Render("User:"), cliui.NameStyle.Render(c.userID))
	fmt.Fprintf(c.out, "  %s %s\n\n", cliui.KeyStyle.Render("Session:"), cliui.DimStyle.Render(c.sessionID))
	fmt.Fprintf(c.out, "  %s\n\n", cliui.DimStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, userPrompt)
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		r, err := c.sendAndStream(ctx, input)
		if err != nil {
			fmt.Fprintf(c.errOut, "\n  %s %v\n\n", cliui.FailMark, err)
			continue
		}
		c.printReply(r)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Fprintln(c.out)
	return nil
}

// sendAndStream posts one message to /api/stream and prints chunks as they
// arrive. It returns once the done frame is read.
func (c *chatCommander) sendAndStream(ctx context.Context, text string) (*reply, error) {
	body, err := json.Marshal(streamRequest{
		Text:      text,
		UserID:    c.userID,
		SessionID: c.sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	c.logger.Debug("sending chat request",
		"api_target", c.apiTarget,
		"user_id", c.userID,
		"session_id", c.sessionID,
	)

	url := strings.TrimRight(c.apiTarget, "/") + "/api/stream"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if !c.markdown {
		fmt.Fprint(c.out, assistantPrompt)
	}

	var partial strings.Builder
	events := sse.NewReader(resp.Body)
	for {
		ev, err := events.Next()
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		if ev == nil {
			return nil, errors.New("stream ended before the reply was complete")
		}

		var frame streamFrame
		if err := json.Unmarshal([]byte(ev.Data), &frame); err != nil {
			c.logger.Debug("failed to parse stream frame", "error", err, "data", ev.Data)
			continue
		}

		switch {
		case frame.Error != "":
			return nil, errors.New(frame.Error)
		case frame.Done:
			text := frame.FullText
			if text == "" {
				text = partial.String()
			}
			if !c.markdown && partial.Len() == 0 {
				fmt.Fprint(c.out, text)
			}
			return &reply{Text: text, Sources: frame.Sources}, nil
		case frame.Chunk != "":
			partial.WriteString(frame.Chunk)
			if !c.markdown {
				fmt.Fprint(c.out, frame.Chunk)
			}
		}
	}
}

func (c *chatCommander) printReply(r *reply) {
	if c.markdown {
		rendered, err := cliui.RenderMarkdown(r.Text)
		if err != nil {
			c.logger.Debug("markdown render failed", "error", err)
		}
		fmt.Fprint(c.out, assistantPrompt)
		fmt.Fprint(c.out, rendered)
	}
	fmt.Fprintln(c.out)

	if len(r.Sources) > 0 {
		fmt.Fprintf(c.out, "\n  %s\n", cliui.KeyStyle.Render("Sources:"))
		for i, src := range r.Sources {
			line := fmt.Sprintf("  %d. %s %s", i+1, cliui.ValueStyle.Render(src.Title), cliui.DimStyle.Render(src.Domain))
			fmt.Fprintln(c.out, cliui.Fit(line, c.width))
		}
	}
	fmt.Fprintln(c.out)
}
