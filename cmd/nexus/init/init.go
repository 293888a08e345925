// Package initcmder provides the init command for initializing a local .nexus
// directory in the current working directory.
package initcmder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Yash3561/Nexus/pkg/cliui"
	"github.com/Yash3561/Nexus/pkg/config"
)

const (
	dirName = ".nexus"

	fetchTimeout = 30 * time.Second
)

const initLongDesc string = `Initialize a new .nexus/ directory in the current working directory.

Creates a local .nexus/ directory that takes precedence over ~/.nexus/ for
configuration and file-backed memory. A config.toml with default values is
written unless one already exists.

--preset writes a config.toml for a generation backend, replacing any
existing one. It accepts a preset name (gemini, openai, ollama) or an
http(s) URL of a config.toml to fetch.

Examples:
  nexus init
  nexus init --preset openai
  nexus init --preset https://example.com/nexus/config.toml`

const initShortDesc string = "Initialize a local .nexus/ directory"

func NewInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd.Context(), cmd.OutOrStdout(), preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Preset name ("+strings.Join(config.ValidPresetNames(), ", ")+") or URL of a config.toml")

	return cmd
}

func runInit(ctx context.Context, out io.Writer, preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	// resolve the preset before touching the filesystem
	var cfg *config.Config
	if preset != "" {
		cfg, err = loadPreset(ctx, out, preset)
		if err != nil {
			return err
		}
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	existed := err == nil && info.IsDir()
	if !existed {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .nexus directory: %w", err)
		}
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg == nil {
		_, statErr := os.Stat(cfger.GetTarget())
		if statErr == nil {
			fmt.Fprintf(out, "Already initialized: %s\n", dir)
			return nil
		}
		if !errors.Is(statErr, os.ErrNotExist) {
			return fmt.Errorf("reading config: %w", statErr)
		}
		cfg = config.NewDefaultConfig()
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	if existed {
		fmt.Fprintf(out, "  %s Wrote %s\n", cliui.SuccessMark, cliui.DimStyle.Render(cfger.GetTarget()))
		return nil
	}
	fmt.Fprintf(out, "  %s Initialized .nexus directory: %s\n", cliui.SuccessMark, cliui.DimStyle.Render(dir))
	return nil
}

func loadPreset(ctx context.Context, out io.Writer, preset string) (*config.Config, error) {
	if !strings.HasPrefix(preset, "http://") && !strings.HasPrefix(preset, "https://") {
		return config.PresetConfig(preset)
	}

	var cfg *config.Config
	err := cliui.Step(out, "Fetching "+preset, func() error {
		var err error
		cfg, err = fetchRemoteConfig(ctx, preset)
		return err
	})
	return cfg, err
}

func fetchRemoteConfig(ctx context.Context, url string) (*config.Config, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching remote config: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetching remote config: %w", err)
	}

	return config.ParseConfigTOML(data)
}
