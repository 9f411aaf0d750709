package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/leapstack-labs/leapflow/internal/ui"
	"github.com/spf13/cobra"
)

const devSessionSecret = "leapflow-dev-secret-change-in-production" //nolint:gosec

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port      int
	NoBrowser bool
	Watch     bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve the editor over HTTP",
		Long: `Start a local web server exposing the editor workspace.

The server provides:
- A JSON API under /api for every editing operation
- A live event stream (/api/events) patched on every change
- JSON and YAML export downloads

With a file argument the workspace starts from that document, and with
--watch edits to the file on disk are re-imported.`,
		Example: `  # Start with an empty canvas on the default port
  leapflow serve

  # Serve a document and follow changes to it
  leapflow serve flowchart-export.json --port 3000

  # Start without auto-opening the browser
  leapflow serve --no-browser`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8765)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Re-import the document when it changes on disk")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Enable page hot reload")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, opts *ServeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	uiCfg := cmdCtx.Cfg.GetUIConfig()

	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	ws := cmdCtx.NewWorkspace()
	var file string
	if len(args) == 1 {
		file = args[0]
		loaded, err := cmdCtx.LoadWorkspace(file)
		if err != nil {
			return err
		}
		ws = loaded
	}

	server := ui.NewServer(ui.Config{
		Workspace:     ws,
		Port:          port,
		Watch:         watch,
		File:          file,
		SessionSecret: sessionSecret(uiCfg.SessionSecret),
		Dev:           opts.Dev,
		Logger:        cmdCtx.Logger,
	})

	if autoOpen {
		url := fmt.Sprintf("http://localhost:%d", port)
		go openBrowser(url)
	}

	cmdCtx.Renderer.Printf("Starting editor on http://localhost:%d\n", port)
	cmdCtx.Renderer.Muted("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// sessionSecret picks the configured secret, then LEAPFLOW_SESSION_SECRET,
// then a fixed development secret.
func sessionSecret(configured string) string {
	if configured != "" {
		return configured
	}
	if secret := os.Getenv("LEAPFLOW_SESSION_SECRET"); secret != "" {
		return secret
	}
	return devSessionSecret
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
