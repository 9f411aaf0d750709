package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapflow/internal/cli/config"
	"github.com/leapstack-labs/leapflow/internal/cli/output"
	"github.com/leapstack-labs/leapflow/internal/document"
	"github.com/leapstack-labs/leapflow/internal/registry"
	"github.com/leapstack-labs/leapflow/internal/state"
	"github.com/leapstack-labs/leapflow/internal/workspace"
	"github.com/leapstack-labs/leapflow/pkg/core"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext from the loaded configuration.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// WorkspaceConfig returns the workspace configuration derived from the
// editor settings.
func (c *CommandContext) WorkspaceConfig() workspace.Config {
	ed := c.Cfg.GetEditorConfig()
	return workspace.Config{
		Registry:    registry.Default(),
		Logger:      c.Logger,
		PasteOffset: &core.Position{X: ed.PasteOffsetX, Y: ed.PasteOffsetY},
		DimOpacity:  ed.DimOpacity,
	}
}

// NewWorkspace creates an empty workspace.
func (c *CommandContext) NewWorkspace() *workspace.Workspace {
	return workspace.New(c.WorkspaceConfig())
}

// LoadWorkspace reads a document file into a new workspace.
func (c *CommandContext) LoadWorkspace(path string) (*workspace.Workspace, error) {
	doc, err := document.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return workspace.Load(c.WorkspaceConfig(), doc)
}

// OpenLibrary opens and migrates the document library.
// Returns the store and a cleanup function that must be called (typically via defer).
func (c *CommandContext) OpenLibrary() (*state.SQLiteStore, func(), error) {
	path := c.Cfg.LibraryPath
	if dir := filepath.Dir(path); path != ":memory:" && dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}

	store := state.NewSQLiteStore(c.Logger)
	if err := store.Open(path); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}

// getConfig returns the current configuration, or defaults when none was loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return config.Default()
}
