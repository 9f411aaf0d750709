// Package config provides configuration management for the leapflow CLI.
//
// Values are layered with koanf: built-in defaults, then leapflow.yaml, then
// LEAPFLOW_ environment variables, then explicitly set command-line flags.
package config

// Default configuration values.
const (
	DefaultLibraryPath = ".leapflow/library.db"
	DefaultLogLevel    = "warn"
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultPort        = 8765
	DefaultPasteOffset = 50.0
	DefaultDimOpacity  = 0.2
)

// EditorConfig tunes the editing engine.
type EditorConfig struct {
	PasteOffsetX float64 `koanf:"paste_offset_x"`
	PasteOffsetY float64 `koanf:"paste_offset_y"`
	DimOpacity   float64 `koanf:"dim_opacity"`
}

// DefaultEditorConfig returns an EditorConfig with default values.
func DefaultEditorConfig() *EditorConfig {
	return &EditorConfig{
		PasteOffsetX: DefaultPasteOffset,
		PasteOffsetY: DefaultPasteOffset,
		DimOpacity:   DefaultDimOpacity,
	}
}

// UIConfig holds configuration for the HTTP editor server.
type UIConfig struct {
	Port          int    `koanf:"port"`
	AutoOpen      bool   `koanf:"auto_open"`
	Watch         bool   `koanf:"watch"`
	SessionSecret string `koanf:"session_secret"`
}

// DefaultUIConfig returns a UIConfig with default values.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Port:     DefaultPort,
		AutoOpen: false,
		Watch:    true,
	}
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot  string        `koanf:"-"`
	LibraryPath  string        `koanf:"library_path"`
	LogLevel     string        `koanf:"log_level"`
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Editor       *EditorConfig `koanf:"editor"`
	UI           *UIConfig     `koanf:"ui"`
}

// GetEditorConfig returns the editor config with defaults applied for any unset values.
func (c *Config) GetEditorConfig() *EditorConfig {
	if c.Editor == nil {
		return DefaultEditorConfig()
	}
	ed := *c.Editor
	if ed.DimOpacity == 0 {
		ed.DimOpacity = DefaultDimOpacity
	}
	return &ed
}

// GetUIConfig returns the UI config with defaults applied for any unset values.
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	ui := *c.UI
	if ui.Port == 0 {
		ui.Port = DefaultPort
	}
	return &ui
}

// Default returns the configuration used when nothing was loaded.
func Default() *Config {
	return &Config{
		LibraryPath:  DefaultLibraryPath,
		LogLevel:     DefaultLogLevel,
		OutputFormat: DefaultOutput,
		Editor:       DefaultEditorConfig(),
		UI:           DefaultUIConfig(),
	}
}
