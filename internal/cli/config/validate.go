package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// OutputModes are the accepted values of the output setting.
var OutputModes = []string{"auto", "text", "markdown", "json"}

// ParseLogLevel maps a level name to its slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug, info, warn or error)", s)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LibraryPath == "" {
		return fmt.Errorf("library_path is required")
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.OutputFormat != "" && !validOutput(c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (want %s)", c.OutputFormat, strings.Join(OutputModes, ", "))
	}

	ed := c.GetEditorConfig()
	if ed.DimOpacity <= 0 || ed.DimOpacity > 1 {
		return fmt.Errorf("editor.dim_opacity must be in (0, 1], got %v", ed.DimOpacity)
	}

	ui := c.GetUIConfig()
	if ui.Port < 1 || ui.Port > 65535 {
		return fmt.Errorf("ui.port must be between 1 and 65535, got %d", ui.Port)
	}
	return nil
}

func validOutput(s string) bool {
	for _, m := range OutputModes {
		if m == s {
			return true
		}
	}
	return false
}
