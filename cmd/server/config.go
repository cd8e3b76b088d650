package main

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the export server configuration.
type Config struct {
	Server   ServerConfig
	Export   ExportConfig
	Chromium ChromiumConfig
	LogLevel string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string
	Port string
}

// ExportConfig holds export-specific settings.
type ExportConfig struct {
	MaxBodyBytes   int
	TimeoutSeconds int
	AllowOrigins   string
}

// ChromiumConfig holds headless browser launch settings.
type ChromiumConfig struct {
	Path     string
	Args     []string
	Headless bool
}

// Defaults returns a Config with sensible defaults.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host: "",
			Port: "3001",
		},
		Export: ExportConfig{
			MaxBodyBytes:   25 * 1024 * 1024,
			TimeoutSeconds: 120,
			AllowOrigins:   "*",
		},
		Chromium: ChromiumConfig{
			Args:     []string{"no-sandbox", "disable-setuid-sandbox"},
			Headless: true,
		},
		LogLevel: "info",
	}
}

// FromEnv applies environment overrides to the defaults.
func FromEnv() Config {
	cfg := Defaults()

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Port = port
	}
	if host := os.Getenv("HOST"); host != "" {
		cfg.Server.Host = host
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if origins := os.Getenv("EXPORT_ALLOW_ORIGINS"); origins != "" {
		cfg.Export.AllowOrigins = origins
	}
	if maxBody := os.Getenv("EXPORT_MAX_BODY_BYTES"); maxBody != "" {
		if parsed, err := strconv.Atoi(maxBody); err == nil && parsed > 0 {
			cfg.Export.MaxBodyBytes = parsed
		}
	}
	if timeout := os.Getenv("EXPORT_PDF_TIMEOUT"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil && parsed > 0 {
			cfg.Export.TimeoutSeconds = parsed
		}
	}

	if path := os.Getenv("CHROMIUM_PATH"); path != "" {
		cfg.Chromium.Path = path
	}
	if args := os.Getenv("CHROMIUM_ARGS"); args != "" {
		cfg.Chromium.Args = append(cfg.Chromium.Args, splitCSV(args)...)
	}
	if headless := os.Getenv("CHROMIUM_HEADLESS"); headless != "" {
		if parsed, err := strconv.ParseBool(headless); err == nil {
			cfg.Chromium.Headless = parsed
		}
	}

	return cfg
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
