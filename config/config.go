package config

import (
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/jsonlog/jsonlog/core"
	"github.com/jsonlog/jsonlog/formatter"
	"github.com/jsonlog/jsonlog/handler"
	"github.com/jsonlog/jsonlog/logger"
)

// Config is the YAML-mapped description of a logger: its level, its
// formatter, and one or more output handlers.
type Config struct {
	Level    string          `yaml:"level"`
	Name     string          `yaml:"name"`
	Caller   bool            `yaml:"caller"`
	Format   FormatterConfig `yaml:"formatter"`
	Handlers []HandlerConfig `yaml:"handlers"`
	Attrs    map[string]any  `yaml:"attrs"`
}

// FormatterConfig describes the record layout
type FormatterConfig struct {
	Type             string            `yaml:"type"` // json (default) or text
	Format           string            `yaml:"format"`
	Style            string            `yaml:"style"`
	Fields           []string          `yaml:"fields"`
	DateFormat       string            `yaml:"date_format"`
	Rename           map[string]string `yaml:"rename"`
	Static           map[string]any    `yaml:"static"`
	Defaults         map[string]any    `yaml:"defaults"`
	TimestampKey     string            `yaml:"timestamp_key"`
	Prefix           string            `yaml:"prefix"`
	ExcInfoAsArray   bool              `yaml:"exc_info_as_array"`
	StackInfoAsArray bool              `yaml:"stack_info_as_array"`
	IncludeTraceback bool              `yaml:"include_traceback"`
	Serializer       string            `yaml:"serializer"`
}

// HandlerConfig describes one output destination
type HandlerConfig struct {
	Type string     `yaml:"type"` // console, stderr, or file
	File FileConfig `yaml:"file"`
}

// FileConfig holds the file handler's rotation settings. Durations are
// time.ParseDuration strings, e.g. "24h".
type FileConfig struct {
	Path           string `yaml:"path"`
	MaxSize        int64  `yaml:"max_size"`
	MaxBackups     int    `yaml:"max_backups"`
	MaxAge         string `yaml:"max_age"`
	RotateInterval string `yaml:"rotate_interval"`
}

// Parse builds a logger from YAML configuration data
func Parse(data []byte) (*logger.Logger, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse logging config")
	}
	return Build(cfg)
}

// Load builds a logger from a YAML configuration file
func Load(path string) (*logger.Logger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open logging config")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read logging config %s", path)
	}
	return Parse(data)
}

// Build constructs a logger from an already-decoded configuration
func Build(cfg Config) (*logger.Logger, error) {
	fmtr, err := buildFormatter(cfg.Format)
	if err != nil {
		return nil, err
	}

	var handlers []handler.Handler
	for _, hc := range cfg.Handlers {
		h, err := buildHandler(hc, fmtr)
		if err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	var h handler.Handler
	switch len(handlers) {
	case 0:
		h = handler.NewConsoleHandler(handler.ConsoleConfig{Formatter: fmtr})
	case 1:
		h = handlers[0]
	default:
		h = handler.NewMultiHandler(handlers...)
	}

	b := logger.NewBuilder().
		WithHandler(h).
		WithLevel(core.ParseLevel(cfg.Level)).
		WithName(cfg.Name).
		WithCaller(cfg.Caller)

	// Deterministic order for map-sourced attrs
	keys := make([]string, 0, len(cfg.Attrs))
	for k := range cfg.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WithAttrs(core.A(k, cfg.Attrs[k]))
	}

	return b.Build(), nil
}

func buildFormatter(fc FormatterConfig) (formatter.Formatter, error) {
	switch fc.Type {
	case "", "json":
		return formatter.NewJSONFormatter(formatter.Config{
			Format:           fc.Format,
			Fields:           fc.Fields,
			Style:            formatter.Style(fc.Style),
			DateFormat:       fc.DateFormat,
			RenameFields:     fc.Rename,
			StaticFields:     fc.Static,
			Defaults:         fc.Defaults,
			TimestampKey:     fc.TimestampKey,
			Prefix:           fc.Prefix,
			ExcInfoAsArray:   fc.ExcInfoAsArray,
			StackInfoAsArray: fc.StackInfoAsArray,
			IncludeTraceback: fc.IncludeTraceback,
			Serializer:       fc.Serializer,
		})
	case "text":
		return formatter.NewTextFormatter(formatter.TextConfig{
			TimestampFormat: fc.DateFormat,
		}), nil
	default:
		return nil, errors.Errorf("unknown formatter type %q", fc.Type)
	}
}

func buildHandler(hc HandlerConfig, fmtr formatter.Formatter) (handler.Handler, error) {
	switch hc.Type {
	case "", "console", "stdout":
		return handler.NewConsoleHandler(handler.ConsoleConfig{Formatter: fmtr}), nil
	case "stderr":
		return handler.NewConsoleHandler(handler.ConsoleConfig{Writer: os.Stderr, Formatter: fmtr}), nil
	case "file":
		maxAge, err := parseDuration(hc.File.MaxAge)
		if err != nil {
			return nil, errors.Wrap(err, "file handler max_age")
		}
		rotateInterval, err := parseDuration(hc.File.RotateInterval)
		if err != nil {
			return nil, errors.Wrap(err, "file handler rotate_interval")
		}
		h, err := handler.NewFileHandler(handler.FileConfig{
			Filename:       hc.File.Path,
			Formatter:      fmtr,
			MaxSize:        hc.File.MaxSize,
			MaxBackups:     hc.File.MaxBackups,
			MaxAge:         maxAge,
			RotateInterval: rotateInterval,
		})
		if err != nil {
			return nil, errors.Wrap(err, "build file handler")
		}
		return h, nil
	default:
		return nil, errors.Errorf("unknown handler type %q", hc.Type)
	}
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}
