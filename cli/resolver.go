package cli

import (
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/molang/log"
)

// resolve is a [kong.ConfigurationLoader] that reads a flat YAML mapping of
// flag names to values, the format written by the init command.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve, "/path/to/config.yaml")
//
// Keys are flag names as given on the command line without the leading
// dashes. Underscores may stand in for hyphens:
//
//	log-level: debug
//	log_format: text
//	max-depth: 64
//	env:
//	  - ~/.config/molang/env.yaml
//
// A malformed file is logged and ignored so that a broken configuration never
// prevents the command line from being parsed. Command-line flags override
// config file values.
func resolve(r io.Reader) (kong.Resolver, error) {
	var raw map[string]any

	err := yaml.NewDecoder(r).Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		log.Warn("ignoring malformed configuration", slog.Any("error", err))

		return config{}, nil
	}

	cfg := make(config, len(raw))
	for key, value := range raw {
		cfg[key] = flagValue(value)
	}

	return cfg, nil
}

// flagValue converts a decoded YAML value into the form kong accepts for a
// flag. Kong requires numbers as strings for parsing.
func flagValue(v any) any {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = flagValue(e)
		}

		return out
	}

	return v
}

// config implements [kong.Resolver] for YAML configuration files.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// No validation needed; unknown keys are ignored.
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but YAML keys may use
	// underscores. Try both forms.
	name := flag.Name

	if value, ok := r[name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
