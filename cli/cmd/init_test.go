package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type initCLI struct {
	Name    string   `name:"name"     default:"molang"`
	Depth   int      `name:"depth"    default:"256"`
	Env     []string `name:"env"`
	Empty   string   `name:"empty"`
	Secret  string   `name:"secret"   default:"hidden" hidden:""`
	Version bool     `name:"version"`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{name: "create_new_config"},
		{name: "overwrite_existing_with_force", force: true, exists: true},
		{name: "fail_without_force", exists: true, wantErr: ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Init.Run() error = %v, want %v", err, tt.wantErr)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			if tt.wantErr != nil {
				if string(content) != "existing: true\n" {
					t.Errorf("existing file was modified: %q", content)
				}

				return
			}

			var settings map[string]any
			if err := yaml.Unmarshal(content, &settings); err != nil {
				t.Fatalf("generated config is not valid YAML: %v", err)
			}

			if settings["name"] != "molang" {
				t.Errorf("unexpected settings %v", settings)
			}
		})
	}
}

func TestInitSettings(t *testing.T) {
	ctx := initContext(t, "unused", "--env", "a.yaml", "--env", "b.yaml", "--depth", "8")

	settings := (&Init{}).settings(ctx)

	var keys []string
	for _, item := range settings {
		keys = append(keys, item.Key.(string))
	}

	if got := strings.Join(keys, ","); got != "name,depth,env" {
		t.Errorf("keys %q, want %q", got, "name,depth,env")
	}

	if env, ok := settings[2].Value.([]string); !ok || len(env) != 2 {
		t.Errorf("unexpected env value %#v", settings[2].Value)
	}

	if settings[1].Value != 8 {
		t.Errorf("unexpected depth value %#v", settings[1].Value)
	}
}

func TestInitWithInvalidPath(t *testing.T) {
	ctx := initContext(t, "/nonexistent/directory/config.yaml")

	err := (&Init{}).Run(ctx)
	if !errors.Is(err, ErrWriteConfig) {
		t.Errorf("Init.Run() error = %v, want %v", err, ErrWriteConfig)
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, true},
		{"", true},
		{[]string{}, true},
		{"x", false},
		{0, false},
		{false, false},
	}

	for _, tt := range tests {
		if got := isEmpty(tt.v); got != tt.want {
			t.Errorf("isEmpty(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
