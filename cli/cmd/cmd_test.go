package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/molang/lang"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestWithSourceFiles_Empty(t *testing.T) {
	for _, sources := range [][]string{nil, {}} {
		if sourceFilesFrom(WithSourceFiles(t.Context(), sources)) != nil {
			t.Errorf("WithSourceFiles(%v) should store nil", sources)
		}
	}
}

func TestWithSourceFiles_Read(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.mo", "v.x = 1;")
	second := writeFile(t, dir, "second.mo", "v.x;")

	link := filepath.Join(dir, "link.mo")
	if err := os.Symlink(first, link); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		sources []string
		want    string
		readers int
	}{
		{"single", []string{first}, "v.x = 1;", 1},
		{"ordered", []string{first, second}, "v.x = 1;v.x;", 2},
		{"duplicate", []string{second, second, second}, "v.x;", 1},
		{"symlink", []string{first, link}, "v.x = 1;", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sourceFilesFrom(WithSourceFiles(t.Context(), tt.sources))
			if src == nil {
				t.Fatal("expected source files")
			}

			if n := src.Len(); n != tt.readers {
				t.Errorf("expected %d readers, got %d", tt.readers, n)
			}

			var data bytes.Buffer
			if _, err := src.WriteTo(&data); err != nil {
				t.Fatal(err)
			}

			if data.String() != tt.want {
				t.Errorf("got %q, want %q", data.String(), tt.want)
			}
		})
	}
}

func TestWithSourceFiles_RelativeAndAbsolute(t *testing.T) {
	dir := t.TempDir()
	abs := writeFile(t, dir, "script.mo", "1 + 2")

	t.Chdir(dir)

	src := sourceFilesFrom(WithSourceFiles(t.Context(), []string{"script.mo", abs}))
	if src == nil || src.Len() != 1 {
		t.Fatal("expected a single deduplicated reader")
	}
}

func TestWithSourceFiles_Unreadable(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.mo", "1")
	locked := writeFile(t, dir, "locked.mo", "2")

	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		sources []string
		visited int
	}{
		{"missing", []string{"/nonexistent/a", "/nonexistent/a"}, 0},
		{"after readable", []string{good, "/nonexistent/b"}, 1},
	}

	if os.Geteuid() != 0 {
		tests = append(tests, struct {
			name    string
			sources []string
			visited int
		}{"permission denied", []string{good, locked}, 1})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := sourceFilesFrom(WithSourceFiles(t.Context(), tt.sources))
			if src == nil {
				t.Fatal("expected unreadable sources to be kept")
			}

			visited := 0

			err := src.Each(func(int, io.Reader) error {
				visited++

				return nil
			})
			if !errors.Is(err, ErrOpenSource) {
				t.Errorf("expected ErrOpenSource, got %v", err)
			}

			if visited != tt.visited {
				t.Errorf("expected %d sources read before the error, got %d", tt.visited, visited)
			}
		})
	}
}

func TestWithSourceFiles_ClosesFiles(t *testing.T) {
	path := writeFile(t, t.TempDir(), "script.mo", "1")
	src := sourceFilesFrom(WithSourceFiles(t.Context(), []string{path}))

	var file *os.File

	err := src.Each(func(_ int, r io.Reader) error {
		file, _ = r.(*os.File)

		return nil
	})
	if err != nil || file == nil {
		t.Fatalf("expected an *os.File source, got %T (%v)", file, err)
	}

	if _, err := file.Read(make([]byte, 1)); !errors.Is(err, os.ErrClosed) {
		t.Errorf("expected file closed after Each, got %v", err)
	}
}

func TestWithSourceFiles_StdinLast(t *testing.T) {
	file := writeFile(t, t.TempDir(), "file.mo", "file")

	oldStdin := os.Stdin
	defer func() { os.Stdin = oldStdin }()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}

	os.Stdin = r

	go func() {
		defer w.Close()

		_, _ = io.WriteString(w, "stdin")
	}()

	src := sourceFilesFrom(WithSourceFiles(t.Context(), []string{"-", file, "-"}))
	if src == nil || !src.Stdin() {
		t.Fatal("expected stdin to be included")
	}

	var data bytes.Buffer
	if _, err := src.WriteTo(&data); err != nil {
		t.Fatal(err)
	}

	if data.String() != "filestdin" {
		t.Errorf("got %q, want %q", data.String(), "filestdin")
	}
}

func TestContextValues_Defaults(t *testing.T) {
	ctx := context.Background()

	if optionsFrom(ctx) != nil {
		t.Error("expected no options")
	}

	if outputFrom(ctx) != os.Stdout {
		t.Error("expected stdout")
	}

	if env := environmentFrom(ctx); env == nil || env.Constants["math"] == nil {
		t.Error("expected a default environment")
	}

	var buf bytes.Buffer

	env := &lang.Environment{}
	ctx = WithOutput(WithEnvironment(WithOptions(ctx, lang.WithCache(false)), env), &buf)

	if len(optionsFrom(ctx)) != 1 {
		t.Error("expected stored options")
	}

	if environmentFrom(ctx) != env {
		t.Error("expected stored environment")
	}

	if outputFrom(ctx) != &buf {
		t.Error("expected stored writer")
	}
}

func TestRunPrelude(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "first.mo", "v.n = 2;")
	second := writeFile(t, dir, "second.mo", "v.n = v.n * 3;")

	env := lang.NewEnvironment()
	ctx := WithEnvironment(t.Context(), env)

	if err := RunPrelude(ctx); err != nil {
		t.Fatalf("RunPrelude() without sources: %v", err)
	}

	if err := RunPrelude(WithSourceFiles(ctx, []string{first, second})); err != nil {
		t.Fatalf("RunPrelude() error = %v", err)
	}

	if v, _ := env.Lookup("v.n"); v != lang.Number(6) {
		t.Errorf("v.n = %v, want 6", v)
	}

	bad := writeFile(t, dir, "bad.mo", "nope.x = 1;")
	if err := RunPrelude(WithSourceFiles(ctx, []string{bad})); !errors.Is(err, lang.ErrVariableNotFound) {
		t.Errorf("RunPrelude() error = %v, want %v", err, lang.ErrVariableNotFound)
	}
}
