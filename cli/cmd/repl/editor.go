package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand] for the edit-load-retry loop. It
// writes the session variables and aliases to a temp file as a YAML
// environment document, opens the user's editor, and loads the result. On a
// load error the user is prompted to re-edit; declining exits the program.
type editCommand struct {
	env     *lang.Environment
	ctxFunc func() context.Context
	result  *lang.Environment
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. If the user declines to re-edit after an
// error, it returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := editDocument(ctx, c.env)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(os.TempDir(), "molang-repl-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath); err != nil {
			return err
		}

		data, err := os.ReadFile(tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		result, loadErr := applyEdit(ctx, c.env, data, lang.WithLogger(c.logger))

		c.logger.TraceContext(
			ctx,
			"editor load attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", loadErr == nil),
		)

		if loadErr == nil {
			c.result = result

			return nil
		}

		fmt.Fprintf(c.stderr, "\nLoad error: %s\n", loadErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = data
	}
}

// editDocument renders the editable part of env as a YAML environment
// document. Variables holding functions or host objects cannot be written
// as YAML and are left out.
func editDocument(ctx context.Context, env *lang.Environment) ([]byte, error) {
	vars := yaml.MapSlice{}

	for _, name := range slices.Sorted(maps.Keys(env.Variables)) {
		if v := env.Variables[name]; editable(v) {
			vars = append(vars, yaml.MapItem{Key: name, Value: lang.Native(v)})
		}
	}

	aliases := yaml.MapSlice{}

	for _, name := range slices.Sorted(maps.Keys(env.Aliases)) {
		aliases = append(aliases, yaml.MapItem{Key: name, Value: env.Aliases[name]})
	}

	return yaml.MarshalContext(ctx, yaml.MapSlice{
		{Key: "variables", Value: vars},
		{Key: "aliases", Value: aliases},
	}, yaml.Indent(2))
}

// applyEdit loads an edited document and returns the variables and aliases
// the session should use from now on. Variables left out by editDocument
// are kept. Constants in the document are ignored.
func applyEdit(
	ctx context.Context,
	env *lang.Environment,
	data []byte,
	opts ...lang.Option,
) (*lang.Environment, error) {
	loaded, err := lang.LoadEnvironment(ctx, bytes.NewReader(data), opts...)
	if err != nil {
		return nil, err
	}

	for name, v := range env.Variables {
		if _, ok := loaded.Variables[name]; !ok && !editable(v) {
			loaded.Variables[name] = v
		}
	}

	return &lang.Environment{
		Variables: loaded.Variables,
		Aliases:   loaded.Aliases,
	}, nil
}

// editable reports whether v survives a round trip through YAML: numbers,
// null, arrays, and structs made of those.
func editable(v lang.Value) bool {
	switch x := v.(type) {
	case nil, lang.Number, lang.Null:
		return true

	case lang.Struct:
		for _, e := range x {
			if !editable(e) {
				return false
			}
		}

		return true

	case *lang.External:
		arr, ok := x.Object().(*lang.Array)

		return ok && !slices.ContainsFunc(arr.Items(), func(e lang.Value) bool {
			return !editable(e)
		})
	}

	return false
}

// runEditor launches the user's editor on the given file path.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
