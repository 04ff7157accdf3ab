package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/molang/lang"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type (
	sourceFilesKey struct{}
	optionsKey     struct{}
	environmentKey struct{}
	outputKey      struct{}

	// SourceFiles is an ordered list of scripts to read, stdin last.
	SourceFiles interface {
		IsZero() bool
		Len() int
		Stdin() bool
		// Each opens every source in order and calls fn with its index and
		// contents. A file is closed when fn returns. Each stops at the first
		// error, including a file that cannot be opened ([ErrOpenSource]).
		Each(fn func(i int, r io.Reader) error) error
		io.WriterTo
	}

	sourceFiles struct {
		paths    []string
		hasStdin bool
	}
)

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return s.Len() == 0 }

// Len returns the number of sources, counting stdin once.
func (s *sourceFiles) Len() int {
	if s.hasStdin {
		return len(s.paths) + 1
	}

	return len(s.paths)
}

// Stdin reports whether stdin is one of the sources.
func (s *sourceFiles) Stdin() bool { return s.hasStdin }

func (s *sourceFiles) Each(fn func(i int, r io.Reader) error) error {
	for i, path := range s.paths {
		err := withFile(path, func(r io.Reader) error { return fn(i, r) })
		if err != nil {
			return err
		}
	}

	if s.hasStdin {
		return fn(len(s.paths), os.Stdin)
	}

	return nil
}

// WriteTo implements io.WriterTo by copying every source to w in order.
func (s *sourceFiles) WriteTo(w io.Writer) (n int64, err error) {
	err = s.Each(func(_ int, r io.Reader) error {
		m, err := io.Copy(w, r)
		n += m

		return err
	})

	return n, err
}

func withFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return ErrOpenSource.With(slog.String("source", path)).Wrap(err)
	}
	defer f.Close()

	return fn(f)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context carrying the given source
// files for [RunPrelude].
//
// Files are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" become a single stdin source read last.
// Files are not opened until they are read.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

// buildSourceFiles returns the deduplicated sources, or nil if there are
// none. A path that cannot be resolved is kept as given, so that reading it
// reports why.
func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	seen := make(map[fileKey]struct{})
	unresolved := make(map[string]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		path, key, ok := resolveFile(src)
		if !ok {
			if _, dup := unresolved[src]; !dup {
				unresolved[src] = struct{}{}
				srcs.paths = append(srcs.paths, src)
			}

			continue
		}

		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		srcs.paths = append(srcs.paths, path)
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]

	return &srcs
}

// resolveFile returns the symlink-free absolute path of the file at path
// and its device/inode key.
func resolveFile(path string) (string, fileKey, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fileKey{}, false
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fileKey{}, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", fileKey{}, false
	}

	key, ok := makeFileKey(info)

	return resolved, key, ok
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// sourceFilesFrom retrieves the io.Reader stored in ctx by WithSourceFiles.
// Returns nil if no reader was stored.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}

// RunPrelude evaluates the source files stored by [WithSourceFiles], in
// order, in the environment stored by [WithEnvironment]. Their results are
// discarded; their assignments remain for the command that follows.
func RunPrelude(ctx context.Context) error {
	src := sourceFilesFrom(ctx)
	if src == nil {
		return nil
	}

	env := environmentFrom(ctx)
	opts := optionsFrom(ctx)

	return src.Each(func(i int, r io.Reader) error {
		b, err := lang.CompileReader(ctx, r, opts...)
		if err == nil {
			_, err = env.Run(ctx, b, opts...)
		}

		if err != nil {
			return lang.WrapError(err).
				With(slog.String("command", "prelude"), slog.Int("source", i))
		}

		return nil
	})
}

// WithOptions returns a new context.Context carrying the compile and run
// options every command passes to the lang package.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func optionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return opts
}

// WithEnvironment returns a new context.Context carrying the environment
// scripts are evaluated in.
func WithEnvironment(ctx context.Context, env *lang.Environment) context.Context {
	return context.WithValue(ctx, environmentKey{}, env)
}

// environmentFrom returns the environment stored by WithEnvironment, or a
// new default environment.
func environmentFrom(ctx context.Context) *lang.Environment {
	env, ok := ctx.Value(environmentKey{}).(*lang.Environment)
	if !ok || env == nil {
		return lang.NewEnvironment()
	}

	return env
}

// WithOutput returns a new context.Context carrying the writer commands
// print results to.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer stored by WithOutput, or os.Stdout.
func outputFrom(ctx context.Context) io.Writer {
	w, ok := ctx.Value(outputKey{}).(io.Writer)
	if !ok || w == nil {
		return os.Stdout
	}

	return w
}
