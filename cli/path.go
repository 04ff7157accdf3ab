package cli

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/molang/pkg"
)

// Base names of the configuration files in the configuration directory. The
// YAML file is the one written by the init command; both are read.
const (
	configYAML = "config.yaml"
	configJSON = "config.json"
)

const dirMode os.FileMode = 0o700

// debugBinary matches the executable name dlv gives its builds.
var debugBinary = regexp.MustCompile(`^__debug_bin\d*$`)

// appName returns the name of the per-user directories: the executable's
// base name without extension or leading dots, or [pkg.Name] when running
// under the debugger.
var appName = sync.OnceValue(func() string {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}

	name := filepath.Base(exe)
	name = strings.TrimLeft(strings.TrimSuffix(name, filepath.Ext(name)), ".")

	if name == "" || debugBinary.MatchString(name) {
		return pkg.Name
	}

	return name
})

// userDir returns appName under the directory reported by base. When base
// fails it falls back to fallback under the home directory, then to the
// working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, appName())
}

var (
	configDir = sync.OnceValue(func() string {
		return userDir(os.UserConfigDir, ".config")
	})
	cacheDir = sync.OnceValue(func() string {
		return userDir(os.UserCacheDir, ".cache")
	})
)

// configPath joins elem onto the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	return errors.Join(
		os.MkdirAll(configDir(), dirMode),
		os.MkdirAll(cacheDir(), dirMode),
	)
}
