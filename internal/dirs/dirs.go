// Package dirs resolves where the application keeps its configuration,
// data and cache files.
package dirs

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

const (
	appName = "git-chest"

	// EnvHome overrides the root of all application directories.
	EnvHome = "GITCHEST_HOME"
)

// Dirs holds the resolved application directories.
type Dirs struct {
	Config string
	Data   string
	Cache  string
}

// Resolve returns the application directories.
// Order: GITCHEST_HOME override, then OS-specific defaults.
func Resolve() (Dirs, error) {
	if custom := os.Getenv(EnvHome); custom != "" {
		return FromRoot(custom), nil
	}

	config, err := os.UserConfigDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("resolve config dir: %w", err)
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return Dirs{}, fmt.Errorf("resolve cache dir: %w", err)
	}
	data, err := dataRoot()
	if err != nil {
		return Dirs{}, fmt.Errorf("resolve data dir: %w", err)
	}

	return Dirs{
		Config: filepath.Join(config, appName),
		Data:   filepath.Join(data, appName),
		Cache:  filepath.Join(cache, appName),
	}, nil
}

// FromRoot lays the directories out under a single root.
func FromRoot(root string) Dirs {
	return Dirs{
		Config: filepath.Join(root, "config"),
		Data:   filepath.Join(root, "data"),
		Cache:  filepath.Join(root, "cache"),
	}
}

func dataRoot() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return local, nil
		}
		return "", errors.New("LOCALAPPDATA not set")
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return xdg, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share"), nil
	}
}

// EnsureDir creates dir and its parents if missing.
func EnsureDir(logger *slog.Logger, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if logger != nil {
		logger.Info("creating non-existent directory", "dir", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return nil
}

// EnsureAll creates the standard application directories.
func (d Dirs) EnsureAll(logger *slog.Logger) error {
	for _, dir := range []string{d.Config, filepath.Join(d.Data, "images"), d.Path(Avatars()), d.Cache} {
		if err := EnsureDir(logger, dir); err != nil {
			return err
		}
	}
	return nil
}
