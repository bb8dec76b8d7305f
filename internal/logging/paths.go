package logging

import (
	"os"
	"path/filepath"

	synerr "github.com/Aman-CERP/synmap/internal/errors"
)

// DefaultLogDir returns the default log directory (~/.synmap/logs/).
// Falls back to the temp directory if the home directory is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".synmap", "logs")
	}
	return filepath.Join(home, ".synmap", "logs")
}

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "synmap.log")
}

// FindLogFile returns explicit if given, otherwise the default log path, and
// fails if the file does not exist.
func FindLogFile(explicit string) (string, error) {
	path := explicit
	if path == "" {
		path = DefaultLogPath()
	}
	if _, err := os.Stat(path); err != nil {
		e := synerr.New(synerr.ErrCodeFileNotFound, "log file not found: "+path, err)
		if explicit == "" {
			e = e.WithSuggestion("Run a command with --debug to start writing logs")
		}
		return "", e
	}
	return path, nil
}
