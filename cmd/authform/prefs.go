package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Goofygiraffe06/otprelay/internal/config"
)

// languageFile keeps the chosen language in a one-line file, the terminal
// counterpart of the browser's local storage.
type languageFile struct {
	path string
}

func newLanguageFile() (*languageFile, error) {
	dir := config.AuthformConfigDir()
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "otprelay")
	}
	return &languageFile{path: filepath.Join(dir, "language")}, nil
}

// Load returns the saved language, or "" when nothing was saved yet.
func (f *languageFile) Load() (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

func (f *languageFile) Save(lang string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(lang+"\n"), 0600)
}
