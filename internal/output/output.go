// Package output writes rendered artifacts to a filesystem.
// Every write replaces the target file.
package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zarlcorp/core/pkg/zfilesystem"
)

// default artifact names
const (
	CSVFile      = "emqx_users_import.csv"
	SettingsFile = "appsettings_users.json"
	LedgerFile   = "mochi_auth_ledger"
	WorkbookFile = "devices.xlsx"
)

const fileMode = 0o644

// ErrEmptyName is returned when an artifact has no file name.
var ErrEmptyName = errors.New("empty artifact name")

// RenderFunc writes the content of one artifact.
type RenderFunc func(w io.Writer) error

// Writer writes artifacts into a filesystem rooted at the output directory.
type Writer struct {
	fs zfilesystem.ReadWriteFileFS
}

// New returns a Writer on fsys.
func New(fsys zfilesystem.ReadWriteFileFS) *Writer {
	return &Writer{fs: fsys}
}

// Write renders an artifact and writes it to name, replacing any existing
// file. Nothing is written if rendering fails.
func (w *Writer) Write(name string, render RenderFunc) error {
	if name == "" {
		return ErrEmptyName
	}

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	if err := w.fs.WriteFile(name, buf.Bytes(), fileMode); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	slog.Debug("artifact written", "file", name, "bytes", buf.Len())
	return nil
}

// Read returns the content of a previously written artifact.
func (w *Writer) Read(name string) ([]byte, error) {
	data, err := w.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
