// Package fsops is the file boundary of the CLI: request input is read and
// result files are written through an afero filesystem so tests can run in
// memory.
package fsops

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	directoryPermissions   = 0o755
	filePermissions        = 0o644
	temporaryFileSuffix    = ".tmp"
	openFileErrorFormat    = "open %s: %w"
	writeFileErrorFormat   = "write %s: %w"
	ensureDirErrorFormat   = "create directory for %s: %w"
	replaceFileErrorFormat = "replace %s: %w"
)

type Ops struct{ Fs afero.Fs }

func NewOS() Ops { return Ops{Fs: afero.NewOsFs()} }

func NewMem() Ops { return Ops{Fs: afero.NewMemMapFs()} }

// Open returns a reader over the whole file. A path of "-" reads stdin.
func (o Ops) Open(path string, stdin io.Reader) (io.Reader, error) {
	if path == "-" {
		return stdin, nil
	}
	content, err := afero.ReadFile(o.Fs, filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf(openFileErrorFormat, path, err)
	}
	return bytes.NewReader(content), nil
}

func (o Ops) EnsureDir(path string) error {
	if err := o.Fs.MkdirAll(filepath.Dir(filepath.Clean(path)), directoryPermissions); err != nil {
		return fmt.Errorf(ensureDirErrorFormat, path, err)
	}
	return nil
}

// WriteFileAtomic writes data next to path and renames it into place so a
// reader never sees a partial file.
func (o Ops) WriteFileAtomic(path string, data []byte) error {
	cleanPath := filepath.Clean(path)
	if err := o.EnsureDir(cleanPath); err != nil {
		return err
	}
	temporaryPath := cleanPath + temporaryFileSuffix
	if err := afero.WriteFile(o.Fs, temporaryPath, data, os.FileMode(filePermissions)); err != nil {
		return fmt.Errorf(writeFileErrorFormat, path, err)
	}
	if err := o.Fs.Rename(temporaryPath, cleanPath); err != nil {
		_ = o.Fs.Remove(temporaryPath)
		return fmt.Errorf(replaceFileErrorFormat, path, err)
	}
	return nil
}
