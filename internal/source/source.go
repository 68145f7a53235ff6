// Package source maps subject files into memory for searching.
package source

import (
	"os"

	"gramgrep/internal/errors"
)

// File is an open subject file. Data stays valid until Close.
type File struct {
	Path string
	Data []byte

	release func() error
}

// Open maps the file at path read-only. Empty files get an empty buffer.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &errors.IOError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &errors.IOError{Op: "stat", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &errors.IOError{Op: "open", Path: path, Err: errIsDir}
	}
	if info.Size() == 0 {
		return &File{Path: path, Data: []byte{}}, nil
	}

	data, release, err := mapFile(f, info.Size())
	if err != nil {
		return nil, &errors.IOError{Op: "map", Path: path, Err: err}
	}
	return &File{Path: path, Data: data, release: release}, nil
}

// Close releases the mapping. It is safe to call more than once.
func (f *File) Close() error {
	if f.release == nil {
		return nil
	}
	err := f.release()
	f.release = nil
	f.Data = nil
	return err
}
