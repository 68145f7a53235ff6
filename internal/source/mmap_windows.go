//go:build windows

package source

import (
	stderrors "errors"
	"io"
	"os"
)

var errIsDir = stderrors.New("is a directory")

func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}
