//go:build !windows

package source

import (
	stderrors "errors"
	"os"

	"golang.org/x/sys/unix"
)

var errIsDir = stderrors.New("is a directory")

func mapFile(f *os.File, size int64) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
