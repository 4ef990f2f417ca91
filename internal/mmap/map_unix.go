//go:build unix

package mmap

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

func mapFile(f *os.File, size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return unix.Munmap(data) }, nil
}

func advise(data []byte, h Hint) error {
	advice := unix.MADV_NORMAL
	switch h {
	case HintRandom:
		advice = unix.MADV_RANDOM
	case HintSequential:
		advice = unix.MADV_SEQUENTIAL
	case HintWillNeed:
		advice = unix.MADV_WILLNEED
	}
	if err := unix.Madvise(data, advice); err != nil && !errors.Is(err, unix.EINVAL) {
		return err
	}
	return nil
}
