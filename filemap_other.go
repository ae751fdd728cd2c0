//go:build !unix

package pdfium

import (
	"errors"
	"os"
)

var errNoMapping = errors.New("file mapping not supported on this platform")

type noMapper struct{}

func (noMapper) Map(f *os.File, size int64) (*Region, error) {
	return nil, errNoMapping
}

func newPlatformMapper() Mapper {
	return noMapper{}
}
