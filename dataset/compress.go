// Copyright 2020 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"strings"

	"github.com/ulikunitz/xz"
)

// Compression is the compression format of a dataset file.
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionBzip2
	CompressionXZ
)

func (c Compression) String() string {
	switch c {
	case CompressionGzip:
		return "gzip"
	case CompressionBzip2:
		return "bzip2"
	case CompressionXZ:
		return "xz"
	}
	return "none"
}

var compressionSuffixes = []struct {
	suffix string
	c      Compression
}{
	{".gz", CompressionGzip},
	{".bz2", CompressionBzip2},
	{".xz", CompressionXZ},
}

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
	xzMagic    = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
)

// splitCompression strips a compression suffix from path and returns
// the remaining path and the compression the suffix names.
func splitCompression(path string) (string, Compression) {
	lower := strings.ToLower(path)
	for _, s := range compressionSuffixes {
		if strings.HasSuffix(lower, s.suffix) {
			return path[:len(path)-len(s.suffix)], s.c
		}
	}
	return path, CompressionNone
}

// sniffCompression detects compression from the first bytes of br.
func sniffCompression(br *bufio.Reader) Compression {
	head, _ := br.Peek(len(xzMagic))
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return CompressionGzip
	case bytes.HasPrefix(head, bzip2Magic) && len(head) > len(bzip2Magic) &&
		'1' <= head[len(bzip2Magic)] && head[len(bzip2Magic)] <= '9':
		// "BZh" is followed by the block size digit.
		return CompressionBzip2
	case bytes.HasPrefix(head, xzMagic):
		return CompressionXZ
	}
	return CompressionNone
}

// decompress returns a reader of the decompressed contents of r. If c
// is CompressionNone, the compression is detected from the data.
func decompress(r io.Reader, c Compression) (io.Reader, error) {
	br := bufio.NewReader(r)
	if c == CompressionNone {
		c = sniffCompression(br)
	}
	switch c {
	case CompressionGzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return zr, nil
	case CompressionBzip2:
		return bzip2.NewReader(br), nil
	case CompressionXZ:
		zr, err := xz.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("creating xz reader: %w", err)
		}
		return zr, nil
	}
	return br, nil
}
