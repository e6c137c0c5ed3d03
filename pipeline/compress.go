// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Compression selects the request body encoding for batch and forced
// sends. The names double as the Content-Encoding header values.
type Compression uint8

const (
	// CompressionNone sends the JSON body as-is.
	CompressionNone Compression = 0

	// CompressionGzip encodes with gzip. The safe default for
	// collectors behind generic HTTP middleware.
	CompressionGzip Compression = 1

	// CompressionZstd encodes with zstd. Better ratios on JSON log
	// batches when the collector advertises support.
	CompressionZstd Compression = 2
)

// String returns the name used in configuration and, for the
// compressed variants, on the Content-Encoding header.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses a compression name from configuration.
// Matching is case-insensitive.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("pipeline: unknown compression %q", name)
	}
}

// zstdEncoder is reused across sends; zstd.Encoder is safe for
// concurrent use.
var zstdEncoder *zstd.Encoder

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("pipeline: zstd encoder initialization failed: " + err.Error())
	}
}

// encode compresses body per c and returns the encoded bytes plus the
// Content-Encoding value, empty for identity. Encoding failures fall
// back to the identity encoding: shipping an uncompressed batch beats
// dropping it over a compression error.
func (c Compression) encode(body []byte) ([]byte, string) {
	switch c {
	case CompressionGzip:
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(body); err != nil {
			return body, ""
		}
		if err := w.Close(); err != nil {
			return body, ""
		}
		return buf.Bytes(), "gzip"
	case CompressionZstd:
		return zstdEncoder.EncodeAll(body, nil), "zstd"
	default:
		return body, ""
	}
}
