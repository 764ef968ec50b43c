// Package formats provides decoders for ROSE Online file formats.
//
// Decoders take the whole file as a byte slice, never trust it, and either
// return a fully validated document or a *DecodeError carrying the byte
// offset where decoding stopped. They keep no state between calls and are
// safe to run concurrently on independent buffers.
package formats

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies a supported file type.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatZMS
	FormatZON
)

// String returns the conventional file extension without the dot.
func (f Format) String() string {
	switch f {
	case FormatZMS:
		return "zms"
	case FormatZON:
		return "zon"
	default:
		return "unknown"
	}
}

// DetectFormat identifies a file by magic, falling back to the extension
// for formats without one (ZON starts with a bare block count).
func DetectFormat(name string, data []byte) Format {
	if bytes.HasPrefix(data, []byte(zmsMagicPrefix)) {
		return FormatZMS
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zms":
		return FormatZMS
	case ".zon":
		return FormatZON
	}
	return FormatUnknown
}
