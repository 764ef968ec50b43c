package inspect

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/rose-io/internal/logger"
	"github.com/Faultbox/rose-io/pkg/formats"
)

// ErrUnknownFormat is returned for files that are neither ZMS nor ZON.
var ErrUnknownFormat = errors.New("unknown file format")

// Decode reads and decodes a file, returning a *formats.MeshDocument or a
// *formats.Zone.
func Decode(path string) (formats.Format, any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return formats.FormatUnknown, nil, errors.Wrapf(err, "reading %s", path)
	}
	return decodeBytes(path, data)
}

func decodeBytes(name string, data []byte) (formats.Format, any, error) {
	f := formats.DetectFormat(name, data)
	switch f {
	case formats.FormatZMS:
		doc, err := formats.DecodeZMS(data)
		if err != nil {
			return f, nil, err
		}
		return f, doc, nil
	case formats.FormatZON:
		zone, err := formats.DecodeZON(data)
		if err != nil {
			return f, nil, err
		}
		return f, zone, nil
	default:
		return f, nil, errors.Wrapf(ErrUnknownFormat, "%s", name)
	}
}

// InspectBytes decodes data and summarises it. name is used for format
// detection and reporting only.
func InspectBytes(name string, data []byte) *Report {
	start := time.Now()
	r := &Report{Path: name, Size: len(data)}

	f, v, err := decodeBytes(name, data)
	r.Format = f.String()
	r.Elapsed = time.Since(start)
	if err != nil {
		r.setError(err)
		logger.Debug("decode failed", zap.String("file", name), zap.String("format", r.Format), zap.Error(err))
		return r
	}

	switch doc := v.(type) {
	case *formats.MeshDocument:
		r.Mesh = SummarizeMesh(doc)
	case *formats.Zone:
		r.Zone = SummarizeZone(doc)
	}
	logger.Debug("decoded", zap.String("file", name), zap.String("format", r.Format),
		zap.Int("bytes", r.Size), zap.Duration("elapsed", r.Elapsed))
	return r
}

// InspectFile reads a file from disk and summarises it.
func InspectFile(path string) *Report {
	data, err := os.ReadFile(path)
	if err != nil {
		r := &Report{Path: path, Format: formats.FormatUnknown.String()}
		r.setError(errors.Wrapf(err, "reading %s", path))
		return r
	}
	return InspectBytes(path, data)
}
