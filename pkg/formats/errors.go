package formats

import (
	"errors"
	"fmt"
)

// Decode error sentinels. Every *DecodeError unwraps to exactly one of these,
// so callers can branch with errors.Is and recover the offset with errors.As.
var (
	ErrBadMagic              = errors.New("bad magic")
	ErrUnsupportedVersion    = errors.New("unsupported version")
	ErrBadFlags              = errors.New("invalid vertex format flags")
	ErrUnexpectedEOF         = errors.New("unexpected end of buffer")
	ErrTruncatedVertexStream = errors.New("truncated vertex stream")
	ErrTruncatedIndexStream  = errors.New("truncated index stream")
	ErrTruncatedSection      = errors.New("truncated section")
	ErrImplausibleCount      = errors.New("implausible element count")
	ErrIndexOutOfRange       = errors.New("index out of range")
	ErrBadOffset             = errors.New("section offset outside buffer")
)

// ErrorKind classifies a decode failure.
type ErrorKind int

// Error kinds, one per sentinel.
const (
	KindBadMagic ErrorKind = iota + 1
	KindUnsupportedVersion
	KindBadFlags
	KindUnexpectedEOF
	KindTruncatedVertexStream
	KindTruncatedIndexStream
	KindTruncatedSection
	KindImplausibleCount
	KindIndexOutOfRange
	KindBadOffset
)

var kindSentinels = map[ErrorKind]error{
	KindBadMagic:              ErrBadMagic,
	KindUnsupportedVersion:    ErrUnsupportedVersion,
	KindBadFlags:              ErrBadFlags,
	KindUnexpectedEOF:         ErrUnexpectedEOF,
	KindTruncatedVertexStream: ErrTruncatedVertexStream,
	KindTruncatedIndexStream:  ErrTruncatedIndexStream,
	KindTruncatedSection:      ErrTruncatedSection,
	KindImplausibleCount:      ErrImplausibleCount,
	KindIndexOutOfRange:       ErrIndexOutOfRange,
	KindBadOffset:             ErrBadOffset,
}

// Err returns the sentinel error for the kind.
func (k ErrorKind) Err() error {
	if err, ok := kindSentinels[k]; ok {
		return err
	}
	return fmt.Errorf("unknown decode error kind %d", int(k))
}

// String returns the sentinel message for the kind.
func (k ErrorKind) String() string {
	return k.Err().Error()
}

// DecodeError is returned by every decoder in this package.
type DecodeError struct {
	Kind   ErrorKind
	Offset int         // byte offset at which decoding stopped
	State  DecodeState // last ZMS decode stage completed (StateStart for ZON)
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	}
	return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Detail)
}

// Unwrap returns the kind's sentinel.
func (e *DecodeError) Unwrap() error {
	return e.Kind.Err()
}

func newDecodeError(kind ErrorKind, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Kind:   kind,
		Offset: offset,
		Detail: fmt.Sprintf(format, args...),
	}
}

// rekind turns a low-level end-of-buffer error into the stream-level kind,
// keeping its offset and prefixing the detail with what was being read.
func rekind(err error, kind ErrorKind, what string) error {
	var de *DecodeError
	if !errors.As(err, &de) {
		return err
	}
	if de.Kind != KindUnexpectedEOF {
		return err
	}
	return &DecodeError{
		Kind:   kind,
		Offset: de.Offset,
		State:  de.State,
		Detail: what + ": " + de.Detail,
	}
}
