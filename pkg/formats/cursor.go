package formats

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Cursor reads little-endian primitives from an immutable byte slice.
// A failed read leaves the offset unchanged, so the offset reported in the
// error is the end of the last value read successfully.
type Cursor struct {
	data []byte
	off  int
}

// NewCursor returns a cursor positioned at the start of data.
// The cursor borrows data and never writes to it.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current absolute read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Len returns the total buffer length.
func (c *Cursor) Len() int {
	return len(c.data)
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.data) - c.off
}

// need reports an end-of-buffer error when fewer than n bytes remain.
func (c *Cursor) need(n int) error {
	if n < 0 || n > c.Remaining() {
		return newDecodeError(KindUnexpectedEOF, c.off, "need %d bytes, %d left", n, c.Remaining())
	}
	return nil
}

// Seek moves to an absolute offset. Offsets equal to the buffer length are
// allowed (an empty section at end of file).
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.data) {
		return newDecodeError(KindBadOffset, c.off, "seek to %d, buffer is %d bytes", offset, len(c.data))
	}
	c.off = offset
	return nil
}

// Skip advances n bytes.
func (c *Cursor) Skip(n int) error {
	if err := c.need(n); err != nil {
		return err
	}
	c.off += n
	return nil
}

// Bytes returns a copy of the next n bytes.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, c.data[c.off:c.off+n])
	c.off += n
	return out, nil
}

// U8 reads one byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.data[c.off]
	c.off++
	return v, nil
}

// U16 reads a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.off:])
	c.off += 2
	return v, nil
}

// I16 reads a little-endian int16.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 reads a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v, nil
}

// I32 reads a little-endian int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// F32 reads a little-endian IEEE-754 single.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	return math.Float32frombits(v), err
}

// floats reads n consecutive floats after checking the whole run fits.
func (c *Cursor) floats(dst []float32) error {
	if err := c.need(4 * len(dst)); err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(c.data[c.off:]))
		c.off += 4
	}
	return nil
}

// Vec2 reads two floats.
func (c *Cursor) Vec2() (mgl32.Vec2, error) {
	var v mgl32.Vec2
	err := c.floats(v[:])
	return v, err
}

// Vec3 reads three floats.
func (c *Cursor) Vec3() (mgl32.Vec3, error) {
	var v mgl32.Vec3
	err := c.floats(v[:])
	return v, err
}

// Vec4 reads four floats.
func (c *Cursor) Vec4() (mgl32.Vec4, error) {
	var v mgl32.Vec4
	err := c.floats(v[:])
	return v, err
}
