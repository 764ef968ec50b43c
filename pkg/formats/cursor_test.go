package formats

import (
	"errors"
	"math"
	"testing"
)

func TestCursor_Primitives(t *testing.T) {
	data := []byte{
		0x7F,                   // u8
		0x34, 0x12,             // u16
		0xFE, 0xFF,             // i16 -2
		0x78, 0x56, 0x34, 0x12, // u32
		0x00, 0x00, 0x80, 0x3F, // f32 1.0
	}
	c := NewCursor(data)

	if v, err := c.U8(); err != nil || v != 0x7F {
		t.Errorf("U8 = %d, %v", v, err)
	}
	if v, err := c.U16(); err != nil || v != 0x1234 {
		t.Errorf("U16 = %#x, %v", v, err)
	}
	if v, err := c.I16(); err != nil || v != -2 {
		t.Errorf("I16 = %d, %v", v, err)
	}
	if v, err := c.U32(); err != nil || v != 0x12345678 {
		t.Errorf("U32 = %#x, %v", v, err)
	}
	if v, err := c.F32(); err != nil || v != 1 {
		t.Errorf("F32 = %f, %v", v, err)
	}
	if c.Remaining() != 0 || c.Offset() != len(data) {
		t.Errorf("expected cursor at end, offset %d remaining %d", c.Offset(), c.Remaining())
	}
}

func TestCursor_FailedReadKeepsOffset(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3})
	if _, err := c.U16(); err != nil {
		t.Fatalf("U16 failed: %v", err)
	}

	_, err := c.U32()
	var de *DecodeError
	if !errors.As(err, &de) || de.Kind != KindUnexpectedEOF {
		t.Fatalf("expected UnexpectedEOF, got %v", err)
	}
	if de.Offset != 2 || c.Offset() != 2 {
		t.Errorf("expected offset 2, error at %d cursor at %d", de.Offset, c.Offset())
	}

	// A vector that does not fit entirely is not partially consumed.
	if _, err := c.Vec2(); err == nil {
		t.Error("expected Vec2 to fail")
	}
	if c.Offset() != 2 {
		t.Errorf("Vec2 advanced cursor to %d", c.Offset())
	}
}

func TestCursor_Vectors(t *testing.T) {
	buf := make([]byte, 0, 36)
	for i := 1; i <= 9; i++ {
		bits := math.Float32bits(float32(i))
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	c := NewCursor(buf)

	v2, _ := c.Vec2()
	v3, _ := c.Vec3()
	v4, err := c.Vec4()
	if err != nil {
		t.Fatalf("Vec4 failed: %v", err)
	}
	if v2[1] != 2 || v3[0] != 3 || v3[2] != 5 || v4[3] != 9 {
		t.Errorf("unexpected vectors %v %v %v", v2, v3, v4)
	}
}

func TestCursor_SeekSkipBytes(t *testing.T) {
	data := []byte{10, 20, 30, 40}
	c := NewCursor(data)

	if err := c.Seek(4); err != nil {
		t.Errorf("seek to end should succeed: %v", err)
	}
	if err := c.Seek(5); !errors.Is(err, ErrBadOffset) {
		t.Errorf("expected ErrBadOffset, got %v", err)
	}
	if err := c.Seek(-1); !errors.Is(err, ErrBadOffset) {
		t.Errorf("expected ErrBadOffset, got %v", err)
	}

	if err := c.Seek(1); err != nil {
		t.Fatal(err)
	}
	if err := c.Skip(4); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	if err := c.Skip(-1); err == nil {
		t.Error("expected negative skip to fail")
	}

	b, err := c.Bytes(2)
	if err != nil || len(b) != 2 || b[0] != 20 {
		t.Fatalf("Bytes = %v, %v", b, err)
	}
	b[0] = 99
	if data[1] != 20 {
		t.Error("Bytes returned a view into the input")
	}
}
