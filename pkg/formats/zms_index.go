package formats

import "fmt"

// Triangle is one face as three vertex indices.
type Triangle struct {
	I0, I1, I2 uint32
}

// Indices returns the three indices as an array.
func (t Triangle) Indices() [3]uint32 {
	return [3]uint32{t.I0, t.I1, t.I2}
}

// IsDegenerate reports whether two corners share a vertex. Degenerate faces
// are legal in ZMS files.
func (t Triangle) IsDegenerate() bool {
	return t.I0 == t.I1 || t.I1 == t.I2 || t.I0 == t.I2
}

// triangleSize returns the on-disk size of one face record.
func triangleSize(h FormatHeader) int {
	if h.wide() {
		return 4 + 3*4
	}
	return 3 * 2
}

// decodeTriangles reads count index triples. Indices are not checked
// against the vertex count here.
func decodeTriangles(c *Cursor, h FormatHeader, count int) ([]Triangle, error) {
	tris := make([]Triangle, count)
	for i := range tris {
		if err := c.need(triangleSize(h)); err != nil {
			return nil, rekind(err, KindTruncatedIndexStream, fmt.Sprintf("triangle %d", i))
		}
		if h.wide() {
			_ = c.Skip(4) // element id
			tris[i].I0, _ = c.U32()
			tris[i].I1, _ = c.U32()
			tris[i].I2, _ = c.U32()
			continue
		}
		a, _ := c.U16()
		b, _ := c.U16()
		d, _ := c.U16()
		tris[i] = Triangle{I0: uint32(a), I1: uint32(b), I2: uint32(d)}
	}
	return tris, nil
}
