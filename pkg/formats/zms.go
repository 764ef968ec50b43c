// Package formats provides decoders for ROSE Online file formats.
// ZMS (mesh) decoder.
package formats

import (
	"errors"
	"fmt"
	"os"
)

// DecodeState is a stage of the ZMS decode. Stages run strictly in order and
// a failure at any stage fails the whole decode.
type DecodeState int

// Decode stages.
const (
	StateStart DecodeState = iota
	StateHeaderParsed
	StateVerticesParsed
	StateIndicesParsed
	StateValidated
)

// String returns the stage name.
func (s DecodeState) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateHeaderParsed:
		return "HeaderParsed"
	case StateVerticesParsed:
		return "VerticesParsed"
	case StateIndicesParsed:
		return "IndicesParsed"
	case StateValidated:
		return "Validated"
	default:
		return fmt.Sprintf("Unknown(%d)", int(s))
	}
}

// Capabilities records which optional vertex streams a document carries.
type Capabilities struct {
	Flags    VertexFlags
	Normals  bool
	Colors   bool
	Bones    bool
	Tangents bool
	UV       [4]bool // UV1..UV4
}

func capabilitiesFrom(f VertexFlags) Capabilities {
	return Capabilities{
		Flags:    f,
		Normals:  f.Has(FlagNormal),
		Colors:   f.Has(FlagColor),
		Bones:    f.Has(flagBones),
		Tangents: f.Has(FlagTangent),
		UV:       [4]bool{f.Has(FlagUV1), f.Has(FlagUV2), f.Has(FlagUV3), f.Has(FlagUV4)},
	}
}

// Names returns the enabled optional streams, e.g. ["normal", "uv1"].
func (c Capabilities) Names() []string {
	var names []string
	for _, e := range canonicalOrder[1:] {
		if c.Flags.Has(e.flag) {
			names = append(names, e.attr.String())
		}
	}
	return names
}

// MeshDocument is a decoded, validated ZMS mesh. It is not modified after
// DecodeZMS returns and shares no memory with the input buffer.
type MeshDocument struct {
	Header       FormatHeader
	Vertices     []Vertex
	Triangles    []Triangle
	Capabilities Capabilities

	BonePalette   []uint32 // bone ids referenced by Vertex.Bones indices
	MaterialFaces []uint32 // per-material face counts
	Strips        []uint32 // triangle strip indices (v7+)
	Pool          uint16   // vertex pool type (v8)
}

// HasNormals reports whether vertices carry normals.
func (m *MeshDocument) HasNormals() bool { return m.Capabilities.Normals }

// HasColors reports whether vertices carry colors.
func (m *MeshDocument) HasColors() bool { return m.Capabilities.Colors }

// HasBones reports whether vertices carry bone weights and indices.
func (m *MeshDocument) HasBones() bool { return m.Capabilities.Bones }

// HasTangents reports whether vertices carry tangents.
func (m *MeshDocument) HasTangents() bool { return m.Capabilities.Tangents }

// HasUV1 reports whether vertices carry the first UV set.
func (m *MeshDocument) HasUV1() bool { return m.Capabilities.UV[0] }

// HasUV2 reports whether vertices carry the second UV set.
func (m *MeshDocument) HasUV2() bool { return m.Capabilities.UV[1] }

// HasUV3 reports whether vertices carry the third UV set.
func (m *MeshDocument) HasUV3() bool { return m.Capabilities.UV[2] }

// HasUV4 reports whether vertices carry the fourth UV set.
func (m *MeshDocument) HasUV4() bool { return m.Capabilities.UV[3] }

// VertexCount returns the number of vertices.
func (m *MeshDocument) VertexCount() int { return len(m.Vertices) }

// TriangleCount returns the number of triangles.
func (m *MeshDocument) TriangleCount() int { return len(m.Triangles) }

// Positions returns vertex positions as a flat [x0,y0,z0, x1,...] slice.
func (m *MeshDocument) Positions() []float32 {
	out := make([]float32, 0, len(m.Vertices)*3)
	for _, v := range m.Vertices {
		out = append(out, v.Position[0], v.Position[1], v.Position[2])
	}
	return out
}

// Indices returns triangle indices as a flat [a0,b0,c0, a1,...] slice.
func (m *MeshDocument) Indices() []uint32 {
	out := make([]uint32, 0, len(m.Triangles)*3)
	for _, t := range m.Triangles {
		out = append(out, t.I0, t.I1, t.I2)
	}
	return out
}

// Bounds computes the bounding box of the vertex positions. The header box
// is what the exporter wrote and may be looser.
func (m *MeshDocument) Bounds() BoundingBox {
	if len(m.Vertices) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{Min: m.Vertices[0].Position, Max: m.Vertices[0].Position}
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < b.Min[i] {
				b.Min[i] = v.Position[i]
			}
			if v.Position[i] > b.Max[i] {
				b.Max[i] = v.Position[i]
			}
		}
	}
	return b
}

// DecodeZMS decodes a ZMS mesh. On failure it returns a *DecodeError and no
// document.
func DecodeZMS(data []byte) (*MeshDocument, error) {
	d := &zmsDecoder{c: NewCursor(data)}
	doc, err := d.run()
	if err != nil {
		return nil, d.fail(err)
	}
	return doc, nil
}

// DecodeZMSFile decodes a ZMS mesh from disk.
func DecodeZMSFile(path string) (*MeshDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ZMS file: %w", err)
	}
	return DecodeZMS(data)
}

type zmsDecoder struct {
	c     *Cursor
	state DecodeState

	header      FormatHeader
	streams     vertexStreams
	triStart    int
	stripsStart int
}

func (d *zmsDecoder) run() (*MeshDocument, error) {
	h, err := ParseZMSHeader(d.c)
	if err != nil {
		return nil, err
	}
	d.header = h
	d.state = StateHeaderParsed

	palette, err := d.readBonePalette()
	if err != nil {
		return nil, err
	}

	vertexCount, err := d.readCount("vertex")
	if err != nil {
		return nil, err
	}
	if d.streams, err = decodeVertices(d.c, h, vertexCount); err != nil {
		return nil, err
	}
	d.state = StateVerticesParsed

	triCount, err := d.readCount("triangle")
	if err != nil {
		return nil, err
	}
	d.triStart = d.c.Offset()
	tris, err := decodeTriangles(d.c, h, triCount)
	if err != nil {
		return nil, err
	}
	d.state = StateIndicesParsed

	doc := &MeshDocument{
		Header:       h,
		Vertices:     d.streams.vertices,
		Triangles:    tris,
		Capabilities: capabilitiesFrom(h.Flags),
		BonePalette:  palette,
	}
	if err := d.readTrailer(doc); err != nil {
		return nil, err
	}
	if err := d.validate(doc); err != nil {
		return nil, err
	}
	d.state = StateValidated
	return doc, nil
}

// fail stamps the stage reached onto a decode error.
func (d *zmsDecoder) fail(err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		de.State = d.state
	}
	return err
}

// readCount reads an element count in the version's width and rejects
// counts that cannot fit in the rest of the buffer before anything is
// allocated for them.
func (d *zmsDecoder) readCount(what string) (int, error) {
	at := d.c.Offset()
	var n uint64
	if d.header.wide() {
		v, err := d.c.U32()
		if err != nil {
			return 0, rekind(err, KindTruncatedSection, what+" count")
		}
		n = uint64(v)
	} else {
		v, err := d.c.U16()
		if err != nil {
			return 0, rekind(err, KindTruncatedSection, what+" count")
		}
		n = uint64(v)
	}
	if n > uint64(d.c.Remaining()) {
		return 0, newDecodeError(KindImplausibleCount, at, "%s count %d with %d bytes left", what, n, d.c.Remaining())
	}
	return int(n), nil
}

// readIDList reads count values, each preceded by a 32-bit element id in the
// v5/6 layout.
func (d *zmsDecoder) readIDList(count int, what string) ([]uint32, error) {
	out := make([]uint32, count)
	for i := range out {
		var err error
		if d.header.wide() {
			if err = d.c.Skip(4); err == nil {
				out[i], err = d.c.U32()
			}
		} else {
			var v uint16
			v, err = d.c.U16()
			out[i] = uint32(v)
		}
		if err != nil {
			return nil, rekind(err, KindTruncatedSection, fmt.Sprintf("%s %d", what, i))
		}
	}
	return out, nil
}

func (d *zmsDecoder) readBonePalette() ([]uint32, error) {
	count, err := d.readCount("bone")
	if err != nil {
		return nil, err
	}
	return d.readIDList(count, "bone")
}

// readTrailer reads the sections after the index stream: material face
// counts, then strip indices (v7+) and the pool type (v8).
func (d *zmsDecoder) readTrailer(doc *MeshDocument) error {
	count, err := d.readCount("material")
	if err != nil {
		return err
	}
	if doc.MaterialFaces, err = d.readIDList(count, "material"); err != nil {
		return err
	}
	if d.header.wide() {
		return nil
	}

	if count, err = d.readCount("strip index"); err != nil {
		return err
	}
	d.stripsStart = d.c.Offset()
	if doc.Strips, err = d.readIDList(count, "strip index"); err != nil {
		return err
	}

	if d.header.Version >= 8 {
		if doc.Pool, err = d.c.U16(); err != nil {
			return rekind(err, KindTruncatedSection, "pool type")
		}
	}
	return nil
}

// validate checks every cross-stream reference.
func (d *zmsDecoder) validate(doc *MeshDocument) error {
	n := uint32(len(doc.Vertices))
	width := d.header.IndexWidth()
	size := triangleSize(d.header)
	first := 0
	if d.header.wide() {
		first = 4
	}

	for i, t := range doc.Triangles {
		for j, idx := range t.Indices() {
			if idx >= n {
				return newDecodeError(KindIndexOutOfRange, d.triStart+i*size+first+j*width,
					"triangle %d corner %d references vertex %d of %d", i, j, idx, n)
			}
		}
	}

	for i, idx := range doc.Strips {
		if idx >= n {
			return newDecodeError(KindIndexOutOfRange, d.stripsStart+i*2,
				"strip index %d references vertex %d of %d", i, idx, n)
		}
	}

	if doc.HasBones() {
		palette := uint32(len(doc.BonePalette))
		for i, v := range doc.Vertices {
			for j, idx := range v.Bones.Value.Indices {
				// Unused slots carry zero weight and an arbitrary index.
				if v.Bones.Value.Weights[j] == 0 {
					continue
				}
				if idx >= palette {
					return newDecodeError(KindIndexOutOfRange, d.streams.boneIndexOffset(i, j),
						"vertex %d bone %d references palette entry %d of %d", i, j, idx, palette)
				}
			}
		}
	}
	return nil
}
