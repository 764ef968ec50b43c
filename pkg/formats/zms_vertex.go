package formats

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// OptVec3 is a Vec3 that may be absent. Valid is false when the stream is
// not present in the file, which is distinct from a present zero vector.
type OptVec3 struct {
	Value mgl32.Vec3
	Valid bool
}

// OptVec2 is a Vec2 that may be absent.
type OptVec2 struct {
	Value mgl32.Vec2
	Valid bool
}

// Color is an RGBA color with components normalized to 0..1.
type Color struct {
	R, G, B, A float32
}

// OptColor is a Color that may be absent.
type OptColor struct {
	Value Color
	Valid bool
}

// BoneWeights binds a vertex to up to four entries of the bone palette.
type BoneWeights struct {
	Weights [4]float32
	Indices [4]uint32 // indices into MeshDocument.BonePalette
}

// OptBones is a BoneWeights that may be absent.
type OptBones struct {
	Value BoneWeights
	Valid bool
}

// Vertex is one decoded ZMS vertex. Position is always present; every other
// attribute is set only when the matching header flag is.
type Vertex struct {
	Position mgl32.Vec3
	Normal   OptVec3
	Color    OptColor
	Bones    OptBones
	Tangent  OptVec3
	UV1      OptVec2
	UV2      OptVec2
	UV3      OptVec2
	UV4      OptVec2
}

// Attribute identifies one per-vertex stream.
type Attribute int

// Attributes in canonical on-disk order.
const (
	AttrPosition Attribute = iota
	AttrNormal
	AttrColor
	AttrBones
	AttrTangent
	AttrUV1
	AttrUV2
	AttrUV3
	AttrUV4
)

// canonicalOrder is the order streams appear in the file. Reading them in
// any other order silently misparses.
var canonicalOrder = []struct {
	attr Attribute
	flag VertexFlags
}{
	{AttrPosition, FlagPosition},
	{AttrNormal, FlagNormal},
	{AttrColor, FlagColor},
	{AttrBones, flagBones},
	{AttrTangent, FlagTangent},
	{AttrUV1, FlagUV1},
	{AttrUV2, FlagUV2},
	{AttrUV3, FlagUV3},
	{AttrUV4, FlagUV4},
}

// String returns the attribute name.
func (a Attribute) String() string {
	switch a {
	case AttrPosition:
		return "position"
	case AttrNormal:
		return "normal"
	case AttrColor:
		return "color"
	case AttrBones:
		return "bones"
	case AttrTangent:
		return "tangent"
	case AttrUV1:
		return "uv1"
	case AttrUV2:
		return "uv2"
	case AttrUV3:
		return "uv3"
	case AttrUV4:
		return "uv4"
	default:
		return fmt.Sprintf("Unknown(%d)", int(a))
	}
}

// payloadSize returns the bytes one element of the stream occupies,
// excluding the v5/6 element id.
func (a Attribute) payloadSize(wide bool) int {
	switch a {
	case AttrPosition, AttrNormal, AttrTangent:
		return 12
	case AttrColor:
		return 16
	case AttrBones:
		if wide {
			return 16 + 4*4
		}
		return 16 + 4*2
	default:
		return 8
	}
}

// VertexLayout is the per-file vertex layout, resolved once from the header.
type VertexLayout struct {
	Attributes []Attribute // enabled streams in canonical order
	Stride     int         // bytes per vertex summed over all streams
	wide       bool
}

// Layout resolves the enabled attribute streams for a header.
func Layout(h FormatHeader) VertexLayout {
	l := VertexLayout{wide: h.wide()}
	for _, e := range canonicalOrder {
		if !h.Flags.Has(e.flag) {
			continue
		}
		l.Attributes = append(l.Attributes, e.attr)
		l.Stride += l.elementSize(e.attr)
	}
	return l
}

// elementSize returns the on-disk size of one stream element.
func (l VertexLayout) elementSize(a Attribute) int {
	n := a.payloadSize(l.wide)
	if l.wide {
		n += 4
	}
	return n
}

// BlockSize returns the size of the whole vertex block for count vertices.
func (l VertexLayout) BlockSize(count int) int64 {
	return int64(l.Stride) * int64(count)
}

// vertexStreams is the decoded vertex block plus where each stream started,
// which validation needs to report offsets of bad bone indices.
type vertexStreams struct {
	vertices []Vertex
	starts   map[Attribute]int
	layout   VertexLayout
}

// decodeVertices reads count vertices. Each enabled attribute is one
// contiguous stream over all vertices, streams in canonical order.
func decodeVertices(c *Cursor, h FormatHeader, count int) (vertexStreams, error) {
	layout := Layout(h)
	if layout.BlockSize(count) > int64(c.Remaining()) {
		return vertexStreams{}, layout.truncation(c.Offset(), c.Remaining(), count)
	}
	return readVertexStreams(c, layout, count)
}

func readVertexStreams(c *Cursor, layout VertexLayout, count int) (vertexStreams, error) {
	vs := vertexStreams{
		vertices: make([]Vertex, count),
		starts:   make(map[Attribute]int, len(layout.Attributes)),
		layout:   layout,
	}

	for _, attr := range layout.Attributes {
		vs.starts[attr] = c.Offset()
		for i := range vs.vertices {
			if layout.wide {
				// Element id; files always store it in vertex order.
				if err := c.Skip(4); err != nil {
					return vertexStreams{}, rekind(err, KindTruncatedVertexStream, fmt.Sprintf("%s id of vertex %d", attr, i))
				}
			}
			if err := readAttribute(c, attr, &vs.vertices[i], layout.wide); err != nil {
				return vertexStreams{}, rekind(err, KindTruncatedVertexStream, fmt.Sprintf("%s of vertex %d", attr, i))
			}
		}
	}
	return vs, nil
}

// truncation reports where sequential decoding of a vertex block that does
// not fit in avail bytes would stop, without allocating for it. Every read
// of an id or an attribute is all-or-nothing, so the failure lands on the
// start of the first element that does not fit.
func (l VertexLayout) truncation(start, avail, count int) error {
	at := start
	for _, attr := range l.Attributes {
		size := l.elementSize(attr)
		whole := avail / size
		if whole >= count {
			at += count * size
			avail -= count * size
			continue
		}
		at += whole * size
		left := avail - whole*size
		what := fmt.Sprintf("%s of vertex %d", attr, whole)
		need := attr.payloadSize(l.wide)
		if l.wide {
			if left < 4 {
				what, need = fmt.Sprintf("%s id of vertex %d", attr, whole), 4
			} else {
				at += 4
				left -= 4
			}
		}
		return newDecodeError(KindTruncatedVertexStream, at, "%s: need %d bytes, %d left", what, need, left)
	}
	// Unreachable while BlockSize(count) > avail.
	return newDecodeError(KindTruncatedVertexStream, at, "vertex block of %d bytes, %d left", l.BlockSize(count), avail)
}

func readAttribute(c *Cursor, attr Attribute, v *Vertex, wide bool) error {
	var err error
	switch attr {
	case AttrPosition:
		v.Position, err = c.Vec3()
	case AttrNormal:
		v.Normal.Value, err = c.Vec3()
		v.Normal.Valid = err == nil
	case AttrColor:
		var rgba mgl32.Vec4
		rgba, err = c.Vec4()
		v.Color = OptColor{Value: Color{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}, Valid: err == nil}
	case AttrBones:
		err = readBones(c, &v.Bones, wide)
	case AttrTangent:
		v.Tangent.Value, err = c.Vec3()
		v.Tangent.Valid = err == nil
	case AttrUV1:
		err = readUV(c, &v.UV1)
	case AttrUV2:
		err = readUV(c, &v.UV2)
	case AttrUV3:
		err = readUV(c, &v.UV3)
	case AttrUV4:
		err = readUV(c, &v.UV4)
	}
	return err
}

func readUV(c *Cursor, uv *OptVec2) error {
	v, err := c.Vec2()
	if err != nil {
		return err
	}
	*uv = OptVec2{Value: v, Valid: true}
	return nil
}

func readBones(c *Cursor, b *OptBones, wide bool) error {
	size := AttrBones.payloadSize(wide)
	if err := c.need(size); err != nil {
		return err
	}
	var bw BoneWeights
	w, _ := c.Vec4()
	copy(bw.Weights[:], w[:])
	for i := range bw.Indices {
		if wide {
			v, _ := c.U32()
			bw.Indices[i] = v
		} else {
			v, _ := c.U16()
			bw.Indices[i] = uint32(v)
		}
	}
	*b = OptBones{Value: bw, Valid: true}
	return nil
}

// boneIndexOffset returns the file offset of bone index j of vertex i.
func (vs vertexStreams) boneIndexOffset(i, j int) int {
	off := vs.starts[AttrBones] + i*vs.layout.elementSize(AttrBones) + 16
	width := 2
	if vs.layout.wide {
		off += 4
		width = 4
	}
	return off + j*width
}
