package formats

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// ZMS magic tag layout: "ZMS" + four decimal digits + NUL.
const (
	zmsMagicPrefix = "ZMS"
	zmsMagicLen    = 8
)

// Supported ZMS versions.
const (
	ZMSVersionMin = 5
	ZMSVersionMax = 8
)

// VertexFlags is the ZMS vertex format bitset. Each bit enables one
// per-vertex attribute stream.
type VertexFlags uint32

// Vertex format bits.
const (
	FlagPosition   VertexFlags = 1 << 1
	FlagNormal     VertexFlags = 1 << 2
	FlagColor      VertexFlags = 1 << 3
	FlagBoneWeight VertexFlags = 1 << 4
	FlagBoneIndex  VertexFlags = 1 << 5
	FlagTangent    VertexFlags = 1 << 6
	FlagUV1        VertexFlags = 1 << 7
	FlagUV2        VertexFlags = 1 << 8
	FlagUV3        VertexFlags = 1 << 9
	FlagUV4        VertexFlags = 1 << 10

	// FlagsKnown is every bit this decoder interprets.
	FlagsKnown = FlagPosition | FlagNormal | FlagColor | FlagBoneWeight | FlagBoneIndex |
		FlagTangent | FlagUV1 | FlagUV2 | FlagUV3 | FlagUV4

	// FlagsReserved are bits the format leaves unassigned: bit 0 and bits 11-15.
	// They are kept in the header but do not change the layout.
	FlagsReserved VertexFlags = 0x0001 | 0xF800

	flagBones = FlagBoneWeight | FlagBoneIndex
)

var flagNames = []struct {
	flag VertexFlags
	name string
}{
	{FlagPosition, "POSITION"},
	{FlagNormal, "NORMAL"},
	{FlagColor, "COLOR"},
	{FlagBoneWeight, "BONE_WEIGHT"},
	{FlagBoneIndex, "BONE_INDEX"},
	{FlagTangent, "TANGENT"},
	{FlagUV1, "UV1"},
	{FlagUV2, "UV2"},
	{FlagUV3, "UV3"},
	{FlagUV4, "UV4"},
}

// Has reports whether every bit of f2 is set.
func (f VertexFlags) Has(f2 VertexFlags) bool {
	return f&f2 == f2
}

// String returns the set flags joined with "|", e.g. "POSITION|NORMAL|UV1".
func (f VertexFlags) String() string {
	var parts []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			parts = append(parts, fn.name)
		}
	}
	if rest := f & FlagsReserved; rest != 0 {
		parts = append(parts, fmt.Sprintf("RESERVED(0x%x)", uint32(rest)))
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// BoundingBox is the axis-aligned box stored in the ZMS header.
type BoundingBox struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// Size returns the box extent on each axis.
func (b BoundingBox) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box midpoint.
func (b BoundingBox) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Contains reports whether p lies inside the box, borders included.
func (b BoundingBox) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// FormatHeader is the fixed ZMS preamble.
type FormatHeader struct {
	Magic       string // tag without the trailing NUL, e.g. "ZMS0008"
	Version     int
	Flags       VertexFlags
	BoundingBox BoundingBox
}

// wide reports whether the file uses the v5/6 layout: 32-bit counts and
// indices, and a 32-bit element id in front of every stream element.
func (h FormatHeader) wide() bool {
	return h.Version < 7
}

// IndexWidth returns the on-disk size of one triangle index in bytes.
func (h FormatHeader) IndexWidth() int {
	if h.wide() {
		return 4
	}
	return 2
}

// ParseZMSHeader reads the magic tag, vertex flags and bounding box.
func ParseZMSHeader(c *Cursor) (FormatHeader, error) {
	start := c.Offset()
	tag, err := c.Bytes(zmsMagicLen)
	if err != nil {
		return FormatHeader{}, err
	}

	version, ok := parseZMSMagic(tag)
	if !ok {
		return FormatHeader{}, newDecodeError(KindBadMagic, start, "got \"%s\", expected \"ZMS000N\"", printableTag(tag))
	}
	if version < ZMSVersionMin || version > ZMSVersionMax {
		return FormatHeader{}, newDecodeError(KindUnsupportedVersion, start,
			"version %d, supported %d-%d", version, ZMSVersionMin, ZMSVersionMax)
	}

	h := FormatHeader{
		Magic:   string(tag[:zmsMagicLen-1]),
		Version: version,
	}

	flagsAt := c.Offset()
	raw, err := c.U32()
	if err != nil {
		return FormatHeader{}, err
	}
	h.Flags = VertexFlags(raw)
	if err := checkFlags(h.Flags, flagsAt); err != nil {
		return FormatHeader{}, err
	}

	if h.BoundingBox.Min, err = c.Vec3(); err != nil {
		return FormatHeader{}, err
	}
	if h.BoundingBox.Max, err = c.Vec3(); err != nil {
		return FormatHeader{}, err
	}
	return h, nil
}

// parseZMSMagic extracts the version from "ZMS" + 4 digits + NUL.
func parseZMSMagic(tag []byte) (int, bool) {
	if len(tag) != zmsMagicLen || string(tag[:3]) != zmsMagicPrefix || tag[7] != 0 {
		return 0, false
	}
	version := 0
	for _, b := range tag[3:7] {
		if b < '0' || b > '9' {
			return 0, false
		}
		version = version*10 + int(b-'0')
	}
	return version, true
}

func checkFlags(f VertexFlags, offset int) error {
	if unknown := f &^ (FlagsKnown | FlagsReserved); unknown != 0 {
		return newDecodeError(KindBadFlags, offset, "undocumented bits 0x%x set", uint32(unknown))
	}
	if !f.Has(FlagPosition) {
		return newDecodeError(KindBadFlags, offset, "position stream missing (flags %s)", f)
	}
	if b := f & flagBones; b != 0 && b != flagBones {
		return newDecodeError(KindBadFlags, offset, "bone weights and indices must be set together (flags %s)", f)
	}
	return nil
}

// printableTag renders a magic tag for error messages.
func printableTag(tag []byte) string {
	var sb strings.Builder
	for _, b := range tag {
		if b >= 0x20 && b < 0x7f {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "\\x%02x", b)
		}
	}
	return sb.String()
}
