// Package formats provides decoders for ROSE Online file formats.
// ZON (zone) decoder.
package formats

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/rose-io/pkg/encoding"
)

// ZoneBlockType identifies a section of a ZON file.
type ZoneBlockType int32

// ZON block types.
const (
	ZoneBlockBasicInfo   ZoneBlockType = 0
	ZoneBlockEventPoints ZoneBlockType = 1
	ZoneBlockTextures    ZoneBlockType = 2
	ZoneBlockTiles       ZoneBlockType = 3
	ZoneBlockEconomy     ZoneBlockType = 4
)

// String returns a human-readable block type name.
func (t ZoneBlockType) String() string {
	switch t {
	case ZoneBlockBasicInfo:
		return "BasicInfo"
	case ZoneBlockEventPoints:
		return "EventPoints"
	case ZoneBlockTextures:
		return "Textures"
	case ZoneBlockTiles:
		return "Tiles"
	case ZoneBlockEconomy:
		return "Economy"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(t))
	}
}

// ZoneType is the terrain theme of a zone.
type ZoneType int32

// Zone types.
const (
	ZoneGrass           ZoneType = 0
	ZoneMountain        ZoneType = 1
	ZoneMountainVillage ZoneType = 2
	ZoneBoatVillage     ZoneType = 3
	ZoneLogin           ZoneType = 4
	ZoneMountainGorge   ZoneType = 5
	ZoneBeach           ZoneType = 6
	ZoneJunonDungeon    ZoneType = 7
	ZoneLunaSnow        ZoneType = 8
	ZoneBirth           ZoneType = 9
	ZoneJunonField      ZoneType = 10
	ZoneLunaDungeon     ZoneType = 11
	ZoneEldeonField     ZoneType = 12
	ZoneEldeonField2    ZoneType = 13
	ZoneJunonPyramids   ZoneType = 14
)

var zoneTypeNames = map[ZoneType]string{
	ZoneGrass:           "Grass",
	ZoneMountain:        "Mountain",
	ZoneMountainVillage: "MountainVillage",
	ZoneBoatVillage:     "BoatVillage",
	ZoneLogin:           "Login",
	ZoneMountainGorge:   "MountainGorge",
	ZoneBeach:           "Beach",
	ZoneJunonDungeon:    "JunonDungeon",
	ZoneLunaSnow:        "LunaSnow",
	ZoneBirth:           "Birth",
	ZoneJunonField:      "JunonField",
	ZoneLunaDungeon:     "LunaDungeon",
	ZoneEldeonField:     "EldeonField",
	ZoneEldeonField2:    "EldeonField2",
	ZoneJunonPyramids:   "JunonPyramids",
}

// String returns a human-readable zone type name.
func (t ZoneType) String() string {
	if name, ok := zoneTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int32(t))
}

// TileRotation is how a tile's second texture layer is oriented.
type TileRotation int32

// Tile rotations.
const (
	TileRotationUnknown            TileRotation = 0
	TileRotationNone               TileRotation = 1
	TileRotationFlipHorizontal     TileRotation = 2
	TileRotationFlipVertical       TileRotation = 3
	TileRotationFlip               TileRotation = 4
	TileRotationClockwise90        TileRotation = 5
	TileRotationCounterClockwise90 TileRotation = 6
)

// String returns a human-readable rotation name.
func (r TileRotation) String() string {
	switch r {
	case TileRotationUnknown:
		return "Unknown"
	case TileRotationNone:
		return "None"
	case TileRotationFlipHorizontal:
		return "FlipHorizontal"
	case TileRotationFlipVertical:
		return "FlipVertical"
	case TileRotationFlip:
		return "Flip"
	case TileRotationClockwise90:
		return "Clockwise90"
	case TileRotationCounterClockwise90:
		return "CounterClockwise90"
	default:
		return fmt.Sprintf("Invalid(%d)", int32(r))
	}
}

// ZoneBlock is one entry of the ZON block table.
type ZoneBlock struct {
	Type   ZoneBlockType
	Offset int
}

// ZonePosition is one cell of the zone's map grid.
type ZonePosition struct {
	Used     bool
	Position mgl32.Vec2
}

// EventPoint is a named spawn or warp location.
type EventPoint struct {
	Position mgl32.Vec3
	Name     string
}

// Tile is a two-layer terrain tile. Layer+Offset pairs index Zone.Textures.
type Tile struct {
	Layer1   int32
	Layer2   int32
	Offset1  int32
	Offset2  int32
	Blend    bool
	Rotation TileRotation
	Type     int32
}

// Texture1 returns the index of the base layer texture.
func (t Tile) Texture1() int { return int(t.Layer1) + int(t.Offset1) }

// Texture2 returns the index of the blended layer texture.
func (t Tile) Texture2() int { return int(t.Layer2) + int(t.Offset2) }

// Economy holds the zone's economy simulation settings.
type Economy struct {
	Name                  string
	Underground           bool
	BackgroundMusic       string
	Sky                   string
	TickRate              int32
	PopulationBase        int32
	PopulationGrowthRate  int32
	MetalConsumption      int32
	StoneConsumption      int32
	WoodConsumption       int32
	LeatherConsumption    int32
	ClothConsumption      int32
	AlchemyConsumption    int32
	ChemicalConsumption   int32
	IndustrialConsumption int32
	MedicineConsumption   int32
	FoodConsumption       int32
}

// Zone is a decoded ZON file.
type Zone struct {
	Type      ZoneType
	Width     int32
	Height    int32
	GridCount int32
	GridSize  float32
	StartX    int32
	StartY    int32
	Positions []ZonePosition // Width*Height cells, column-major as stored

	EventPoints []EventPoint
	Textures    []string
	Tiles       []Tile
	Economy     *Economy // nil when the file has no economy block

	Blocks        []ZoneBlock // block table in file order
	UnknownBlocks []ZoneBlock // blocks this decoder skipped
}

// PositionAt returns the grid cell at column x, row y, or nil when out of range.
func (z *Zone) PositionAt(x, y int) *ZonePosition {
	if x < 0 || y < 0 || x >= int(z.Width) || y >= int(z.Height) {
		return nil
	}
	return &z.Positions[x*int(z.Height)+y]
}

// EventPoint returns the first event point with the given name.
func (z *Zone) EventPoint(name string) (EventPoint, bool) {
	for _, ep := range z.EventPoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return EventPoint{}, false
}

// DecodeZON decodes a ZON zone file. Block offsets are absolute; blocks are
// decoded in table order by seeking to each.
func DecodeZON(data []byte) (*Zone, error) {
	c := NewCursor(data)

	blockCount, err := readZoneCount(c, "block", 8)
	if err != nil {
		return nil, err
	}

	z := &Zone{Blocks: make([]ZoneBlock, blockCount)}
	for i := range z.Blocks {
		if err := c.need(8); err != nil {
			return nil, rekind(err, KindTruncatedSection, fmt.Sprintf("block table entry %d", i))
		}
		typ, _ := c.I32()
		entryAt := c.Offset()
		off, _ := c.I32()
		if off < 0 || int(off) > c.Len() {
			return nil, newDecodeError(KindBadOffset, entryAt, "block %d (%s) offset %d, buffer is %d bytes",
				i, ZoneBlockType(typ), off, c.Len())
		}
		z.Blocks[i] = ZoneBlock{Type: ZoneBlockType(typ), Offset: int(off)}
	}

	tilesAt := -1
	for _, b := range z.Blocks {
		if err := c.Seek(b.Offset); err != nil {
			return nil, err
		}
		switch b.Type {
		case ZoneBlockBasicInfo:
			err = decodeZoneInfo(c, z)
		case ZoneBlockEventPoints:
			z.EventPoints, err = decodeEventPoints(c)
		case ZoneBlockTextures:
			z.Textures, err = decodeZoneTextures(c)
		case ZoneBlockTiles:
			z.Tiles, err = decodeTiles(c)
			tilesAt = b.Offset + 4
		case ZoneBlockEconomy:
			z.Economy, err = decodeEconomy(c)
		default:
			z.UnknownBlocks = append(z.UnknownBlocks, b)
		}
		if err != nil {
			return nil, rekind(err, KindTruncatedSection, b.Type.String())
		}
	}

	// A zone without a texture block has no textures for tiles to use.
	if tilesAt >= 0 {
		if err := validateTiles(z, tilesAt); err != nil {
			return nil, err
		}
	}
	return z, nil
}

// DecodeZONFile decodes a ZON zone file from disk.
func DecodeZONFile(path string) (*Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ZON file: %w", err)
	}
	return DecodeZON(data)
}

// readZoneCount reads an i32 count and rejects negative counts and counts
// whose elements, at minSize bytes each, cannot fit in the bytes left.
func readZoneCount(c *Cursor, what string, minSize int) (int, error) {
	at := c.Offset()
	n, err := c.I32()
	if err != nil {
		return 0, rekind(err, KindTruncatedSection, what+" count")
	}
	if n < 0 || int64(n)*int64(minSize) > int64(c.Remaining()) {
		return 0, newDecodeError(KindImplausibleCount, at, "%s count %d with %d bytes left", what, n, c.Remaining())
	}
	return int(n), nil
}

// readZoneString reads a u8 length-prefixed EUC-KR string.
func readZoneString(c *Cursor) (string, error) {
	n, err := c.U8()
	if err != nil {
		return "", err
	}
	raw, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return encoding.NullTerminated(raw), nil
}

func decodeZoneInfo(c *Cursor, z *Zone) error {
	var fields [4]int32
	for i := range fields {
		v, err := c.I32()
		if err != nil {
			return err
		}
		fields[i] = v
	}
	z.Type = ZoneType(fields[0])
	z.Width, z.Height, z.GridCount = fields[1], fields[2], fields[3]

	var err error
	if z.GridSize, err = c.F32(); err != nil {
		return err
	}
	if z.StartX, err = c.I32(); err != nil {
		return err
	}
	if z.StartY, err = c.I32(); err != nil {
		return err
	}

	cells := int64(z.Width) * int64(z.Height)
	if z.Width < 0 || z.Height < 0 || cells*zoneCellSize > int64(c.Remaining()) {
		return newDecodeError(KindImplausibleCount, c.Offset(), "zone grid %dx%d with %d bytes left",
			z.Width, z.Height, c.Remaining())
	}

	z.Positions = make([]ZonePosition, cells)
	for i := range z.Positions {
		used, err := c.U8()
		if err != nil {
			return err
		}
		pos, err := c.Vec2()
		if err != nil {
			return err
		}
		z.Positions[i] = ZonePosition{Used: used != 0, Position: pos}
	}
	return nil
}

func decodeEventPoints(c *Cursor) ([]EventPoint, error) {
	count, err := readZoneCount(c, "event point", 12+1)
	if err != nil {
		return nil, err
	}
	points := make([]EventPoint, count)
	for i := range points {
		if points[i].Position, err = c.Vec3(); err != nil {
			return nil, err
		}
		if points[i].Name, err = readZoneString(c); err != nil {
			return nil, err
		}
	}
	return points, nil
}

func decodeZoneTextures(c *Cursor) ([]string, error) {
	count, err := readZoneCount(c, "texture", 1)
	if err != nil {
		return nil, err
	}
	textures := make([]string, count)
	for i := range textures {
		if textures[i], err = readZoneString(c); err != nil {
			return nil, err
		}
	}
	return textures, nil
}

const (
	zoneCellSize = 1 + 2*4
	zoneTileSize = 7 * 4
)

func decodeTiles(c *Cursor) ([]Tile, error) {
	count, err := readZoneCount(c, "tile", zoneTileSize)
	if err != nil {
		return nil, err
	}
	tiles := make([]Tile, count)
	for i := range tiles {
		if err := c.need(zoneTileSize); err != nil {
			return nil, err
		}
		var v [7]int32
		for j := range v {
			v[j], _ = c.I32()
		}
		tiles[i] = Tile{
			Layer1:   v[0],
			Layer2:   v[1],
			Offset1:  v[2],
			Offset2:  v[3],
			Blend:    v[4] != 0,
			Rotation: TileRotation(v[5]),
			Type:     v[6],
		}
	}
	return tiles, nil
}

func decodeEconomy(c *Cursor) (*Economy, error) {
	e := &Economy{}
	var err error
	if e.Name, err = readZoneString(c); err != nil {
		return nil, err
	}
	underground, err := c.I32()
	if err != nil {
		return nil, err
	}
	e.Underground = underground != 0
	if e.BackgroundMusic, err = readZoneString(c); err != nil {
		return nil, err
	}
	if e.Sky, err = readZoneString(c); err != nil {
		return nil, err
	}

	values := []*int32{
		&e.TickRate, &e.PopulationBase, &e.PopulationGrowthRate,
		&e.MetalConsumption, &e.StoneConsumption, &e.WoodConsumption,
		&e.LeatherConsumption, &e.ClothConsumption, &e.AlchemyConsumption,
		&e.ChemicalConsumption, &e.IndustrialConsumption, &e.MedicineConsumption,
		&e.FoodConsumption,
	}
	for _, v := range values {
		if *v, err = c.I32(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// validateTiles checks every tile layer against the texture table.
func validateTiles(z *Zone, tilesAt int) error {
	n := len(z.Textures)
	for i, t := range z.Tiles {
		for layer, tex := range [2]int{t.Texture1(), t.Texture2()} {
			if tex < 0 || tex >= n {
				return newDecodeError(KindIndexOutOfRange, tilesAt+i*zoneTileSize+layer*4,
					"tile %d layer %d references texture %d of %d", i, layer+1, tex, n)
			}
		}
	}
	return nil
}
