package formats

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/rose-io/pkg/encoding"
)

// zonBuilder assembles a ZON file block by block, then writes the block
// table with absolute offsets in front of them.
type zonBuilder struct {
	types  []int32
	blocks [][]byte
}

func (z *zonBuilder) add(typ ZoneBlockType, body []byte) {
	z.types = append(z.types, int32(typ))
	z.blocks = append(z.blocks, body)
}

func (z *zonBuilder) bytes() []byte {
	buf := new(bytes.Buffer)
	le(buf, int32(len(z.blocks)))
	offset := 4 + 8*len(z.blocks)
	for i, body := range z.blocks {
		le(buf, z.types[i])
		le(buf, int32(offset))
		offset += len(body)
	}
	for _, body := range z.blocks {
		buf.Write(body)
	}
	return buf.Bytes()
}

func writeZoneString(buf *bytes.Buffer, s string) {
	raw := encoding.UTF8ToEUCKR(s)
	buf.WriteByte(byte(len(raw)))
	buf.Write(raw)
}

func zoneInfoBlock(width, height int32) []byte {
	buf := new(bytes.Buffer)
	le(buf, int32(ZoneJunonField))
	le(buf, width)
	le(buf, height)
	le(buf, int32(16))    // grid count
	le(buf, float32(250)) // grid size
	le(buf, int32(32))    // start x
	le(buf, int32(31))    // start y
	for i := int32(0); i < width*height; i++ {
		buf.WriteByte(byte(i % 2))
		le(buf, [2]float32{float32(i), float32(-i)})
	}
	return buf.Bytes()
}

func eventPointsBlock(names ...string) []byte {
	buf := new(bytes.Buffer)
	le(buf, int32(len(names)))
	for i, name := range names {
		le(buf, [3]float32{float32(i), 0, float32(i) * 2})
		writeZoneString(buf, name)
	}
	return buf.Bytes()
}

func texturesBlock(paths ...string) []byte {
	buf := new(bytes.Buffer)
	le(buf, int32(len(paths)))
	for _, p := range paths {
		writeZoneString(buf, p)
	}
	return buf.Bytes()
}

func tilesBlock(tiles ...[7]int32) []byte {
	buf := new(bytes.Buffer)
	le(buf, int32(len(tiles)))
	for _, t := range tiles {
		le(buf, t)
	}
	return buf.Bytes()
}

func economyBlock() []byte {
	buf := new(bytes.Buffer)
	writeZoneString(buf, "Canyon City of Zant")
	le(buf, int32(1))
	writeZoneString(buf, "3DDATA/BGM/zant.ogg")
	writeZoneString(buf, "3DDATA/SKY/day.zsc")
	for i := int32(0); i < 13; i++ {
		le(buf, 100+i)
	}
	return buf.Bytes()
}

func testZone() *zonBuilder {
	z := &zonBuilder{}
	z.add(ZoneBlockBasicInfo, zoneInfoBlock(2, 3))
	z.add(ZoneBlockEventPoints, eventPointsBlock("start", "수호의 탑"))
	z.add(ZoneBlockTextures, texturesBlock("3DDATA/TERRAIN/grass.dds", "3DDATA/TERRAIN/rock.dds"))
	z.add(ZoneBlockTiles, tilesBlock(
		[7]int32{0, 1, 0, 0, 1, int32(TileRotationClockwise90), 3},
		[7]int32{0, 0, 1, 1, 0, int32(TileRotationNone), 0},
	))
	z.add(ZoneBlockEconomy, economyBlock())
	return z
}

func TestDecodeZON_Valid(t *testing.T) {
	zone, err := DecodeZON(testZone().bytes())
	if err != nil {
		t.Fatalf("DecodeZON failed: %v", err)
	}

	if zone.Type != ZoneJunonField {
		t.Errorf("expected zone type JunonField, got %s", zone.Type)
	}
	if zone.Width != 2 || zone.Height != 3 {
		t.Errorf("expected 2x3 grid, got %dx%d", zone.Width, zone.Height)
	}
	if zone.GridCount != 16 || zone.GridSize != 250 {
		t.Errorf("expected grid 16 x 250, got %d x %f", zone.GridCount, zone.GridSize)
	}
	if zone.StartX != 32 || zone.StartY != 31 {
		t.Errorf("expected start (32,31), got (%d,%d)", zone.StartX, zone.StartY)
	}
	if len(zone.Positions) != 6 {
		t.Fatalf("expected 6 positions, got %d", len(zone.Positions))
	}

	// Stored column-major: cell (1, 2) is element 1*3+2.
	p := zone.PositionAt(1, 2)
	if p == nil || p.Position[0] != 5 || !p.Used {
		t.Errorf("unexpected cell (1,2): %+v", p)
	}
	if zone.PositionAt(2, 0) != nil || zone.PositionAt(0, -1) != nil {
		t.Error("expected nil for out-of-range cells")
	}

	if len(zone.EventPoints) != 2 {
		t.Fatalf("expected 2 event points, got %d", len(zone.EventPoints))
	}
	ep, ok := zone.EventPoint("수호의 탑")
	if !ok {
		t.Fatalf("EUC-KR event point name not decoded: %+v", zone.EventPoints)
	}
	if ep.Position[2] != 2 {
		t.Errorf("expected event point z 2, got %f", ep.Position[2])
	}

	if len(zone.Textures) != 2 || zone.Textures[1] != "3DDATA/TERRAIN/rock.dds" {
		t.Errorf("unexpected textures %v", zone.Textures)
	}

	if len(zone.Tiles) != 2 {
		t.Fatalf("expected 2 tiles, got %d", len(zone.Tiles))
	}
	tile := zone.Tiles[0]
	if !tile.Blend || tile.Rotation != TileRotationClockwise90 || tile.Type != 3 || tile.Texture2() != 1 {
		t.Errorf("unexpected tile %+v", tile)
	}
	if zone.Tiles[1].Blend || zone.Tiles[1].Texture1() != 1 {
		t.Errorf("unexpected tile %+v", zone.Tiles[1])
	}

	e := zone.Economy
	if e == nil {
		t.Fatal("expected economy block")
	}
	if e.Name != "Canyon City of Zant" || !e.Underground || e.Sky != "3DDATA/SKY/day.zsc" {
		t.Errorf("unexpected economy %+v", e)
	}
	if e.TickRate != 100 || e.FoodConsumption != 112 {
		t.Errorf("economy values misaligned: tick %d food %d", e.TickRate, e.FoodConsumption)
	}

	if len(zone.Blocks) != 5 || len(zone.UnknownBlocks) != 0 {
		t.Errorf("expected 5 known blocks, got %d (%d unknown)", len(zone.Blocks), len(zone.UnknownBlocks))
	}
}

func TestDecodeZON_UnknownBlockSkipped(t *testing.T) {
	z := &zonBuilder{}
	z.add(ZoneBlockType(9), []byte{1, 2, 3, 4})
	z.add(ZoneBlockTextures, texturesBlock("a.dds"))

	zone, err := DecodeZON(z.bytes())
	if err != nil {
		t.Fatalf("DecodeZON failed: %v", err)
	}
	if len(zone.UnknownBlocks) != 1 || zone.UnknownBlocks[0].Type != 9 {
		t.Errorf("expected one unknown block, got %+v", zone.UnknownBlocks)
	}
	if zone.Economy != nil {
		t.Error("expected nil economy without economy block")
	}
}

func TestDecodeZON_Errors(t *testing.T) {
	badOffset := new(bytes.Buffer)
	le(badOffset, int32(1))
	le(badOffset, int32(ZoneBlockTextures))
	le(badOffset, int32(1000))

	hugeCount := new(bytes.Buffer)
	le(hugeCount, int32(0x7FFFFFFF))

	negativeGrid := &zonBuilder{}
	negativeGrid.add(ZoneBlockBasicInfo, zoneInfoBlock(-1, 3))

	truncated := testZone().bytes()
	truncated = truncated[:len(truncated)-3]

	badTile := &zonBuilder{}
	badTile.add(ZoneBlockTextures, texturesBlock("a.dds"))
	badTile.add(ZoneBlockTiles, tilesBlock([7]int32{0, 1, 0, 0, 0, 1, 0}))

	tilesOnly := &zonBuilder{}
	tilesOnly.add(ZoneBlockTiles, tilesBlock([7]int32{5, 9, 0, 0, 0, 1, 0}))

	// Five tiles declared, room for one.
	shortBody := tilesBlock([7]int32{0, 0, 0, 0, 0, 1, 0})
	shortBody[0] = 5
	shortTiles := &zonBuilder{}
	shortTiles.add(ZoneBlockTiles, shortBody)

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"empty data", []byte{}, ErrTruncatedSection},
		{"block offset past end", badOffset.Bytes(), ErrBadOffset},
		{"huge block count", hugeCount.Bytes(), ErrImplausibleCount},
		{"negative grid", negativeGrid.bytes(), ErrImplausibleCount},
		{"truncated economy", truncated, ErrTruncatedSection},
		{"tile texture out of range", badTile.bytes(), ErrIndexOutOfRange},
		{"tiles without textures", tilesOnly.bytes(), ErrIndexOutOfRange},
		{"tile count past end", shortTiles.bytes(), ErrImplausibleCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zone, err := DecodeZON(tt.data)
			if zone != nil {
				t.Error("expected no zone on failure")
			}
			assertKind(t, err, tt.wantErr)
		})
	}
}

func TestDecodeZON_BadOffsetReportsTableEntry(t *testing.T) {
	buf := new(bytes.Buffer)
	le(buf, int32(1))
	le(buf, int32(ZoneBlockTiles))
	le(buf, int32(-4))

	_, err := DecodeZON(buf.Bytes())
	de := assertKind(t, err, ErrBadOffset)
	if de.Offset != 8 {
		t.Errorf("offset %d, expected 8", de.Offset)
	}
}

func TestZoneType_String(t *testing.T) {
	if ZoneBeach.String() != "Beach" {
		t.Errorf("expected Beach, got %s", ZoneBeach)
	}
	if ZoneType(99).String() != "Unknown(99)" {
		t.Errorf("expected Unknown(99), got %s", ZoneType(99))
	}
}

func TestDecodeZONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "JDT01.ZON")
	if err := os.WriteFile(path, testZone().bytes(), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	zone, err := DecodeZONFile(path)
	if err != nil {
		t.Fatalf("DecodeZONFile failed: %v", err)
	}
	if len(zone.Tiles) != 2 {
		t.Errorf("expected 2 tiles, got %d", len(zone.Tiles))
	}
}
