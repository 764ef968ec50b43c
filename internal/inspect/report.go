// Package inspect decodes ROSE files for rosetool and summarises the results.
package inspect

import (
	"time"

	"github.com/pkg/errors"

	"github.com/Faultbox/rose-io/pkg/formats"
)

// Report is the outcome of inspecting one file.
type Report struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
	Size   int    `yaml:"size"`

	Mesh *MeshSummary `yaml:"mesh,omitempty"`
	Zone *ZoneSummary `yaml:"zone,omitempty"`

	Error     string `yaml:"error,omitempty"`
	ErrorKind string `yaml:"error_kind,omitempty"`
	Offset    *int   `yaml:"error_offset,omitempty"` // set for decode errors only
	Stage     string `yaml:"error_stage,omitempty"`

	Elapsed time.Duration `yaml:"-"`
}

// OK reports whether the file decoded cleanly.
func (r *Report) OK() bool {
	return r.Error == ""
}

func (r *Report) setError(err error) {
	r.Error = err.Error()
	var de *formats.DecodeError
	if errors.As(err, &de) {
		off := de.Offset
		r.ErrorKind = de.Kind.String()
		r.Offset = &off
		if r.Format == formats.FormatZMS.String() {
			r.Stage = de.State.String()
		}
	}
}

// MeshSummary describes a decoded ZMS mesh.
type MeshSummary struct {
	Version    int        `yaml:"version"`
	Flags      string     `yaml:"flags"`
	Streams    []string   `yaml:"streams,flow"`
	Vertices   int        `yaml:"vertices"`
	Triangles  int        `yaml:"triangles"`
	Degenerate int        `yaml:"degenerate_triangles"`
	Bones      int        `yaml:"bones"`
	Materials  int        `yaml:"materials"`
	Strips     int        `yaml:"strip_indices"`
	Pool       uint16     `yaml:"pool"`
	HeaderMin  [3]float32 `yaml:"header_min,flow"`
	HeaderMax  [3]float32 `yaml:"header_max,flow"`
	BoundsMin  [3]float32 `yaml:"bounds_min,flow"`
	BoundsMax  [3]float32 `yaml:"bounds_max,flow"`
	Extent     [3]float32 `yaml:"extent,flow"`
	Center     [3]float32 `yaml:"center,flow"`
}

// SummarizeMesh builds a MeshSummary from a decoded document.
func SummarizeMesh(doc *formats.MeshDocument) *MeshSummary {
	s := &MeshSummary{
		Version:   doc.Header.Version,
		Flags:     doc.Header.Flags.String(),
		Streams:   append([]string{"position"}, doc.Capabilities.Names()...),
		Vertices:  doc.VertexCount(),
		Triangles: doc.TriangleCount(),
		Bones:     len(doc.BonePalette),
		Materials: len(doc.MaterialFaces),
		Strips:    len(doc.Strips),
		Pool:      doc.Pool,
		HeaderMin: doc.Header.BoundingBox.Min,
		HeaderMax: doc.Header.BoundingBox.Max,
	}
	bounds := doc.Bounds()
	s.BoundsMin, s.BoundsMax = bounds.Min, bounds.Max
	s.Extent, s.Center = bounds.Size(), bounds.Center()
	for _, t := range doc.Triangles {
		if t.IsDegenerate() {
			s.Degenerate++
		}
	}
	return s
}

// ZoneSummary describes a decoded ZON zone.
type ZoneSummary struct {
	Type          string   `yaml:"type"`
	Width         int32    `yaml:"width"`
	Height        int32    `yaml:"height"`
	GridSize      float32  `yaml:"grid_size"`
	Start         [2]int32 `yaml:"start,flow"`
	EventPoints   []string `yaml:"event_points,omitempty"`
	Textures      int      `yaml:"textures"`
	Tiles         int      `yaml:"tiles"`
	Economy       string   `yaml:"economy,omitempty"`
	UnknownBlocks []int32  `yaml:"unknown_blocks,flow,omitempty"`
}

// SummarizeZone builds a ZoneSummary from a decoded zone.
func SummarizeZone(z *formats.Zone) *ZoneSummary {
	s := &ZoneSummary{
		Type:     z.Type.String(),
		Width:    z.Width,
		Height:   z.Height,
		GridSize: z.GridSize,
		Start:    [2]int32{z.StartX, z.StartY},
		Textures: len(z.Textures),
		Tiles:    len(z.Tiles),
	}
	for _, ep := range z.EventPoints {
		s.EventPoints = append(s.EventPoints, ep.Name)
	}
	if z.Economy != nil {
		s.Economy = z.Economy.Name
	}
	for _, b := range z.UnknownBlocks {
		s.UnknownBlocks = append(s.UnknownBlocks, int32(b.Type))
	}
	return s
}
