package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/rose-io/pkg/formats"
)

var spewConfig = func() *spew.ConfigState {
	c := spew.NewDefaultConfig()
	c.DisableCapacities = true
	c.DisablePointerAddresses = true
	c.SortKeys = true
	return c
}()

// Dump writes v in go-spew's Go-syntax dump format.
func Dump(w io.Writer, v any) error {
	_, err := io.WriteString(w, spewConfig.Sdump(v))
	return err
}

// WriteYAML writes v as a YAML document.
func WriteYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Truncate returns a shallow copy of doc holding at most limit vertices and
// triangles. A limit of 0 keeps everything.
func Truncate(doc *formats.MeshDocument, limit int) *formats.MeshDocument {
	if limit <= 0 {
		return doc
	}
	out := *doc
	if len(out.Vertices) > limit {
		out.Vertices = out.Vertices[:limit]
	}
	if len(out.Triangles) > limit {
		out.Triangles = out.Triangles[:limit]
	}
	return &out
}

// WriteText writes a human-readable summary of each report.
func WriteText(w io.Writer, reports []*Report) error {
	var b strings.Builder
	for i, r := range reports {
		if r == nil {
			continue
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "File:      %s\n", r.Path)
		fmt.Fprintf(&b, "Format:    %s (%d bytes)\n", r.Format, r.Size)
		if !r.OK() {
			fmt.Fprintf(&b, "Error:     %s\n", r.Error)
			continue
		}
		switch {
		case r.Mesh != nil:
			writeMeshText(&b, r.Mesh)
		case r.Zone != nil:
			writeZoneText(&b, r.Zone)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeMeshText(b *strings.Builder, m *MeshSummary) {
	fmt.Fprintf(b, "Version:   %d\n", m.Version)
	fmt.Fprintf(b, "Flags:     %s\n", m.Flags)
	fmt.Fprintf(b, "Streams:   %s\n", strings.Join(m.Streams, ", "))
	fmt.Fprintf(b, "Vertices:  %d\n", m.Vertices)
	fmt.Fprintf(b, "Triangles: %d", m.Triangles)
	if m.Degenerate > 0 {
		fmt.Fprintf(b, " (%d degenerate)", m.Degenerate)
	}
	b.WriteByte('\n')
	fmt.Fprintf(b, "Bones:     %d\n", m.Bones)
	fmt.Fprintf(b, "Materials: %d\n", m.Materials)
	fmt.Fprintf(b, "Bounds:    %v .. %v\n", m.BoundsMin, m.BoundsMax)
	fmt.Fprintf(b, "Extent:    %g x %g x %g around %v\n", m.Extent[0], m.Extent[1], m.Extent[2], m.Center)
}

func writeZoneText(b *strings.Builder, z *ZoneSummary) {
	fmt.Fprintf(b, "Type:      %s\n", z.Type)
	fmt.Fprintf(b, "Grid:      %dx%d (cell %.0f)\n", z.Width, z.Height, z.GridSize)
	fmt.Fprintf(b, "Start:     %d,%d\n", z.Start[0], z.Start[1])
	fmt.Fprintf(b, "Events:    %d\n", len(z.EventPoints))
	fmt.Fprintf(b, "Textures:  %d\n", z.Textures)
	fmt.Fprintf(b, "Tiles:     %d\n", z.Tiles)
	if z.Economy != "" {
		fmt.Fprintf(b, "Economy:   %s\n", z.Economy)
	}
	if len(z.UnknownBlocks) > 0 {
		fmt.Fprintf(b, "Skipped:   blocks %v\n", z.UnknownBlocks)
	}
}
