package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zaptest"

	"github.com/seqsense/pcdviewer/pcd"
)

type dummyFileIO struct {
	exported pcd.Vertices
}

func (*dummyFileIO) readFile(blob interface{}) (string, []byte, error) {
	return "", nil, errors.New("not implemented")
}

func (d *dummyFileIO) exportPCD(vs pcd.Vertices) (interface{}, error) {
	d.exported = vs
	return len(vs), nil
}

func newTestCommandContext(t *testing.T) (*commandContext, *dummyFileIO) {
	t.Helper()
	opts := pcd.DefaultOptions()
	opts.Decode.Logger = zaptest.NewLogger(t)
	fio := &dummyFileIO{}
	return newCommandContext(fio, opts), fio
}

func load(t *testing.T, c *commandContext, name, data string) (*pcd.Output, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.Commit(ctx, c.Load(ctx, name, []byte(data)))
}

func TestCommandContext_Load(t *testing.T) {
	c, fio := newTestCommandContext(t)

	if _, _, ok := c.PointCloud(); ok {
		t.Fatal("PointCloud must not be available before load")
	}
	if _, err := c.ExportPCD(); err != errNotLoaded {
		t.Errorf("Expected %v, got: %v", errNotLoaded, err)
	}

	out, err := load(t, c, "a.xyz", "0 0 0\n1 2 3\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.Metadata.PointCount != 2 {
		t.Errorf("Expected 2 points, got: %d", out.Metadata.PointCount)
	}
	if !c.FitRequested() {
		t.Error("Camera fit must be requested after load")
	}
	if c.FitRequested() {
		t.Error("Camera fit must be requested only once")
	}
	if _, updated, ok := c.PointCloud(); !ok || !updated {
		t.Error("PointCloud must be updated after load")
	}
	if _, updated, _ := c.PointCloud(); updated {
		t.Error("Updated flag must be cleared")
	}

	if n, err := c.ExportPCD(); err != nil || n.(int) != 2 {
		t.Errorf("Unexpected export result: %v, %v", n, err)
	}
	if diff := cmp.Diff(out.Vertices, fio.exported); diff != "" {
		t.Errorf("Exported vertices differ (-want +got):\n%s", diff)
	}

}

func TestCommandContext_LoadFailure(t *testing.T) {
	testCases := map[string]struct {
		name string
		data string
		kind pcd.ErrorKind
	}{
		"Unsupported": {
			name: "b.txt",
			data: "1 2 3\n",
			kind: pcd.UnsupportedFileType,
		},
		"CorruptHeader": {
			name: "b.pcd",
			data: "garbage without header",
			kind: pcd.CorruptHeader,
		},
	}
	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			c, _ := newTestCommandContext(t)
			if _, err := load(t, c, "a.xyz", "0 0 0\n1 2 3\n"); err != nil {
				t.Fatal(err)
			}
			c.PointCloud()
			c.FitRequested()

			if _, err := load(t, c, tt.name, tt.data); pcd.KindOf(err) != tt.kind {
				t.Errorf("Expected %s, got: %v", tt.kind, err)
			}
			if _, err := c.Metadata(); err != errNotLoaded {
				t.Errorf("Expected %v, got: %v", errNotLoaded, err)
			}
			if _, err := c.ExportPCD(); err != errNotLoaded {
				t.Errorf("Expected %v, got: %v", errNotLoaded, err)
			}
			if _, _, ok := c.PointCloud(); ok {
				t.Error("PointCloud must be cleared by a failed load")
			}
			if _, ok := c.Output(); ok {
				t.Error("Output must be cleared by a failed load")
			}
			if !c.FitRequested() {
				t.Error("Camera must be reset after a failed load")
			}
		})
	}
}

func TestCommandContext_Superseded(t *testing.T) {
	c, _ := newTestCommandContext(t)
	ctx := context.Background()

	t1 := c.Load(ctx, "a.xyz", []byte("0 0 0\n"))
	t2 := c.Load(ctx, "b.xyz", []byte("1 1 1\n2 2 2\n"))

	if _, err := c.Commit(ctx, t1); err != errSuperseded {
		t.Errorf("Expected %v, got: %v", errSuperseded, err)
	}
	out, err := c.Commit(ctx, t2)
	if err != nil {
		t.Fatal(err)
	}
	if out.Name != "b.xyz" {
		t.Errorf("Expected b.xyz to be committed, got: %s", out.Name)
	}
}

func TestCommandContext_Render(t *testing.T) {
	c, _ := newTestCommandContext(t)
	if _, err := load(t, c, "a.xyz", "0 0 0\n0 0 1\n"); err != nil {
		t.Fatal(err)
	}
	c.PointCloud()

	c.SetColorByAltitude(false)
	out, updated, _ := c.PointCloud()
	if !updated {
		t.Error("PointCloud must be updated by render config change")
	}
	if out.Colors != nil {
		t.Error("Colors must be nil if color by altitude is off")
	}

	c.SetColorByAltitude(true)
	if err := c.SetHueScale(1); err != nil {
		t.Fatal(err)
	}
	out, _, _ = c.PointCloud()
	if len(out.Colors) != 2 {
		t.Fatalf("Expected 2 colors, got: %d", len(out.Colors))
	}
	// t=1 at the top with hue scale 1 wraps to red.
	if diff := cmp.Diff(pcd.Color{R: 1}, out.Colors[1], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("Color differs (-want +got):\n%s", diff)
	}

	// Loads started after the change use the new config.
	out, err := load(t, c, "b.xyz", "0 0 0\n")
	if err != nil {
		t.Fatal(err)
	}
	if out.Render.HueScale != 1 {
		t.Errorf("Expected hue scale 1, got: %f", out.Render.HueScale)
	}

	for name, fn := range map[string]func() error{
		"NegativePointSize": func() error { return c.SetPointSize(-1) },
		"ZeroHueScale":      func() error { return c.SetHueScale(0) },
		"LargeHueScale":     func() error { return c.SetHueScale(1.5) },
		"InvertedZRange":    func() error { return c.SetZRange(1, 0) },
	} {
		if err := fn(); err != errInvalidArgument {
			t.Errorf("%s: expected %v, got: %v", name, errInvalidArgument, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	ctx := context.Background()
	out, err := pcd.Load(ctx, "a.xyz", []byte("0 0 0\n1 2 3\n"), pcd.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	d := describe(out)
	expected := map[string]interface{}{
		"name":    "a.xyz",
		"size":    float64(12),
		"kind":    "ascii-point-text",
		"points":  2,
		"skipped": 0,
		"dropped": 0,
		"boundingBox": map[string]interface{}{
			"minX": 0.0, "maxX": 1.0,
			"minY": 0.0, "maxY": 2.0,
			"minZ": 0.0, "maxZ": 3.0,
		},
	}
	if diff := cmp.Diff(expected, d); diff != "" {
		t.Errorf("Description differs (-want +got):\n%s", diff)
	}

	vec, err := pcd.Load(ctx, "a.geojson", []byte(`{"type": "Point", "coordinates": [1, 2]}`), pcd.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	d = describe(vec)
	if !strings.Contains(d["geojson"].(string), "Point") {
		t.Errorf("Raw geojson must be passed through, got: %v", d["geojson"])
	}
	if diff := cmp.Diff([]interface{}{1.0, 2.0}, d["center"]); diff != "" {
		t.Errorf("Center differs (-want +got):\n%s", diff)
	}
	if _, ok := d["points"]; ok {
		t.Error("Vector description must not have points")
	}
}
