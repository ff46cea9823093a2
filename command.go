package main

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/seqsense/pcdviewer/pcd"
)

var (
	errSuperseded      = errors.New("load superseded by a newer file")
	errNotLoaded       = errors.New("no point cloud loaded")
	errInvalidArgument = errors.New("invalid argument")
)

type fileIO interface {
	readFile(blob interface{}) (name string, data []byte, err error)
	exportPCD(vs pcd.Vertices) (interface{}, error)
}

type commandContext struct {
	fileIO fileIO
	loader *pcd.Loader
	logger *zap.Logger

	render pcd.RenderConfig
	out    *pcd.Output

	pointCloudUpdated bool
	fitRequested      bool
}

func newCommandContext(fileio fileIO, opts pcd.Options) *commandContext {
	return &commandContext{
		fileIO: fileio,
		loader: pcd.NewLoader(opts),
		logger: opts.Decode.Logger,
		render: opts.Render,
	}
}

func (c *commandContext) log() *zap.Logger {
	if c.logger == nil {
		return zap.NewNop()
	}
	return c.logger
}

// PointCloud returns the committed point cloud output.
// updated is true once after each change of the output.
func (c *commandContext) PointCloud() (*pcd.Output, bool, bool) {
	if !c.hasPointCloud() {
		return nil, false, false
	}
	updated := c.pointCloudUpdated
	c.pointCloudUpdated = false
	return c.out, updated, true
}

func (c *commandContext) hasPointCloud() bool {
	return c.out != nil && c.out.Vector == nil
}

// FitRequested reports once whether the camera should be fit to a new dataset.
func (c *commandContext) FitRequested() bool {
	fit := c.fitRequested
	c.fitRequested = false
	return fit
}

// Output returns the last committed output of any kind.
func (c *commandContext) Output() (*pcd.Output, bool) {
	return c.out, c.out != nil
}

// Load starts decoding data. Any load in flight is canceled.
func (c *commandContext) Load(ctx context.Context, name string, data []byte) *pcd.Task {
	return c.loader.Load(ctx, name, data)
}

// Commit applies the result of a finished task if it is the latest one.
// A failed load clears the previous output.
func (c *commandContext) Commit(ctx context.Context, t *pcd.Task) (*pcd.Output, error) {
	out, err := t.Wait(ctx)
	if !c.loader.IsCurrent(t) {
		c.log().Debug("discarded superseded result", zap.Uint64("generation", t.Generation()))
		return nil, errSuperseded
	}
	if err != nil {
		c.out = nil
		c.pointCloudUpdated = true
		c.fitRequested = true
		return nil, err
	}
	if out.Vector == nil && out.Render != c.render {
		out = out.WithRender(c.render)
	}
	c.out = out
	c.pointCloudUpdated = true
	c.fitRequested = true
	return out, nil
}

// ExportPCD encodes the committed vertices as a binary PCD.
func (c *commandContext) ExportPCD() (interface{}, error) {
	if !c.hasPointCloud() {
		return nil, errNotLoaded
	}
	return c.fileIO.exportPCD(c.out.Vertices)
}

func (c *commandContext) RenderConfig() pcd.RenderConfig {
	return c.render
}

func (c *commandContext) setRender(cfg pcd.RenderConfig) {
	c.render = cfg
	opts := c.loader.Options()
	opts.Render = cfg
	c.loader.SetOptions(opts)
	if c.hasPointCloud() {
		c.out = c.out.WithRender(cfg)
		c.pointCloudUpdated = true
	}
}

func (c *commandContext) SetPointSize(s float64) error {
	if !(s > 0) || math.IsInf(s, 0) {
		return errInvalidArgument
	}
	cfg := c.render
	cfg.PointSize = s
	c.setRender(cfg)
	return nil
}

func (c *commandContext) SetHueScale(s float64) error {
	if !(s > 0 && s <= 1) {
		return errInvalidArgument
	}
	cfg := c.render
	cfg.HueScale = s
	c.setRender(cfg)
	return nil
}

func (c *commandContext) SetColorByAltitude(b bool) {
	cfg := c.render
	cfg.ColorByAltitude = b
	c.setRender(cfg)
}

// SetZRange stores the altitude clamp. It is handed to the renderer as is.
func (c *commandContext) SetZRange(min, max float64) error {
	if !(min <= max) {
		return errInvalidArgument
	}
	cfg := c.render
	cfg.AltitudeClamp = pcd.Range{Min: min, Max: max}
	c.setRender(cfg)
	return nil
}

func (c *commandContext) Metadata() (pcd.Metadata, error) {
	if !c.hasPointCloud() {
		return pcd.Metadata{}, errNotLoaded
	}
	return c.out.Metadata, nil
}

// describe converts out into values accepted by js.ValueOf.
func describe(out *pcd.Output) map[string]interface{} {
	ret := map[string]interface{}{
		"name": out.Name,
		"size": float64(out.Size),
		"kind": out.Kind.String(),
	}
	if v := out.Vector; v != nil {
		c := v.Center()
		anchors := make([]interface{}, 0, len(v.Anchors))
		for _, a := range v.Anchors {
			anchors = append(anchors, map[string]interface{}{
				"feature": a.Feature,
				"lng":     a.Point[0],
				"lat":     a.Point[1],
			})
		}
		ret["geojson"] = string(v.Raw)
		ret["center"] = []interface{}{c[0], c[1]}
		ret["anchors"] = anchors
		return ret
	}
	ret["points"] = out.Metadata.PointCount
	ret["skipped"] = out.Skipped
	ret["dropped"] = out.Dropped
	if b := out.Metadata.BoundingBox; b != nil {
		ret["boundingBox"] = map[string]interface{}{
			"minX": b.MinX, "maxX": b.MaxX,
			"minY": b.MinY, "maxY": b.MaxY,
			"minZ": b.MinZ, "maxZ": b.MaxZ,
		}
	}
	return ret
}
