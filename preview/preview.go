// Package preview renders a top-down image of a decoded point cloud.
package preview

import (
	"image/color"
	"io"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/seqsense/pcdviewer/pcd"
)

var errNoPoints = errors.New("no points to plot")

// Options configures the image.
type Options struct {
	// Width of the image. The height follows the xy aspect ratio of the
	// bounding box.
	Width  vg.Length
	Radius vg.Length
	// Format is an image format name accepted by gonum plot, e.g. "png".
	Format string
}

func DefaultOptions() Options {
	return Options{
		Width:  6 * vg.Inch,
		Radius: vg.Points(1),
		Format: "png",
	}
}

// Plot builds an xy scatter of out colored with its color assignment.
// Vertices are drawn white when out has no colors.
func Plot(out *pcd.Output, opts Options) (*plot.Plot, error) {
	if out.Metadata.IsEmpty() {
		return nil, errNoPoints
	}
	xys := make(plotter.XYs, len(out.Vertices))
	for i, v := range out.Vertices {
		xys[i] = plotter.XY{X: v.X, Y: v.Y}
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, errors.Wrap(err, "creating scatter")
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		c := color.Color(color.White)
		if out.Colors != nil {
			c = toRGBA(out.Colors[i])
		}
		return draw.GlyphStyle{
			Color:  c,
			Radius: opts.Radius,
			Shape:  draw.CircleGlyph{},
		}
	}

	p := plot.New()
	p.Title.Text = out.Name
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.BackgroundColor = color.Black
	p.Add(s)
	return p, nil
}

// Render writes the image of out to w.
func Render(w io.Writer, out *pcd.Output, opts Options) error {
	p, err := Plot(out, opts)
	if err != nil {
		return err
	}
	height := opts.Width
	if size := out.Metadata.BoundingBox.Size(); size.X > 0 && size.Y > 0 {
		height = vg.Length(float64(opts.Width) * size.Y / size.X)
		if height > 4*opts.Width {
			height = 4 * opts.Width
		} else if height < opts.Width/4 {
			height = opts.Width / 4
		}
	}
	wt, err := p.WriterTo(opts.Width, height, opts.Format)
	if err != nil {
		return errors.Wrap(err, "creating canvas")
	}
	_, err = wt.WriteTo(w)
	return errors.Wrap(err, "writing image")
}

func toRGBA(c pcd.Color) color.RGBA {
	return color.RGBA{
		R: uint8(c.R*255 + 0.5),
		G: uint8(c.G*255 + 0.5),
		B: uint8(c.B*255 + 0.5),
		A: 0xFF,
	}
}
