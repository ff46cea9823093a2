// Command pcdinfo inspects and converts point cloud and vector geometry files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"

	"github.com/seqsense/pcdviewer/config"
	"github.com/seqsense/pcdviewer/pcd"
	"github.com/seqsense/pcdviewer/preview"
)

type env struct {
	logger *zap.Logger
	opts   pcd.Options
}

func (e *env) load(ctx context.Context, path string) (*pcd.Output, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return pcd.Load(ctx, filepath.Base(path), data, e.opts)
}

func newApp() *cli.App {
	e := &env{}
	return &cli.App{
		Name:  "pcdinfo",
		Usage: "inspect, convert and preview point cloud files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "overrides log.level of the config",
			},
		},
		Before: func(c *cli.Context) error {
			cfg := config.Default()
			if path := c.String("config"); path != "" {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				cfg, err = config.Load(f)
				if err := multierr.Append(err, f.Close()); err != nil {
					return err
				}
			}
			if l := c.String("log-level"); l != "" {
				cfg.Log.Level = l
			}
			logger, err := config.NewLogger(cfg.Log.Level)
			if err != nil {
				return err
			}
			e.logger = logger
			e.opts = cfg.Options(logger)
			return nil
		},
		After: func(c *cli.Context) error {
			if e.logger != nil {
				// Sync fails on a terminal stderr.
				_ = e.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "info",
				Usage:     "print metadata of files",
				ArgsUsage: "FILE...",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return errors.New("no input file")
					}
					return info(c.Context, c.App.Writer, e, c.Args().Slice())
				},
			},
			{
				Name:      "convert",
				Usage:     "write the decoded points as a binary PCD file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Usage:    "path to the output PCD file",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "voxel",
						Usage: "downsample with a voxel grid of this edge length",
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("exactly one input file is required")
					}
					out, err := e.load(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					if out.Vector != nil {
						return errors.Errorf("%s is not a point cloud", out.Name)
					}
					vs := out.Vertices
					if leaf := c.Float64("voxel"); leaf > 0 {
						if vs, err = pcd.Downsample(vs, leaf); err != nil {
							return err
						}
						e.logger.Info("downsampled",
							zap.Int("before", len(out.Vertices)),
							zap.Int("after", len(vs)),
						)
					}
					return writeFile(c.String("out"), func(w io.Writer) error {
						return pcd.WritePCD(w, vs)
					})
				},
			},
			{
				Name:      "preview",
				Usage:     "write a top-down image colored by altitude",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "out",
						Usage:    "path to the output PNG file",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "width",
						Usage: "image width in inches",
						Value: 6,
					},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return errors.New("exactly one input file is required")
					}
					out, err := e.load(c.Context, c.Args().First())
					if err != nil {
						return err
					}
					opts := preview.DefaultOptions()
					opts.Width = vg.Length(c.Float64("width")) * vg.Inch
					return writeFile(c.String("out"), func(w io.Writer) error {
						return preview.Render(w, out, opts)
					})
				},
			},
		},
	}
}

func writeFile(path string, fn func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	return fn(f)
}

func info(ctx context.Context, w io.Writer, e *env, paths []string) error {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Name", "Size", "Kind", "Points", "Skipped", "Dropped", "Bounding box"})
	var vectors []*pcd.Output
	var errs error
	for _, path := range paths {
		out, err := e.load(ctx, path)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrap(err, path))
			continue
		}
		if out.Vector != nil {
			vectors = append(vectors, out)
			continue
		}
		bbox := "empty"
		if b := out.Metadata.BoundingBox; b != nil {
			bbox = fmt.Sprintf("X:[%g, %g] Y:[%g, %g] Z:[%g, %g]",
				b.MinX, b.MaxX, b.MinY, b.MaxY, b.MinZ, b.MaxZ)
		}
		t.AppendRow(table.Row{
			out.Name,
			humanize.Bytes(uint64(out.Size)),
			out.Kind,
			out.Metadata.PointCount,
			out.Skipped,
			out.Dropped,
			bbox,
		})
	}
	if t.Length() > 0 {
		fmt.Fprintln(w, t.Render())
	}

	for _, out := range vectors {
		v := out.Vector
		vt := table.NewWriter()
		vt.SetTitle("%s (%s, %d features)", out.Name, humanize.Bytes(uint64(out.Size)), v.Len())
		vt.AppendHeader(table.Row{"Feature", "Geometry", "Anchor"})
		for _, a := range v.Anchors {
			vt.AppendRow(table.Row{a.Feature, a.GeometryType, fmt.Sprintf("%.6f, %.6f", a.Point[0], a.Point[1])})
		}
		c := v.Center()
		vt.AppendFooter(table.Row{"", "center", fmt.Sprintf("%.6f, %.6f", c[0], c[1])})
		fmt.Fprintln(w, vt.Render())
	}
	return errs
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
