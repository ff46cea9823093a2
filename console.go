package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

type console struct {
	cmd *commandContext
}

var errArgumentNumber = errors.New("invalid number of arguments")
var errInvalidCommand = errors.New("invalid command")

var consoleCommands = map[string]func(cmd *commandContext, args []float64) ([][]float64, error){
	"point_size": func(cmd *commandContext, args []float64) ([][]float64, error) {
		switch len(args) {
		case 0:
		case 1:
			if err := cmd.SetPointSize(args[0]); err != nil {
				return nil, err
			}
		default:
			return nil, errArgumentNumber
		}
		return [][]float64{{cmd.RenderConfig().PointSize}}, nil
	},
	"hue_scale": func(cmd *commandContext, args []float64) ([][]float64, error) {
		switch len(args) {
		case 0:
		case 1:
			if err := cmd.SetHueScale(args[0]); err != nil {
				return nil, err
			}
		default:
			return nil, errArgumentNumber
		}
		return [][]float64{{cmd.RenderConfig().HueScale}}, nil
	},
	"color_by_altitude": func(cmd *commandContext, args []float64) ([][]float64, error) {
		switch len(args) {
		case 0:
		case 1:
			cmd.SetColorByAltitude(args[0] != 0)
		default:
			return nil, errArgumentNumber
		}
		if cmd.RenderConfig().ColorByAltitude {
			return [][]float64{{1}}, nil
		}
		return [][]float64{{0}}, nil
	},
	"z_range": func(cmd *commandContext, args []float64) ([][]float64, error) {
		switch len(args) {
		case 0:
		case 2:
			if err := cmd.SetZRange(args[0], args[1]); err != nil {
				return nil, err
			}
		default:
			return nil, errArgumentNumber
		}
		r := cmd.RenderConfig().AltitudeClamp
		return [][]float64{{r.Min, r.Max}}, nil
	},
	"metadata": func(cmd *commandContext, args []float64) ([][]float64, error) {
		if len(args) != 0 {
			return nil, errArgumentNumber
		}
		m, err := cmd.Metadata()
		if err != nil {
			return nil, err
		}
		res := [][]float64{{float64(m.PointCount)}}
		if b := m.BoundingBox; b != nil {
			res = append(res,
				[]float64{b.MinX, b.MinY, b.MinZ},
				[]float64{b.MaxX, b.MaxY, b.MaxZ},
			)
		}
		return res, nil
	},
}

func (c *console) Run(line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", nil
	}
	fn, ok := consoleCommands[args[0]]
	if !ok {
		return "", errInvalidCommand
	}
	var argsFloat []float64
	for i := 1; i < len(args); i++ {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return "", errors.Wrapf(err, "argument %d", i)
		}
		argsFloat = append(argsFloat, f)
	}
	res, err := fn(c.cmd, argsFloat)
	if err != nil {
		return "", err
	}
	var resStr []string
	for _, vv := range res {
		var resLine []string
		for _, v := range vv {
			resLine = append(resLine, strconv.FormatFloat(v, 'f', 3, 64))
		}
		resStr = append(resStr, strings.Join(resLine, " "))
	}
	return strings.Join(resStr, "\n"), nil
}
