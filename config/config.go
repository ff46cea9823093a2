// Package config loads viewer settings from YAML.
package config

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/seqsense/pcdviewer/pcd"
)

type Config struct {
	Decode Decode `yaml:"decode"`
	Render Render `yaml:"render"`
	Log    Log    `yaml:"log"`
}

type Decode struct {
	ChunkRecords   int `yaml:"chunk_records"`
	ChunkThreshold int `yaml:"chunk_threshold"`
	MinValidPoints int `yaml:"min_valid_points"`
}

type Render struct {
	PointSize       float64   `yaml:"point_size"`
	ColorByAltitude *bool     `yaml:"color_by_altitude"`
	HueScale        float64   `yaml:"hue_scale"`
	AltitudeClamp   pcd.Range `yaml:"altitude_clamp"`
}

type Log struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	d := pcd.DefaultOptions()
	colorByAltitude := d.Render.ColorByAltitude
	return &Config{
		Decode: Decode{
			ChunkRecords:   d.Decode.ChunkRecords,
			ChunkThreshold: d.Decode.ChunkThreshold,
			MinValidPoints: d.Decode.MinValidPoints,
		},
		Render: Render{
			PointSize:       d.Render.PointSize,
			ColorByAltitude: &colorByAltitude,
			HueScale:        d.Render.HueScale,
			AltitudeClamp:   d.Render.AltitudeClamp,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads YAML from r. Omitted keys keep their default values.
func Load(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Decode.ChunkRecords <= 0:
		return errors.Errorf("decode.chunk_records must be positive: %d", c.Decode.ChunkRecords)
	case c.Decode.ChunkThreshold < 0:
		return errors.Errorf("decode.chunk_threshold must not be negative: %d", c.Decode.ChunkThreshold)
	case c.Decode.MinValidPoints < 0:
		return errors.Errorf("decode.min_valid_points must not be negative: %d", c.Decode.MinValidPoints)
	case !(c.Render.PointSize > 0):
		return errors.Errorf("render.point_size must be positive: %v", c.Render.PointSize)
	case !(c.Render.HueScale > 0 && c.Render.HueScale <= 1):
		return errors.Errorf("render.hue_scale must be in (0, 1]: %v", c.Render.HueScale)
	case c.Render.AltitudeClamp.Min > c.Render.AltitudeClamp.Max:
		return errors.Errorf("render.altitude_clamp min %v exceeds max %v",
			c.Render.AltitudeClamp.Min, c.Render.AltitudeClamp.Max)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(err, "log.level")
	}
	return nil
}

// Options converts the configuration for pcd.Load.
func (c *Config) Options(logger *zap.Logger) pcd.Options {
	return pcd.Options{
		Decode: pcd.DecodeOptions{
			ChunkRecords:   c.Decode.ChunkRecords,
			ChunkThreshold: c.Decode.ChunkThreshold,
			MinValidPoints: c.Decode.MinValidPoints,
			Logger:         logger,
		},
		Render: pcd.RenderConfig{
			PointSize:       c.Render.PointSize,
			ColorByAltitude: c.Render.ColorByAltitude == nil || *c.Render.ColorByAltitude,
			HueScale:        c.Render.HueScale,
			AltitudeClamp:   c.Render.AltitudeClamp,
		},
	}
}

// NewLoggerConfig returns a console logger config without stacktraces.
func NewLoggerConfig(level zapcore.Level) zap.Config {
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}
}

// NewLogger builds a logger for a level name such as "debug" or "info".
func NewLogger(level string) (*zap.Logger, error) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log level")
	}
	return NewLoggerConfig(l).Build()
}
