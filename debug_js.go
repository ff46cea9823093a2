package main

import (
	webgl "github.com/seqsense/webgl-go"
	"go.uber.org/zap"
)

func showDebugInfo(gl *webgl.WebGL, logger *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug("failed to get GPU info", zap.Any("panic", r))
		}
	}()

	fields := []zap.Field{
		zap.Int("maxTextureSize", gl.GetParameter(gl.JS().Get("MAX_TEXTURE_SIZE").Int()).Int()),
	}
	if ri, ok := gl.GetExtension("WEBGL_debug_renderer_info"); ok {
		fields = append(fields,
			zap.String("vendor", gl.GetParameter(ri.Get("UNMASKED_VENDOR_WEBGL").Int()).String()),
			zap.String("renderer", gl.GetParameter(ri.Get("UNMASKED_RENDERER_WEBGL").Int()).String()),
		)
	}
	logger.Info("WebGL initialized", fields...)
}
