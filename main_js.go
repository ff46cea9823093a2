package main

import (
	"context"
	"syscall/js"
	"time"

	webgl "github.com/seqsense/webgl-go"
	"go.uber.org/zap"

	"github.com/seqsense/pcdviewer/config"
	"github.com/seqsense/pcdviewer/pcd"
)

type loadRequest struct {
	name    string
	data    []byte
	chReply chan promiseResult
}

type loadDone struct {
	task    *pcd.Task
	chReply chan promiseResult
}

type commandRequest struct {
	fn      func() (interface{}, error)
	chReply chan promiseResult
}

type promiseResult struct {
	value interface{}
	err   error
}

func main() {
	cfg := config.Default()
	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		println(err.Error())
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	opts := cfg.Options(logger)
	opts.Decode.Yielder = pcd.YieldFunc(yieldToEventLoop)

	doc := js.Global().Get("document")
	canvas := doc.Call("getElementById", "mapCanvas")
	gl, err := webgl.New(canvas)
	if err != nil {
		logger.Error("failed to initialize WebGL", zap.Error(err))
		return
	}
	showDebugInfo(gl, logger)

	vs, err := initVertexShader(gl, vsSource)
	if err != nil {
		logger.Error("failed to compile shader", zap.Error(err))
		return
	}
	fs, err := initFragmentShader(gl, fsSource)
	if err != nil {
		logger.Error("failed to compile shader", zap.Error(err))
		return
	}
	program, err := linkShaders(gl, vs, fs)
	if err != nil {
		logger.Error("failed to link shaders", zap.Error(err))
		return
	}

	uProjectionMatrix := gl.GetUniformLocation(program, "uProjectionMatrix")
	uModelViewMatrix := gl.GetUniformLocation(program, "uModelViewMatrix")
	uPointSizeBase := gl.GetUniformLocation(program, "uPointSizeBase")
	aVertexPosition := 0
	aVertexColor := 1

	gl.UseProgram(program)
	gl.EnableVertexAttribArray(aVertexPosition)
	gl.EnableVertexAttribArray(aVertexColor)

	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	gl.ClearDepth(1.0)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)

	posBuf := gl.CreateBuffer()
	colBuf := gl.CreateBuffer()

	cmd := newCommandContext(&fileIOImpl{}, opts)
	cs := &console{cmd: cmd}
	vi := newView()

	chLoad := make(chan loadRequest)
	chLoadDone := make(chan loadDone)
	chCommand := make(chan commandRequest)

	call := func(fn func() (interface{}, error)) js.Value {
		return newPromise(func() (interface{}, error) {
			req := commandRequest{fn: fn, chReply: make(chan promiseResult, 1)}
			chCommand <- req
			res := <-req.chReply
			return res.value, res.err
		})
	}
	js.Global().Set("pcdviewer", js.ValueOf(map[string]interface{}{
		"load": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			return newPromise(func() (interface{}, error) {
				if len(args) != 1 {
					return nil, errArgumentNumber
				}
				name, data, err := cmd.fileIO.readFile(args[0])
				if err != nil {
					return nil, err
				}
				req := loadRequest{name: name, data: data, chReply: make(chan promiseResult, 1)}
				chLoad <- req
				res := <-req.chReply
				return res.value, res.err
			})
		}),
		"command": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			if len(args) != 1 {
				return newPromise(func() (interface{}, error) {
					return nil, errArgumentNumber
				})
			}
			line := args[0].String()
			return call(func() (interface{}, error) {
				return cs.Run(line)
			})
		}),
		"savePCD": js.FuncOf(func(this js.Value, args []js.Value) interface{} {
			return call(cmd.ExportPCD)
		}),
	}))

	chWheel := make(chan webgl.WheelEvent)
	gl.Canvas.OnWheel(func(e webgl.WheelEvent) {
		e.PreventDefault()
		e.StopPropagation()
		chWheel <- e
	})
	chMouseDown := make(chan webgl.MouseEvent)
	gl.Canvas.OnMouseDown(func(e webgl.MouseEvent) {
		e.PreventDefault()
		e.StopPropagation()
		chMouseDown <- e
	})
	chMouseMove := make(chan webgl.MouseEvent)
	gl.Canvas.OnMouseMove(func(e webgl.MouseEvent) {
		e.PreventDefault()
		e.StopPropagation()
		chMouseMove <- e
	})
	chMouseUp := make(chan webgl.MouseEvent)
	gl.Canvas.OnMouseUp(func(e webgl.MouseEvent) {
		e.PreventDefault()
		e.StopPropagation()
		chMouseUp <- e
	})
	gl.Canvas.OnContextMenu(func(e webgl.MouseEvent) {
		e.PreventDefault()
		e.StopPropagation()
	})

	ctx := context.Background()
	tick := time.NewTicker(time.Second / 30)
	defer tick.Stop()

	var width, height int
	var nPoints int
	for {
		select {
		case req := <-chLoad:
			t := cmd.Load(ctx, req.name, req.data)
			go func() {
				<-t.Done()
				chLoadDone <- loadDone{task: t, chReply: req.chReply}
			}()
		case d := <-chLoadDone:
			out, err := cmd.Commit(ctx, d.task)
			if err != nil {
				logger.Warn("load failed", zap.Error(err))
				d.chReply <- promiseResult{err: err}
				continue
			}
			d.chReply <- promiseResult{value: describe(out)}
		case req := <-chCommand:
			v, err := req.fn()
			req.chReply <- promiseResult{value: v, err: err}
		case e := <-chWheel:
			vi.wheel(e.DeltaY)
		case e := <-chMouseDown:
			vi.mouseDragStart(e.OffsetX, e.OffsetY, int(e.Button))
		case e := <-chMouseMove:
			vi.mouseDrag(e.OffsetX, e.OffsetY)
		case e := <-chMouseUp:
			vi.mouseDragEnd(e.OffsetX, e.OffsetY)
		case <-tick.C:
		}

		if gl.IsContextLost() {
			continue
		}

		if out, updated, ok := cmd.PointCloud(); ok && updated {
			b := newRenderBuffers(out)
			nPoints = b.n
			if nPoints > 0 {
				gl.BindBuffer(gl.ARRAY_BUFFER, posBuf)
				gl.BufferData(gl.ARRAY_BUFFER, webgl.Float32ArrayBuffer(b.positions), gl.STATIC_DRAW)
				gl.BindBuffer(gl.ARRAY_BUFFER, colBuf)
				gl.BufferData(gl.ARRAY_BUFFER, webgl.Float32ArrayBuffer(b.colors), gl.STATIC_DRAW)
			}
		} else if !ok {
			nPoints = 0
		}
		if cmd.FitRequested() {
			var bbox *pcd.BoundingBox
			if out, ok := cmd.Output(); ok {
				bbox = out.Metadata.BoundingBox
			}
			vi.fit(bbox)
		}

		newWidth := gl.Canvas.ClientWidth()
		newHeight := gl.Canvas.ClientHeight()
		if newWidth != width || newHeight != height {
			width, height = newWidth, newHeight
			gl.Canvas.SetWidth(width)
			gl.Canvas.SetHeight(height)
			gl.Viewport(0, 0, width, height)
		}
		if width == 0 || height == 0 {
			continue
		}

		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
		if nPoints > 0 {
			gl.UseProgram(program)
			gl.UniformMatrix4fv(uProjectionMatrix, false, vi.projection(width, height))
			gl.UniformMatrix4fv(uModelViewMatrix, false, vi.modelView())
			gl.Uniform1f(uPointSizeBase, pointSizeBase(cmd.RenderConfig().PointSize, vi.fov, height))

			gl.BindBuffer(gl.ARRAY_BUFFER, posBuf)
			gl.VertexAttribPointer(aVertexPosition, 3, gl.FLOAT, false, 0, 0)
			gl.BindBuffer(gl.ARRAY_BUFFER, colBuf)
			gl.VertexAttribPointer(aVertexColor, 3, gl.FLOAT, false, 0, 0)
			gl.DrawArrays(gl.POINTS, 0, nPoints)
		}
	}
}

// yieldToEventLoop suspends the decoder until the browser has run its pending
// tasks.
func yieldToEventLoop(ctx context.Context) error {
	ch := make(chan struct{})
	var fn js.Func
	fn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		fn.Release()
		close(ch)
		return nil
	})
	js.Global().Call("setTimeout", fn, 0)
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func newPromise(fn func() (interface{}, error)) js.Value {
	var handler js.Func
	handler = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		handler.Release()
		resolve, reject := args[0], args[1]
		go func() {
			v, err := fn()
			if err != nil {
				reject.Invoke(errorToJS(err))
				return
			}
			resolve.Invoke(js.ValueOf(v))
		}()
		return nil
	})
	return js.Global().Get("Promise").New(handler)
}
