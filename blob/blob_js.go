// Package blob bridges JavaScript Blob and File objects to Go byte slices.
package blob

import (
	"syscall/js"

	"github.com/pkg/errors"
)

type Blob js.Value

var (
	blobJS       = js.Global().Get("Blob")
	uint8ArrayJS = js.Global().Get("Uint8Array")
)

func New(b []byte, typ string) Blob {
	array := uint8ArrayJS.New(len(b))
	js.CopyBytesToJS(array, b)

	return Blob(blobJS.New([]interface{}{array}, map[string]interface{}{
		"type": typ,
	}))
}

// JS casts a Blob or File object passed from JavaScript.
func JS(j interface{}) (Blob, error) {
	jv, ok := j.(js.Value)
	if !ok {
		return Blob{}, errors.New("requires JavaScript object")
	}
	if !jv.InstanceOf(blobJS) {
		return Blob{}, errors.New("requires Blob object")
	}
	return Blob(jv), nil
}

func (blob Blob) JS() js.Value {
	return js.Value(blob)
}

// Name returns the file name. Plain Blobs have no name.
func (blob Blob) Name() (string, bool) {
	n := js.Value(blob).Get("name")
	if n.Type() != js.TypeString {
		return "", false
	}
	return n.String(), true
}

func (blob Blob) Size() int {
	return js.Value(blob).Get("size").Int()
}

// Bytes reads the whole content. It blocks until the browser resolves the
// arrayBuffer promise, so it must not be called from the event loop goroutine.
func (blob Blob) Bytes() ([]byte, error) {
	var b []byte
	chErr := make(chan error, 1)
	onLoad := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		array := uint8ArrayJS.New(args[0])
		b = make([]byte, array.Get("byteLength").Int())
		js.CopyBytesToGo(b, array)
		chErr <- nil
		return nil
	})
	defer onLoad.Release()
	onError := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		chErr <- errors.Errorf("failed to read blob: %s", args[0].Call("toString").String())
		return nil
	})
	defer onError.Release()

	js.Value(blob).Call("arrayBuffer").Call("then", onLoad, onError)
	if err := <-chErr; err != nil {
		return nil, err
	}
	return b, nil
}
