package main

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/seqsense/pcdviewer/blob"
	"github.com/seqsense/pcdviewer/pcd"
)

type fileIOImpl struct{}

func (*fileIOImpl) readFile(b interface{}) (string, []byte, error) {
	bj, err := blob.JS(b)
	if err != nil {
		return "", nil, err
	}
	name, ok := bj.Name()
	if !ok {
		return "", nil, errors.New("requires File object with a name")
	}
	data, err := bj.Bytes()
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}

func (*fileIOImpl) exportPCD(vs pcd.Vertices) (interface{}, error) {
	var buf bytes.Buffer
	if err := pcd.WritePCD(&buf, vs); err != nil {
		return nil, err
	}
	return blob.New(buf.Bytes(), "application/x-pcd").JS(), nil
}
