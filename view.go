package main

import (
	"math"

	"github.com/seqsense/pcgol/mat"

	"github.com/seqsense/pcdviewer/pcd"
)

const (
	defaultDistance = 100.0
	defaultPitch    = math.Pi / 4
	defaultFov      = math.Pi / 3
	minDistance     = 1.0
	maxDistance     = 10000.0
	yDeadband       = 20
)

type dragState struct {
	x, y   int
	button int
}

// view is an orbit camera around (-x, -y, -z).
type view struct {
	fov        float64
	x, y, z    float64
	yaw, pitch float64
	distance   float64
	panScale   float64

	x0, y0, yaw0, pitch0 float64
	drag0                *dragState
}

func newView() *view {
	return &view{
		fov:      defaultFov,
		distance: defaultDistance,
		pitch:    defaultPitch,
		panScale: 0.1,
	}
}

func (v *view) reset() {
	v.x, v.y, v.z = 0, 0, 0
	v.yaw = 0
	v.distance = defaultDistance
	v.pitch = defaultPitch
	v.panScale = 0.1
}

// fit moves the camera so that the whole bounding box is in sight.
// An empty cloud resets the camera.
func (v *view) fit(b *pcd.BoundingBox) {
	if b == nil {
		v.reset()
		return
	}
	c := b.Center()
	v.x, v.y, v.z = -c.X, -c.Y, -c.Z
	v.yaw = 0
	v.pitch = defaultPitch

	s := b.Size()
	r := math.Sqrt(s.X*s.X+s.Y*s.Y+s.Z*s.Z) / 2
	d := r / math.Tan(v.fov/2)
	if d < minDistance {
		d = minDistance
	} else if d > maxDistance {
		d = maxDistance
	}
	v.distance = d
	v.panScale = d / 1000
}

func (v *view) wheel(deltaY float64) {
	v.distance += deltaY * (v.distance*0.001 + 0.01)
	if v.distance < minDistance {
		v.distance = minDistance
	} else if v.distance > maxDistance {
		v.distance = maxDistance
	}
}

func (v *view) modelView() mat.Mat4 {
	return mat.Translate(0, 0, -float32(v.distance)).
		MulAffine(mat.Rotate(1, 0, 0, float32(v.pitch))).
		MulAffine(mat.Rotate(0, 0, 1, float32(v.yaw))).
		MulAffine(mat.Translate(float32(v.x), float32(v.y), float32(v.z)))
}

func (v *view) projection(width, height int) mat.Mat4 {
	far := float32(2 * maxDistance)
	return mat.Perspective(float32(v.fov), float32(width)/float32(height), 0.1, far)
}

func (v *view) mouseDragStart(x, y, button int) {
	v.drag0 = &dragState{x: x, y: y, button: button}
	v.yaw0 = v.yaw
	v.pitch0 = v.pitch
	v.x0 = v.x
	v.y0 = v.y
}

func (v *view) mouseDragEnd(x, y int) {
	if v.drag0 == nil {
		return
	}
	v.mouseDrag(x, y)
	v.drag0 = nil
}

func (v *view) mouseDrag(x, y int) {
	if v.drag0 == nil {
		return
	}
	xDiff := float64(x - v.drag0.x)
	yDiff := float64(y - v.drag0.y)
	switch v.drag0.button {
	case 0:
		v.yaw = v.yaw0 - 0.02*xDiff
		if yDiff < -yDeadband {
			yDiff += yDeadband
		} else if yDiff > yDeadband {
			yDiff -= yDeadband
		} else {
			yDiff = 0
		}
		v.pitch = v.pitch0 - 0.02*yDiff
		if v.pitch < 0 {
			v.pitch = 0
		} else if v.pitch > math.Pi {
			v.pitch = math.Pi
		}
	case 1, 2:
		s, c := math.Sincos(v.yaw)
		v.x = v.x0 + v.panScale*(xDiff*c+yDiff*s)
		v.y = v.y0 + v.panScale*(xDiff*s-yDiff*c)
	}
}
