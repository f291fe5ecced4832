// Package detector provides hand detection interfaces, landmark types and
// landmark normalization for sign classification.
package detector

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// FeatureLen is the length of a feature vector: two axes per landmark.
const FeatureLen = NumLandmarks * 2

var (
	// ErrNoSignal is returned when every landmark coincides with the wrist,
	// so the pose has no usable scale.
	ErrNoSignal = errors.New("no signal: landmarks have zero scale")

	// ErrLandmarkCount is returned when a landmark set is not a full hand.
	ErrLandmarkCount = errors.New("wrong landmark count")
)

// Point3D is a landmark as reported by the detector. Z is relative depth and
// is not used for classification.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Point2D is a landmark in normalized image coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Points2D drops the depth component of every landmark.
func (h *HandLandmarks) Points2D() []Point2D {
	pts := make([]Point2D, NumLandmarks)
	for i, p := range h.Points {
		pts[i] = Point2D{X: p.X, Y: p.Y}
	}
	return pts
}

// FeatureVector is a normalized, flattened landmark set: x0, y0, x1, y1, ...
// Every component lies in [-1, 1].
type FeatureVector []float32

// Features normalizes the hand into a feature vector. See Normalize.
func Features(h *HandLandmarks) (FeatureVector, error) {
	if h == nil {
		return nil, ErrNoSignal
	}
	return Normalize(h.Points2D())
}

// Normalize translates the landmarks so the wrist (index 0) is the origin and
// divides every coordinate by the largest absolute translated coordinate.
// The result does not depend on where the hand is in the frame or how large
// it appears. Returns ErrNoSignal if all points sit on the wrist.
func Normalize(points []Point2D) (FeatureVector, error) {
	if len(points) != NumLandmarks {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrLandmarkCount, len(points), NumLandmarks)
	}

	wrist := points[Wrist]
	out := make(FeatureVector, FeatureLen)

	var scale float32
	for i, p := range points {
		x := float32(p.X - wrist.X)
		y := float32(p.Y - wrist.Y)
		out[2*i] = x
		out[2*i+1] = y
		scale = math32.Max(scale, math32.Max(math32.Abs(x), math32.Abs(y)))
	}

	if scale == 0 {
		return nil, ErrNoSignal
	}

	for i := range out {
		out[i] /= scale
	}

	return out, nil
}
