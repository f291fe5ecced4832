package detector

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	hands  []HandLandmarks
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat, ts time.Time) ([]HandLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Calls returns how many times Detect has been invoked.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// LetterALandmarks returns a right hand signing ASL "A": a fist with the
// thumb resting upright against the side of the index finger.
func LetterALandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	// Thumb alongside the index knuckle, pointing up
	lm.Points[ThumbCMC] = Point3D{X: 0.56, Y: 0.76}
	lm.Points[ThumbMCP] = Point3D{X: 0.60, Y: 0.70}
	lm.Points[ThumbIP] = Point3D{X: 0.61, Y: 0.64}
	lm.Points[ThumbTip] = Point3D{X: 0.61, Y: 0.59}

	// Fingers curled into the palm
	lm.Points[IndexMCP] = Point3D{X: 0.56, Y: 0.66, Z: -0.02}
	lm.Points[IndexPIP] = Point3D{X: 0.56, Y: 0.60, Z: -0.05}
	lm.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.64, Z: -0.06}
	lm.Points[IndexTip] = Point3D{X: 0.55, Y: 0.68, Z: -0.04}

	lm.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.65, Z: -0.02}
	lm.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.59, Z: -0.05}
	lm.Points[MiddleDIP] = Point3D{X: 0.50, Y: 0.63, Z: -0.06}
	lm.Points[MiddleTip] = Point3D{X: 0.50, Y: 0.67, Z: -0.04}

	lm.Points[RingMCP] = Point3D{X: 0.46, Y: 0.66, Z: -0.02}
	lm.Points[RingPIP] = Point3D{X: 0.46, Y: 0.60, Z: -0.05}
	lm.Points[RingDIP] = Point3D{X: 0.46, Y: 0.64, Z: -0.06}
	lm.Points[RingTip] = Point3D{X: 0.46, Y: 0.68, Z: -0.04}

	lm.Points[PinkyMCP] = Point3D{X: 0.42, Y: 0.68, Z: -0.02}
	lm.Points[PinkyPIP] = Point3D{X: 0.42, Y: 0.63, Z: -0.05}
	lm.Points[PinkyDIP] = Point3D{X: 0.42, Y: 0.66, Z: -0.06}
	lm.Points[PinkyTip] = Point3D{X: 0.42, Y: 0.69, Z: -0.04}

	return lm
}

// LetterBLandmarks returns a right hand signing ASL "B": four fingers held
// straight up and together, thumb folded across the palm.
func LetterBLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: "Right",
		Score:      0.95,
	}

	lm.Points[Wrist] = Point3D{X: 0.5, Y: 0.8}

	// Thumb folded across the palm
	lm.Points[ThumbCMC] = Point3D{X: 0.55, Y: 0.76, Z: -0.01}
	lm.Points[ThumbMCP] = Point3D{X: 0.57, Y: 0.71, Z: -0.03}
	lm.Points[ThumbIP] = Point3D{X: 0.53, Y: 0.68, Z: -0.05}
	lm.Points[ThumbTip] = Point3D{X: 0.49, Y: 0.67, Z: -0.06}

	// Fingers extended upward
	lm.Points[IndexMCP] = Point3D{X: 0.55, Y: 0.66}
	lm.Points[IndexPIP] = Point3D{X: 0.55, Y: 0.54}
	lm.Points[IndexDIP] = Point3D{X: 0.55, Y: 0.46}
	lm.Points[IndexTip] = Point3D{X: 0.55, Y: 0.39}

	lm.Points[MiddleMCP] = Point3D{X: 0.51, Y: 0.65}
	lm.Points[MiddlePIP] = Point3D{X: 0.51, Y: 0.52}
	lm.Points[MiddleDIP] = Point3D{X: 0.51, Y: 0.43}
	lm.Points[MiddleTip] = Point3D{X: 0.51, Y: 0.36}

	lm.Points[RingMCP] = Point3D{X: 0.47, Y: 0.66}
	lm.Points[RingPIP] = Point3D{X: 0.47, Y: 0.54}
	lm.Points[RingDIP] = Point3D{X: 0.47, Y: 0.46}
	lm.Points[RingTip] = Point3D{X: 0.47, Y: 0.39}

	lm.Points[PinkyMCP] = Point3D{X: 0.43, Y: 0.68}
	lm.Points[PinkyPIP] = Point3D{X: 0.43, Y: 0.59}
	lm.Points[PinkyDIP] = Point3D{X: 0.43, Y: 0.52}
	lm.Points[PinkyTip] = Point3D{X: 0.43, Y: 0.47}

	return lm
}

// DegenerateLandmarks returns a hand whose every landmark sits on the wrist.
func DegenerateLandmarks() HandLandmarks {
	lm := HandLandmarks{Handedness: "Right", Score: 0.5}
	for i := range lm.Points {
		lm.Points[i] = Point3D{X: 0.4, Y: 0.6}
	}
	return lm
}
