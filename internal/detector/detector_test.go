package detector

import (
	"errors"
	"math/rand/v2"
	"os/exec"
	"slices"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func maxAbs(v FeatureVector) float32 {
	var m float32
	for _, x := range v {
		m = math32.Max(m, math32.Abs(x))
	}
	return m
}

func TestNormalize(t *testing.T) {
	t.Run("wrist is the origin", func(t *testing.T) {
		hand := LetterBLandmarks()

		v, err := Features(&hand)
		require.NoError(t, err)
		require.Len(t, v, FeatureLen)

		assert.Zero(t, v[0])
		assert.Zero(t, v[1])
	})

	t.Run("largest component is exactly one", func(t *testing.T) {
		for name, hand := range map[string]HandLandmarks{
			"A": LetterALandmarks(),
			"B": LetterBLandmarks(),
		} {
			v, err := Features(&hand)
			require.NoError(t, err, name)
			assert.Equal(t, float32(1), maxAbs(v), name)
		}
	})

	t.Run("single offset point", func(t *testing.T) {
		pts := make([]Point2D, NumLandmarks)
		pts[IndexTip] = Point2D{X: -0.25, Y: 0.1}

		v, err := Normalize(pts)
		require.NoError(t, err)

		assert.Equal(t, float32(-1), v[2*IndexTip])
		assert.InDelta(t, 0.4, v[2*IndexTip+1], 1e-6)
		assert.Equal(t, float32(1), maxAbs(v))
	})

	t.Run("random hands scale to one", func(t *testing.T) {
		rng := rand.New(rand.NewPCG(7, 42))
		for i := 0; i < 500; i++ {
			wrist := Point2D{X: rng.Float64()*4 - 2, Y: rng.Float64()*4 - 2}
			scale := 0.001 + rng.Float64()*50
			pts := make([]Point2D, NumLandmarks)
			for j := range pts {
				pts[j] = wrist
			}

			// Either a full hand or a single point off the wrist.
			off := 1 + rng.IntN(NumLandmarks-1)
			if i%2 == 0 {
				for j := 1; j < NumLandmarks; j++ {
					pts[j].X += scale * (rng.Float64()*2 - 1)
					pts[j].Y += scale * (rng.Float64()*2 - 1)
				}
			}
			pts[off].X += scale * (0.1 + rng.Float64())

			v, err := Normalize(pts)
			require.NoError(t, err, "hand %d", i)
			assert.InDelta(t, 1, maxAbs(v), 1e-5, "hand %d", i)
			assert.Zero(t, v[0], "hand %d", i)
			assert.Zero(t, v[1], "hand %d", i)
		}
	})

	t.Run("invariant to position and size", func(t *testing.T) {
		hand := LetterALandmarks()
		moved := hand
		for i := range moved.Points {
			moved.Points[i].X = moved.Points[i].X*0.5 + 0.1
			moved.Points[i].Y = moved.Points[i].Y*0.5 - 0.2
		}

		a, err := Features(&hand)
		require.NoError(t, err)
		b, err := Features(&moved)
		require.NoError(t, err)

		require.Len(t, b, len(a))
		for i := range a {
			assert.InDelta(t, a[i], b[i], 1e-5, "component %d", i)
		}
	})

	t.Run("flattened in landmark order", func(t *testing.T) {
		pts := make([]Point2D, NumLandmarks)
		pts[1] = Point2D{X: 0.5, Y: 0}
		pts[2] = Point2D{X: 0, Y: 0.5}

		v, err := Normalize(pts)
		require.NoError(t, err)

		assert.Equal(t, []float32{0, 0, 1, 0, 0, 1}, []float32(v[:6]))
	})

	t.Run("all points on the wrist is no signal", func(t *testing.T) {
		hand := DegenerateLandmarks()

		v, err := Features(&hand)
		assert.ErrorIs(t, err, ErrNoSignal)
		assert.Nil(t, v)
	})

	t.Run("nil hand is no signal", func(t *testing.T) {
		_, err := Features(nil)
		assert.ErrorIs(t, err, ErrNoSignal)
	})

	t.Run("partial hand is rejected", func(t *testing.T) {
		_, err := Normalize(make([]Point2D, 5))
		assert.ErrorIs(t, err, ErrLandmarkCount)
	})

	t.Run("depth is ignored", func(t *testing.T) {
		hand := LetterBLandmarks()
		deep := hand
		for i := range deep.Points {
			deep.Points[i].Z = 5
		}

		a, _ := Features(&hand)
		b, _ := Features(&deep)
		assert.Equal(t, a, b)
	})
}

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil, time.Now())

		require.NoError(t, err)
		assert.Nil(t, hands)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]HandLandmarks{LetterALandmarks()})

		hands, err := mock.Detect(nil, time.Now())

		require.NoError(t, err)
		assert.Len(t, hands, 1)
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()
		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil, time.Now())

		assert.Equal(t, expectedErr, err)
		assert.Nil(t, hands)
	})

	t.Run("Close marks closed", func(t *testing.T) {
		mock := NewMockDetector()
		require.NoError(t, mock.Close())
		assert.True(t, mock.Closed())
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestLetterFixtures(t *testing.T) {
	t.Run("A has curled fingers", func(t *testing.T) {
		lm := LetterALandmarks()
		for _, f := range [][2]int{{IndexPIP, IndexTip}, {MiddlePIP, MiddleTip}, {RingPIP, RingTip}, {PinkyPIP, PinkyTip}} {
			assert.Greater(t, lm.Points[f[1]].Y, lm.Points[f[0]].Y, "tip %d should sit below its PIP", f[1])
		}
	})

	t.Run("B has extended fingers", func(t *testing.T) {
		lm := LetterBLandmarks()
		for _, f := range [][2]int{{IndexMCP, IndexTip}, {MiddleMCP, MiddleTip}, {RingMCP, RingTip}, {PinkyMCP, PinkyTip}} {
			assert.Greater(t, lm.Points[f[0]].Y-lm.Points[f[1]].Y, 0.2, "finger ending at %d not extended", f[1])
		}
	})
}

func TestNewMediaPipeDetector_MissingScript(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ScriptPath = "/nonexistent/" + serviceScript

	_, err := NewMediaPipeDetector(cfg, nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestMediaPipeDetector_ServiceArgs(t *testing.T) {
	d := &MediaPipeDetector{config: DefaultConfig(), script: "/srv/" + serviceScript}

	args := d.serviceArgs()
	assert.Equal(t, "/srv/"+serviceScript, args[0])
	assert.NotContains(t, args, "--model")

	d.config.LandmarkerModel = "/models/hand_landmarker.task"
	args = d.serviceArgs()
	i := slices.Index(args, "--model")
	require.GreaterOrEqual(t, i, 0)
	assert.Equal(t, "/models/hand_landmarker.task", args[i+1])
}

func TestMediaPipeDetector_StaleIdleTimer(t *testing.T) {
	path, err := exec.LookPath("cat")
	if err != nil {
		t.Skip("cat not available")
	}

	d := &MediaPipeDetector{
		config: Config{IdleTimeout: time.Hour},
		log:    zap.NewNop().Sugar(),
	}
	d.cmd = exec.Command(path)
	d.stdin, err = d.cmd.StdinPipe()
	require.NoError(t, err)
	require.NoError(t, d.cmd.Start())
	d.started = true
	t.Cleanup(func() { d.Close() })

	d.mu.Lock()
	d.resetIdleTimer()
	stale := d.idleGen
	// A frame arrives and rearms the timer after the first one fired.
	d.resetIdleTimer()
	d.mu.Unlock()

	d.idleExpired(stale)
	assert.True(t, d.started, "stale timer stopped a service in use")

	d.idleExpired(d.idleGen)
	assert.False(t, d.started)
}

func TestDrawHand(t *testing.T) {
	img := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer img.Close()

	hand := LetterBLandmarks()
	DrawHand(&img, &hand)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	assert.Greater(t, gocv.CountNonZero(gray), 0)
}
