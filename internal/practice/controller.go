package practice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/signtutor/internal/capture"
	"github.com/ayusman/signtutor/internal/classifier"
	"github.com/ayusman/signtutor/internal/detector"
)

// NoPrediction is the label shown when there is nothing to classify.
const NoPrediction = "None"

// SetupError is a failure to bring up a session component. It is terminal
// for the session.
type SetupError struct {
	Component string
	Err       error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s setup failed: %v", e.Component, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// Snapshot is the externally visible state of a practice session.
type Snapshot struct {
	SessionID     string           `json:"session_id"`
	Running       bool             `json:"running"`
	Paused        bool             `json:"paused"`
	Prediction    string           `json:"prediction"`
	Confidence    float32          `json:"confidence"`
	Correct       bool             `json:"correct"`
	State         State            `json:"state"`
	HoldProgress  float64          `json:"hold_progress"`
	LatencyMs     float64          `json:"latency_ms"`
	MeanLatencyMs float64          `json:"mean_latency_ms"`
	FPS           float64          `json:"fps"`
	Exercise      ExerciseProgress `json:"exercise"`
	Error         string           `json:"error,omitempty"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// Config holds the collaborators of one practice session.
type Config struct {
	Camera     capture.Camera
	Detector   detector.Detector
	Classifier *classifier.Adapter
	Exercise   Exercise

	// Feed receives a snapshot after every processed frame. Optional.
	Feed *Feed
	// Preview keeps a JPEG of the latest frame with the hand overlay.
	Preview bool
	// Interval overrides the frame interval derived from the camera rate.
	Interval time.Duration
	// Now overrides the clock.
	Now func() time.Time

	Logger *zap.SugaredLogger
}

// Controller runs the capture, detect, classify and debounce loop for one
// practice session. The camera is opened by Start and closed by Stop; the
// detector and classifier belong to the caller.
type Controller struct {
	config    Config
	id        string
	log       *zap.SugaredLogger
	now       func() time.Time
	debouncer *Debouncer
	metrics   *Metrics

	mu       sync.Mutex
	snap     Snapshot
	paused   bool
	running  bool
	finished bool
	failed   error
	preview  []byte
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewController validates config and returns an idle controller.
func NewController(config Config) (*Controller, error) {
	switch {
	case config.Camera == nil:
		return nil, &SetupError{Component: "camera", Err: errors.New("not configured")}
	case config.Detector == nil:
		return nil, &SetupError{Component: "detector", Err: errors.New("not configured")}
	case config.Classifier == nil:
		return nil, &SetupError{Component: "classifier", Err: errors.New("not configured")}
	case config.Exercise == nil:
		return nil, errors.New("practice: no exercise")
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	id := uuid.NewString()
	c := &Controller{
		config:    config,
		id:        id,
		log:       log.Named("practice").With("session", id),
		now:       now,
		debouncer: NewDebouncer(config.Exercise.Hold()),
		metrics:   NewMetrics(),
	}
	c.debouncer.SetTarget(config.Exercise.Target())
	c.snap = Snapshot{
		SessionID:  id,
		Prediction: NoPrediction,
		Exercise:   config.Exercise.Progress(),
	}
	return c, nil
}

// ID returns the session id.
func (c *Controller) ID() string {
	return c.id
}

// Start opens the camera and launches the loop. A camera failure is returned
// as a SetupError and kept in the snapshot. Calling Start on a running
// controller is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	if c.failed != nil {
		return c.failed
	}

	if err := c.config.Camera.Open(); err != nil {
		setupErr := &SetupError{Component: "camera", Err: err}
		c.failed = setupErr
		c.snap.Error = setupErr.Error()
		c.log.Errorw("session did not start", "error", err)
		return setupErr
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.snap.Running = true

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx)
	}()

	c.log.Infow("session started", "target", c.debouncer.Target(), "hold", c.debouncer.Hold())
	return nil
}

// Stop cancels the loop, waits for it to exit and closes the camera.
// A frame still being processed when Stop is called is discarded.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	c.wg.Wait()

	if err := c.config.Camera.Close(); err != nil {
		c.log.Warnw("closing camera", "error", err)
	}

	c.mu.Lock()
	c.running = false
	c.snap.Running = false
	c.debouncer.Reset()
	c.snap.State = Idle
	c.snap.Correct = false
	c.snap.UpdatedAt = c.now()
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
	c.log.Infow("session stopped")
}

// Retry clears the hold and the correct banner.
func (c *Controller) Retry() {
	c.mu.Lock()
	c.debouncer.Reset()
	c.snap.State = Idle
	c.snap.Correct = false
	c.snap.HoldProgress = 0
	c.snap.UpdatedAt = c.now()
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
}

// Pause suspends processing without closing the camera.
func (c *Controller) Pause() {
	c.setPaused(true)
}

// Resume continues after Pause.
func (c *Controller) Resume() {
	c.setPaused(false)
}

func (c *Controller) setPaused(paused bool) {
	c.mu.Lock()
	c.paused = paused
	c.snap.Paused = paused
	if paused {
		c.debouncer.Reset()
		c.snap.State = Idle
		c.snap.HoldProgress = 0
	}
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// LatestFrame returns the most recent preview JPEG, or nil.
func (c *Controller) LatestFrame() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preview
}

// Err returns the error that ended the session, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failed
}

func (c *Controller) interval() time.Duration {
	if c.config.Interval > 0 {
		return c.config.Interval
	}
	fps := c.config.Camera.FPS()
	if fps <= 0 {
		fps = capture.DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// run ticks at the frame interval. A slow iteration delays the next tick
// rather than overlapping it.
func (c *Controller) run(ctx context.Context) {
	ticker := time.NewTicker(c.interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.step(ctx); err != nil {
				c.fail(err)
				return
			}
			if c.isFinished() {
				c.finish()
				return
			}
		}
	}
}

// fail ends the session with a persistent error. The camera stays open
// until Stop.
func (c *Controller) fail(err error) {
	c.log.Errorw("session terminated", "error", err)

	c.mu.Lock()
	c.failed = err
	c.running = false
	c.snap.Running = false
	c.snap.Error = err.Error()
	c.snap.UpdatedAt = c.now()
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
}

func (c *Controller) isFinished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

// finish ends a session whose exercise has no target left. The camera is
// released right away; Stop is still safe to call.
func (c *Controller) finish() {
	if err := c.config.Camera.Close(); err != nil {
		c.log.Warnw("closing camera", "error", err)
	}

	c.mu.Lock()
	c.running = false
	c.snap.Running = false
	c.snap.UpdatedAt = c.now()
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
	c.log.Infow("exercise finished")
}

func (c *Controller) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.paused && !c.finished && c.config.Camera.IsOpen()
}

// step runs one iteration. Per-frame failures are logged and swallowed; the
// returned error is fatal to the session.
func (c *Controller) step(ctx context.Context) error {
	if !c.ready() {
		return nil
	}

	start := c.now()

	frame, err := c.config.Camera.ReadFrame()
	if err != nil {
		c.log.Debugw("reading frame", "error", err)
		return nil
	}
	defer frame.Close()

	hands, err := c.config.Detector.Detect(frame, start)
	if err != nil {
		c.log.Warnw("hand detection failed", "error", err)
		return nil
	}

	var (
		hand       *detector.HandLandmarks
		prediction = classifier.Prediction{Label: NoPrediction, Index: -1}
		classified bool
	)

	if len(hands) > 0 {
		hand = &hands[0]

		features, err := detector.Features(hand)
		switch {
		case errors.Is(err, detector.ErrNoSignal):
		case err != nil:
			c.log.Warnw("normalizing landmarks", "error", err)
			return nil
		default:
			p, err := c.config.Classifier.Classify(features)
			if errors.Is(err, classifier.ErrOutputShape) {
				return err
			}
			if err != nil {
				c.log.Warnw("classification failed", "error", err)
				return nil
			}
			prediction = p
			classified = true
		}
	}

	var jpeg []byte
	if c.config.Preview {
		jpeg = c.encodePreview(frame, hand)
	}

	// The session was stopped while this frame was in flight.
	if ctx.Err() != nil {
		return nil
	}

	now := c.now()

	c.mu.Lock()
	fired := false
	switch {
	case hand == nil:
		c.debouncer.Reset()
	case classified:
		_, fired = c.debouncer.Feed(prediction.Label, now)
	}
	c.mu.Unlock()

	if fired {
		c.log.Infow("sign confirmed", "sign", c.debouncer.Target())
		advanced, err := c.config.Exercise.Confirmed(ctx)
		if err != nil {
			c.log.Errorw("recording progress", "sign", c.debouncer.Target(), "error", err)
		}
		if advanced {
			target := c.config.Exercise.Target()
			c.mu.Lock()
			c.debouncer.SetTarget(target)
			c.finished = target == ""
			c.mu.Unlock()
		}
	}

	end := c.now()

	c.mu.Lock()
	c.metrics.Observe(start, end)
	if jpeg != nil {
		c.preview = jpeg
	}
	state := c.debouncer.State()
	c.snap.Prediction = prediction.Label
	c.snap.Confidence = prediction.Confidence
	c.snap.State = state
	c.snap.Correct = state == Confirmed
	c.snap.HoldProgress = c.debouncer.Progress(end)
	c.snap.LatencyMs = millis(c.metrics.LastLatency())
	c.snap.MeanLatencyMs = millis(c.metrics.MeanLatency())
	c.snap.FPS = c.metrics.FPS()
	c.snap.Exercise = c.config.Exercise.Progress()
	c.snap.UpdatedAt = end
	snap := c.snap
	c.mu.Unlock()

	c.publish(snap)
	return nil
}

func (c *Controller) encodePreview(frame *gocv.Mat, hand *detector.HandLandmarks) []byte {
	if hand != nil {
		detector.DrawHand(frame, hand)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		c.log.Debugw("encoding preview", "error", err)
		return nil
	}
	defer buf.Close()

	return bytes.Clone(buf.GetBytes())
}

func (c *Controller) publish(s Snapshot) {
	if c.config.Feed != nil {
		c.config.Feed.Publish(s)
	}
}
