package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

const serviceScript = "mediapipe_service.py"

// ErrServiceNotFound is returned when the MediaPipe service script cannot be located.
var ErrServiceNotFound = errors.New(serviceScript + " not found")

// MediaPipeDetector implements Detector using a Python MediaPipe subprocess
// running the hand landmarker in video mode.
//
// Wire format, per frame: 8-byte big-endian timestamp in milliseconds,
// 4-byte big-endian JPEG length, JPEG bytes. The service answers with one
// JSON line: {"hands": [{"points": [...], "handedness": "...", "score": n}]}.
type MediaPipeDetector struct {
	config    Config
	log       *zap.SugaredLogger
	script    string
	python    string
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	lastTS    int64
	idleTimer *time.Timer
	// idleGen identifies the current idle timer. A timer that fired before
	// being replaced sees a newer generation and leaves the service running.
	idleGen uint64
}

// NewMediaPipeDetector creates a new MediaPipe detector.
// The Python process is started lazily on first detection.
func NewMediaPipeDetector(config Config, log *zap.SugaredLogger) (*MediaPipeDetector, error) {
	script := config.ScriptPath
	if script == "" {
		script = findMediaPipeScript()
	}
	if script == "" {
		return nil, ErrServiceNotFound
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceNotFound, err)
	}

	python := config.PythonPath
	if python == "" {
		python = findVenvPython()
	}
	if python == "" {
		python = "python3"
	}

	if config.NumHands <= 0 {
		config.NumHands = 1
	}

	return &MediaPipeDetector{
		config: config,
		log:    log.Named("mediapipe"),
		script: script,
		python: python,
	}, nil
}

// Detect sends the frame to the service and returns the detected hands.
func (d *MediaPipeDetector) Detect(frame *gocv.Mat, ts time.Time) ([]HandLandmarks, error) {
	if frame == nil || frame.Empty() {
		return nil, errors.New("empty frame")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	// Video mode requires strictly increasing timestamps.
	tsMs := ts.UnixMilli()
	if tsMs <= d.lastTS {
		tsMs = d.lastTS + 1
	}
	d.lastTS = tsMs

	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[:8], uint64(tsMs))
	binary.BigEndian.PutUint32(header[8:], uint32(len(data)))

	if _, err := d.stdin.Write(header); err != nil {
		d.abort()
		return nil, fmt.Errorf("write header: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		d.abort()
		return nil, fmt.Errorf("write frame: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		d.abort()
		return nil, fmt.Errorf("read response: %w", err)
	}

	var response struct {
		Hands []jsonHand `json:"hands"`
		Error string     `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &response); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if response.Error != "" {
		return nil, fmt.Errorf("mediapipe: %s", response.Error)
	}

	result := make([]HandLandmarks, 0, len(response.Hands))
	for _, h := range response.Hands {
		if len(h.Points) != NumLandmarks {
			d.log.Debugw("dropping partial hand", "points", len(h.Points))
			continue
		}
		result = append(result, h.toHandLandmarks())
	}

	d.resetIdleTimer()

	return result, nil
}

// Close shuts down the Python process.
func (d *MediaPipeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *MediaPipeDetector) serviceArgs() []string {
	args := []string{d.script,
		"--num-hands", strconv.Itoa(d.config.NumHands),
		"--min-detection-confidence", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
		"--min-tracking-confidence", strconv.FormatFloat(d.config.MinTrackingConf, 'f', -1, 64),
	}
	if d.config.LandmarkerModel != "" {
		args = append(args, "--model", d.config.LandmarkerModel)
	}
	return args
}

func (d *MediaPipeDetector) ensureStarted() error {
	if d.started {
		return nil
	}

	d.cmd = exec.Command(d.python, d.serviceArgs()...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start mediapipe service: %w", err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true
	d.log.Infow("mediapipe service started", "pid", d.cmd.Process.Pid, "script", d.script)

	return nil
}

// abort kills a service whose pipe broke so the next frame restarts it.
func (d *MediaPipeDetector) abort() {
	if d.cmd != nil && d.cmd.Process != nil {
		d.cmd.Process.Kill()
	}
	if err := d.shutdown(); err != nil {
		d.log.Debugw("mediapipe service exited", "err", err)
	}
}

func (d *MediaPipeDetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}
	d.idleGen++

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil
	d.lastTS = 0

	return err
}

func (d *MediaPipeDetector) resetIdleTimer() {
	if d.config.IdleTimeout <= 0 {
		return
	}
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleGen++
	gen := d.idleGen
	d.idleTimer = time.AfterFunc(d.config.IdleTimeout, func() {
		d.idleExpired(gen)
	})
}

// idleExpired stops the service unless a frame arrived after timer gen was set.
func (d *MediaPipeDetector) idleExpired(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.idleGen {
		return
	}
	if err := d.shutdown(); err != nil {
		d.log.Debugw("idle shutdown", "err", err)
	}
}

// searchPaths returns candidate locations for name relative to the working
// directory, the executable and ~/.signtutor.
func searchPaths(name string, relative ...string) []string {
	var candidates []string
	for _, dir := range relative {
		candidates = append(candidates, filepath.Join(dir, name))
	}
	if execPath, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(execPath), name))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".signtutor", name))
	}
	return candidates
}

func firstExisting(candidates []string) string {
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
	}
	return ""
}

func findMediaPipeScript() string {
	return firstExisting(searchPaths(filepath.Join("scripts", serviceScript), ".", ".."))
}

// findVenvPython looks for a Python interpreter in a virtual environment.
func findVenvPython() string {
	return firstExisting(searchPaths(filepath.Join("venv", "bin", "python"), ".", "..", "../.."))
}

// jsonHand represents the JSON structure from the Python service.
type jsonHand struct {
	Points     []Point3D `json:"points"`
	Handedness string    `json:"handedness"`
	Score      float64   `json:"score"`
}

func (h jsonHand) toHandLandmarks() HandLandmarks {
	lm := HandLandmarks{
		Handedness: h.Handedness,
		Score:      h.Score,
	}
	copy(lm.Points[:], h.Points)
	return lm
}
