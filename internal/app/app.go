// Package app wires the camera, hand detector, classifier, practice loop and
// store into the signtutor application.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/ayusman/signtutor/internal/capture"
	"github.com/ayusman/signtutor/internal/classifier"
	"github.com/ayusman/signtutor/internal/detector"
	"github.com/ayusman/signtutor/internal/practice"
	"github.com/ayusman/signtutor/internal/store"
)

// Award retry defaults.
const (
	DefaultAwardAttempts = 3
	DefaultAwardDelay    = 200 * time.Millisecond
)

// ErrNoSession is returned by session controls when nothing is being practiced.
var ErrNoSession = errors.New("no practice session")

// ErrNoLetters is returned for a word containing nothing that can be signed.
var ErrNoLetters = errors.New("word has no letters to sign")

// CameraFactory returns a fresh camera for each practice session.
type CameraFactory func() capture.Camera

// Config holds the application's collaborators and practice settings.
type Config struct {
	Store    *store.Store
	Labels   classifier.LabelSet
	Camera   CameraFactory
	Detector detector.Detector
	Model    classifier.Model

	// SetupErr is a detector or model failure found while building the
	// collaborators. Sessions refuse to start while it is set.
	SetupErr error

	LessonHold   time.Duration
	SpellingHold time.Duration
	FallbackWord string
	Preview      bool

	AwardAttempts uint
	AwardDelay    time.Duration

	// Interval overrides the session frame interval.
	Interval time.Duration
	Now      func() time.Time
	Logger   *zap.SugaredLogger
}

// App is the running tutor. It owns the detector and model and runs at most
// one practice session at a time.
type App struct {
	config  Config
	log     *zap.SugaredLogger
	adapter *classifier.Adapter
	feed    *practice.Feed
	ctx     context.Context
	cancel  context.CancelFunc
	closers []func() error

	mu      sync.Mutex
	session *practice.Controller
}

// New creates an App from config.
func New(config Config) (*App, error) {
	if config.Store == nil {
		return nil, errors.New("app: store is required")
	}
	if config.Labels == nil {
		config.Labels = classifier.Fingerspelling
	}
	if config.LessonHold == 0 {
		config.LessonHold = practice.LessonHold
	}
	if config.SpellingHold == 0 {
		config.SpellingHold = practice.SpellingHold
	}
	if config.FallbackWord == "" {
		config.FallbackWord = "MANO"
	}
	if config.AwardAttempts == 0 {
		config.AwardAttempts = DefaultAwardAttempts
	}
	if config.AwardDelay == 0 {
		config.AwardDelay = DefaultAwardDelay
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop().Sugar()
	}
	if config.SetupErr == nil {
		switch {
		case config.Camera == nil:
			config.SetupErr = &practice.SetupError{Component: "camera", Err: errors.New("not configured")}
		case config.Detector == nil:
			config.SetupErr = &practice.SetupError{Component: "detector", Err: errors.New("not configured")}
		case config.Model == nil:
			config.SetupErr = &practice.SetupError{Component: "model", Err: errors.New("not configured")}
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		config: config,
		log:    config.Logger.Named("app"),
		feed:   practice.NewFeed(),
		ctx:    ctx,
		cancel: cancel,
	}
	if config.Model != nil {
		a.adapter = classifier.NewAdapter(config.Model, config.Labels)
	}
	if config.SetupErr != nil {
		a.log.Errorw("practice is unavailable", "error", config.SetupErr)
	}
	return a, nil
}

// Store returns the application store.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Labels returns the label set the classifier was trained on.
func (a *App) Labels() classifier.LabelSet {
	return a.config.Labels
}

// Feed returns the snapshot feed shared by all sessions.
func (a *App) Feed() *practice.Feed {
	return a.feed
}

// SetupErr returns the failure that keeps practice from starting, if any.
func (a *App) SetupErr() error {
	return a.config.SetupErr
}

// StartLesson stops any running session and starts practicing sign.
// Locked lessons return store.ErrLocked.
func (a *App) StartLesson(sign string) (practice.Snapshot, error) {
	l, err := a.config.Store.Lessons().GetBySign(sign)
	if err != nil {
		return practice.Snapshot{}, err
	}
	if !l.Unlocked {
		return practice.Snapshot{}, fmt.Errorf("%w: %s", store.ErrLocked, l.Sign)
	}

	ex := practice.NewLessonExercise(l.Sign, a.config.LessonHold, l.Mastered, a.award)
	return a.startSession(ex)
}

// StartWord stops any running session and starts spelling word. An empty
// word means today's word of the day.
func (a *App) StartWord(word string) (practice.Snapshot, error) {
	if word == "" {
		word = a.WordOfTheDay()
	}
	ex := practice.NewSpellingExercise(word, a.config.Labels, a.config.SpellingHold)
	if ex.Done() {
		return practice.Snapshot{}, fmt.Errorf("%q: %w", word, ErrNoLetters)
	}
	return a.startSession(ex)
}

func (a *App) startSession(ex practice.Exercise) (practice.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != nil {
		a.session.Stop()
		a.session = nil
	}

	if err := a.config.SetupErr; err != nil {
		return practice.Snapshot{Prediction: practice.NoPrediction, Error: err.Error()}, err
	}

	ctrl, err := practice.NewController(practice.Config{
		Camera:     a.config.Camera(),
		Detector:   a.config.Detector,
		Classifier: a.adapter,
		Exercise:   ex,
		Feed:       a.feed,
		Preview:    a.config.Preview,
		Interval:   a.config.Interval,
		Now:        a.config.Now,
		Logger:     a.config.Logger,
	})
	if err != nil {
		return practice.Snapshot{}, err
	}

	// A failed session stays current so its error remains visible.
	a.session = ctrl
	if err := ctrl.Start(a.ctx); err != nil {
		return ctrl.Snapshot(), err
	}

	a.log.Infow("practice started", "session", ctrl.ID(), "exercise", ex.Progress().Kind, "target", ex.Target())
	return ctrl.Snapshot(), nil
}

// award records first-time completion of sign, retrying transient store
// failures.
func (a *App) award(ctx context.Context, sign string) error {
	var result *store.Award
	err := retry.Do(
		func() error {
			var err error
			result, err = a.config.Store.Progress().Award(sign, a.config.Now())
			return err
		},
		retry.Context(ctx),
		retry.Attempts(a.config.AwardAttempts),
		retry.Delay(a.config.AwardDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, store.ErrNotFound)
		}),
		retry.OnRetry(func(n uint, err error) {
			a.log.Warnw("retrying progress save", "sign", sign, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("saving progress for %s: %w", sign, err)
	}

	a.log.Infow("progress saved", "sign", result.Sign, "first_time", result.FirstTime,
		"points", result.Points, "total_points", result.TotalPoints, "streak", result.Streak)
	return nil
}

// Session returns the current session, or nil.
func (a *App) Session() *practice.Controller {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Snapshot returns the current session state. Without a session it reports
// no prediction and any setup failure.
func (a *App) Snapshot() practice.Snapshot {
	if s := a.Session(); s != nil {
		return s.Snapshot()
	}
	snap := practice.Snapshot{Prediction: practice.NoPrediction}
	if err := a.config.SetupErr; err != nil {
		snap.Error = err.Error()
	}
	return snap
}

// LatestFrame returns the current session's preview JPEG, or nil.
func (a *App) LatestFrame() []byte {
	if s := a.Session(); s != nil {
		return s.LatestFrame()
	}
	return nil
}

// Retry clears the current hold.
func (a *App) Retry() error {
	return a.withSession((*practice.Controller).Retry)
}

// Pause suspends the current session.
func (a *App) Pause() error {
	return a.withSession((*practice.Controller).Pause)
}

// Resume continues the current session.
func (a *App) Resume() error {
	return a.withSession((*practice.Controller).Resume)
}

// Stop ends the current session.
func (a *App) Stop() error {
	a.mu.Lock()
	s := a.session
	a.session = nil
	a.mu.Unlock()

	if s == nil {
		return ErrNoSession
	}
	s.Stop()
	a.log.Infow("practice stopped", "session", s.ID())
	return nil
}

func (a *App) withSession(fn func(*practice.Controller)) error {
	s := a.Session()
	if s == nil {
		return ErrNoSession
	}
	fn(s)
	return nil
}

// WordOfTheDay returns today's stored word or the fallback word.
func (a *App) WordOfTheDay() string {
	w, err := a.config.Store.Words().Get(a.config.Now())
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			a.log.Warnw("reading word of the day", "error", err)
		}
		return a.config.FallbackWord
	}
	return w.Word
}

// OnClose registers fn to run when the App closes, after the session stops.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Close stops the session and releases the detector and model.
func (a *App) Close() error {
	a.Stop()
	a.cancel()

	var errs []error
	if a.config.Detector != nil {
		errs = append(errs, a.config.Detector.Close())
	}
	if a.config.Model != nil {
		errs = append(errs, a.config.Model.Close())
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
