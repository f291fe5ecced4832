package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/ayusman/signtutor/internal/capture"
	"github.com/ayusman/signtutor/internal/classifier"
	"github.com/ayusman/signtutor/internal/config"
	"github.com/ayusman/signtutor/internal/detector"
	"github.com/ayusman/signtutor/internal/practice"
	"github.com/ayusman/signtutor/internal/store"
)

// Open builds an App from loaded configuration. A store failure is returned
// as an error. Detector and model failures leave the App running with
// practice disabled and the failure reported in every snapshot.
func Open(cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	s, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	camCfg := capture.Config{
		DeviceID: cfg.Camera.Device,
		FPS:      cfg.Camera.FPS,
		Width:    cfg.Camera.Width,
		Height:   cfg.Camera.Height,
		Mirror:   cfg.Camera.Mirror,
	}

	appCfg := Config{
		Store:        s,
		Labels:       classifier.Fingerspelling,
		Camera:       func() capture.Camera { return capture.NewCamera(camCfg) },
		LessonHold:   cfg.Practice.LessonHold,
		SpellingHold: cfg.Practice.SpellingHold,
		FallbackWord: cfg.Practice.FallbackWord,
		Preview:      cfg.Practice.Preview,
		Logger:       log,
	}

	det, err := detector.NewMediaPipeDetector(detector.Config{
		NumHands:        1,
		MinConfidence:   cfg.Detector.MinDetectionConfidence,
		MinTrackingConf: cfg.Detector.MinTrackingConfidence,
		ScriptPath:      cfg.Detector.Script,
		PythonPath:      cfg.Detector.Python,
		LandmarkerModel: cfg.Detector.Landmarker,
		IdleTimeout:     cfg.Detector.IdleTimeout,
	}, log)
	if err != nil {
		appCfg.SetupErr = &practice.SetupError{Component: "detector", Err: err}
	} else {
		appCfg.Detector = det
	}

	model, err := loadModel(cfg.Model, s, appCfg.Labels, log)
	if err != nil && appCfg.SetupErr == nil {
		appCfg.SetupErr = &practice.SetupError{Component: "model", Err: err}
	}
	appCfg.Model = model

	a, err := New(appCfg)
	if err != nil {
		s.Close()
		return nil, err
	}
	a.OnClose(s.Close)
	return a, nil
}

// loadModel prefers the ONNX export at cfg.Path and falls back to the
// templates stored in s.
func loadModel(cfg config.ModelConfig, s *store.Store, labels classifier.LabelSet, log *zap.SugaredLogger) (classifier.Model, error) {
	if _, err := os.Stat(cfg.Path); err == nil {
		m, err := classifier.LoadDNNModel(cfg.Path)
		if err != nil {
			return nil, err
		}
		log.Infow("loaded classifier", "path", m.Path())
		return m, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("model file: %w", err)
	}

	stored, err := s.Templates().List()
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}
	m, err := classifier.NewTemplateModel(labels, fromStored(stored))
	if err != nil {
		return nil, fmt.Errorf("no model at %s and no templates: %w", cfg.Path, err)
	}
	m.SetTemperature(float32(cfg.Temperature))
	log.Infow("loaded template classifier", "templates", len(stored))
	return m, nil
}
