// Package config loads signtutor settings from a YAML file in the config
// directory, with SIGNTUTOR_* environment variables taking precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. SIGNTUTOR_SERVER_ADDRESS.
const EnvPrefix = "SIGNTUTOR"

// FileName is the config file name inside the config directory.
const FileName = "config.yaml"

type ServerConfig struct {
	Address   string `mapstructure:"address"`
	StaticDir string `mapstructure:"static_dir"`
	// RateLimit is the number of practice control requests allowed per IP per minute.
	RateLimit int `mapstructure:"rate_limit"`
}

type CameraConfig struct {
	Device int  `mapstructure:"device"`
	FPS    int  `mapstructure:"fps"`
	Width  int  `mapstructure:"width"`
	Height int  `mapstructure:"height"`
	Mirror bool `mapstructure:"mirror"`
}

type DetectorConfig struct {
	Script                 string        `mapstructure:"script"`
	Python                 string        `mapstructure:"python"`
	Landmarker             string        `mapstructure:"landmarker"`
	MinDetectionConfidence float64       `mapstructure:"min_detection_confidence"`
	MinTrackingConfidence  float64       `mapstructure:"min_tracking_confidence"`
	IdleTimeout            time.Duration `mapstructure:"idle_timeout"`
}

type ModelConfig struct {
	// Path is an ONNX export of the fingerspelling classifier. When it is
	// missing, templates from the database are used instead.
	Path        string  `mapstructure:"path"`
	Temperature float64 `mapstructure:"temperature"`
}

type PracticeConfig struct {
	LessonHold   time.Duration `mapstructure:"lesson_hold"`
	SpellingHold time.Duration `mapstructure:"spelling_hold"`
	FallbackWord string        `mapstructure:"fallback_word"`
	Preview      bool          `mapstructure:"preview"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Config is the complete application configuration.
type Config struct {
	Dir      string         `mapstructure:"-"`
	Server   ServerConfig   `mapstructure:"server"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Detector DetectorConfig `mapstructure:"detector"`
	Model    ModelConfig    `mapstructure:"model"`
	Practice PracticeConfig `mapstructure:"practice"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Tray     bool           `mapstructure:"tray"`
}

// DefaultDir returns ~/.signtutor.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".signtutor"), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1:8080")
	v.SetDefault("server.static_dir", "web")
	v.SetDefault("server.rate_limit", 120)

	v.SetDefault("camera.device", 0)
	v.SetDefault("camera.fps", 30)
	v.SetDefault("camera.width", 640)
	v.SetDefault("camera.height", 480)
	v.SetDefault("camera.mirror", true)

	v.SetDefault("detector.script", "")
	v.SetDefault("detector.python", "")
	v.SetDefault("detector.landmarker", "")
	v.SetDefault("detector.min_detection_confidence", 0.5)
	v.SetDefault("detector.min_tracking_confidence", 0.5)
	v.SetDefault("detector.idle_timeout", "30s")

	v.SetDefault("model.path", "")
	v.SetDefault("model.temperature", 0.25)

	v.SetDefault("practice.lesson_hold", "800ms")
	v.SetDefault("practice.spelling_hold", "500ms")
	v.SetDefault("practice.fallback_word", "MANO")
	v.SetDefault("practice.preview", true)

	v.SetDefault("database.path", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("tray", false)
}

// Load reads dir/config.yaml, writing it with defaults on first run. An
// empty dir means DefaultDir. Relative model and database paths are
// resolved against dir.
func Load(dir string) (*Config, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating config dir %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(FileName, filepath.Ext(FileName)))
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.Dir = dir

	if cfg.Database.Path == "" {
		cfg.Database.Path = "signtutor.db"
	}
	cfg.Database.Path = resolve(dir, cfg.Database.Path)
	if cfg.Model.Path == "" {
		cfg.Model.Path = "fingerspelling.onnx"
	}
	cfg.Model.Path = resolve(dir, cfg.Model.Path)
	if cfg.Detector.Landmarker != "" {
		cfg.Detector.Landmarker = resolve(dir, cfg.Detector.Landmarker)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would make the practice loop misbehave.
func (c *Config) Validate() error {
	switch {
	case c.Camera.FPS <= 0:
		return fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS)
	case c.Practice.LessonHold < 0:
		return fmt.Errorf("practice.lesson_hold must not be negative, got %s", c.Practice.LessonHold)
	case c.Practice.SpellingHold < 0:
		return fmt.Errorf("practice.spelling_hold must not be negative, got %s", c.Practice.SpellingHold)
	case c.Model.Temperature <= 0:
		return fmt.Errorf("model.temperature must be positive, got %g", c.Model.Temperature)
	case strings.TrimSpace(c.Practice.FallbackWord) == "":
		return errors.New("practice.fallback_word must not be empty")
	}
	return nil
}

func resolve(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
