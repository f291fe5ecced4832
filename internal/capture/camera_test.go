package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.DeviceID != 0 || cfg.FPS != DefaultFPS || cfg.Width != DefaultWidth || cfg.Height != DefaultHeight {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
	if !cfg.Mirror {
		t.Error("DefaultConfig() should mirror frames")
	}
}

func TestNewCamera_FillsZeroFields(t *testing.T) {
	tests := []struct {
		name string
		in   Config
		want Config
	}{
		{
			name: "zero config",
			in:   Config{},
			want: Config{FPS: DefaultFPS, Width: DefaultWidth, Height: DefaultHeight},
		},
		{
			name: "explicit values kept",
			in:   Config{DeviceID: 2, FPS: 15, Width: 320, Height: 240, Mirror: true},
			want: Config{DeviceID: 2, FPS: 15, Width: 320, Height: 240, Mirror: true},
		},
		{
			name: "negative values replaced",
			in:   Config{FPS: -1, Width: -640, Height: 0, Mirror: true},
			want: Config{FPS: DefaultFPS, Width: DefaultWidth, Height: DefaultHeight, Mirror: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam, ok := NewCamera(tt.in).(*cameraImpl)
			if !ok {
				t.Fatal("NewCamera did not return a device camera")
			}
			if cam.config != tt.want {
				t.Errorf("config = %+v, want %+v", cam.config, tt.want)
			}
			if cam.IsOpen() {
				t.Error("camera should not be open before Open()")
			}
		})
	}
}

func TestCamera_SetFPSIgnoresNonPositive(t *testing.T) {
	cam := NewCamera(Config{FPS: 12})

	cam.SetFPS(0)
	cam.SetFPS(-5)
	if got := cam.FPS(); got != 12 {
		t.Errorf("FPS() = %d, want 12", got)
	}

	cam.SetFPS(24)
	if got := cam.FPS(); got != 24 {
		t.Errorf("FPS() = %d, want 24", got)
	}
}

func TestFinishFrame_Empty(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	if err := finishFrame(&mat, true); !errors.Is(err, ErrEmptyFrame) {
		t.Errorf("finishFrame() error = %v, want ErrEmptyFrame", err)
	}
}

func TestFinishFrame_Mirror(t *testing.T) {
	newRow := func() gocv.Mat {
		mat := gocv.NewMatWithSize(1, 3, gocv.MatTypeCV8UC1)
		mat.SetUCharAt(0, 0, 10)
		mat.SetUCharAt(0, 1, 20)
		mat.SetUCharAt(0, 2, 30)
		return mat
	}

	mirrored := newRow()
	defer mirrored.Close()
	if err := finishFrame(&mirrored, true); err != nil {
		t.Fatalf("finishFrame() error = %v", err)
	}
	if got := []uint8{mirrored.GetUCharAt(0, 0), mirrored.GetUCharAt(0, 1), mirrored.GetUCharAt(0, 2)}; got[0] != 30 || got[1] != 20 || got[2] != 10 {
		t.Errorf("mirrored row = %v, want [30 20 10]", got)
	}

	plain := newRow()
	defer plain.Close()
	if err := finishFrame(&plain, false); err != nil {
		t.Fatalf("finishFrame() error = %v", err)
	}
	if plain.GetUCharAt(0, 0) != 10 || plain.GetUCharAt(0, 2) != 30 {
		t.Error("frame changed without mirroring")
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(DefaultConfig())

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v, want nil", err)
	}
}

func TestCamera_Device(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping device test in short mode")
	}

	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 320, 240
	cam := NewCamera(cfg)
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}
	defer cam.Close()

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	defer mat.Close()
	if mat.Empty() {
		t.Error("ReadFrame() returned an empty frame")
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("camera still open after Close()")
	}
}
