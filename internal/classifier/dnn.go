package classifier

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"gocv.io/x/gocv"
)

// DNNModel runs a feed-forward classifier exported to ONNX through the
// OpenCV DNN module. The network takes a 1xN float32 row and produces a
// 1xL row of class probabilities.
type DNNModel struct {
	mu   sync.Mutex
	net  gocv.Net
	path string
}

// LoadDNNModel reads an ONNX model from path.
func LoadDNNModel(path string) (*DNNModel, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	net := gocv.ReadNet(path, "")
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load model %s", path)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &DNNModel{net: net, path: path}, nil
}

// Predict runs one forward pass. The input blob and output Mat are released
// before returning; the returned slice is a copy.
func (m *DNNModel) Predict(features []float32) ([]float32, error) {
	if len(features) == 0 {
		return nil, errors.New("empty input")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	blob := gocv.NewMatWithSize(1, len(features), gocv.MatTypeCV32F)
	defer blob.Close()
	for i, f := range features {
		blob.SetFloatAt(0, i, f)
	}

	m.net.SetInput(blob, "")
	out := m.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, errors.New("empty model output")
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}

	probs := make([]float32, len(data))
	copy(probs, data)
	return probs, nil
}

// Path returns the model file the network was loaded from.
func (m *DNNModel) Path() string {
	return m.path
}

// Close releases the network.
func (m *DNNModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.net.Close()
}
