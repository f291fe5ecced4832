package classifier

import (
	"errors"
	"fmt"

	"github.com/ayusman/signtutor/internal/detector"
)

var (
	// ErrNoPrediction is returned when there is no feature vector to classify.
	ErrNoPrediction = errors.New("no prediction")

	// ErrOutputShape is returned when a model's output length does not match
	// the label set. It indicates a model/label mismatch and is not recoverable.
	ErrOutputShape = errors.New("model output does not match label set")
)

// Model is an inference backend. Predict returns one probability per label.
// Implementations release any native buffers they allocate before returning.
type Model interface {
	Predict(features []float32) ([]float32, error)
	Close() error
}

// Prediction is the result of classifying one frame.
type Prediction struct {
	Label      string  `json:"label"`
	Index      int     `json:"index"`
	Confidence float32 `json:"confidence"`
}

// Adapter wraps a Model and maps its output vector onto a LabelSet.
type Adapter struct {
	model  Model
	labels LabelSet
}

// NewAdapter creates an Adapter for model over labels.
func NewAdapter(model Model, labels LabelSet) *Adapter {
	return &Adapter{model: model, labels: labels}
}

// Labels returns the adapter's label set.
func (a *Adapter) Labels() LabelSet {
	return a.labels
}

// Classify runs inference on features and returns the most probable label.
// A nil feature vector returns ErrNoPrediction without calling the model.
func (a *Adapter) Classify(features detector.FeatureVector) (Prediction, error) {
	if features == nil {
		return Prediction{}, ErrNoPrediction
	}

	probs, err := a.model.Predict(features)
	if err != nil {
		return Prediction{}, fmt.Errorf("predict: %w", err)
	}

	if len(probs) != a.labels.Len() {
		return Prediction{}, fmt.Errorf("%w: got %d outputs for %d labels", ErrOutputShape, len(probs), a.labels.Len())
	}

	idx := ArgMax(probs)
	return Prediction{
		Label:      a.labels.Label(idx),
		Index:      idx,
		Confidence: probs[idx],
	}, nil
}

// ArgMax returns the index of the largest value. Ties go to the first index.
// Returns -1 for an empty slice.
func ArgMax(v []float32) int {
	if len(v) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(v); i++ {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}
