package classifier

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"

	"github.com/ayusman/signtutor/internal/detector"
)

// DefaultTemperature controls how sharply TemplateModel favours the nearest
// template. Feature vectors live in [-1, 1]^42, so distances are O(1).
const DefaultTemperature = 0.25

// ErrNoTemplates is returned when a TemplateModel is built without templates.
var ErrNoTemplates = errors.New("no sign templates")

// Template is the reference feature vector for one label.
type Template struct {
	Label    string                 `json:"label"`
	Features detector.FeatureVector `json:"features"`
	Samples  int                    `json:"samples"`
}

// TemplateModel is a nearest-template classifier. Each label's score is a
// softmax over the negative Euclidean distance to its closest template;
// labels without a template score zero.
type TemplateModel struct {
	labels      LabelSet
	templates   map[int][]detector.FeatureVector
	temperature float32
}

// NewTemplateModel builds a model over labels from templates. Templates whose
// label is not in the set, or whose length is not FeatureLen, are rejected.
func NewTemplateModel(labels LabelSet, templates []Template) (*TemplateModel, error) {
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	m := &TemplateModel{
		labels:      labels,
		templates:   make(map[int][]detector.FeatureVector),
		temperature: DefaultTemperature,
	}

	for _, t := range templates {
		idx := labels.Index(t.Label)
		if idx < 0 {
			return nil, fmt.Errorf("template label %q not in label set", t.Label)
		}
		if len(t.Features) != detector.FeatureLen {
			return nil, fmt.Errorf("template %q has %d features, want %d", t.Label, len(t.Features), detector.FeatureLen)
		}
		m.templates[idx] = append(m.templates[idx], t.Features)
	}

	return m, nil
}

// SetTemperature changes the softmax temperature. Non-positive values are ignored.
func (m *TemplateModel) SetTemperature(t float32) {
	if t > 0 {
		m.temperature = t
	}
}

// Predict returns one probability per label.
func (m *TemplateModel) Predict(features []float32) ([]float32, error) {
	if len(features) != detector.FeatureLen {
		return nil, fmt.Errorf("got %d features, want %d", len(features), detector.FeatureLen)
	}

	logits := make([]float32, m.labels.Len())
	present := make([]bool, m.labels.Len())
	maxLogit := math32.Inf(-1)

	for idx, candidates := range m.templates {
		best := math32.Inf(1)
		for _, c := range candidates {
			best = math32.Min(best, euclideanDistance(features, c))
		}
		logits[idx] = -best / m.temperature
		present[idx] = true
		maxLogit = math32.Max(maxLogit, logits[idx])
	}

	probs := make([]float32, len(logits))
	var sum float32
	for i, l := range logits {
		if !present[i] {
			continue
		}
		probs[i] = math32.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}

	return probs, nil
}

// Close is a no-op.
func (m *TemplateModel) Close() error {
	return nil
}

// euclideanDistance returns the distance between two equal-length vectors.
func euclideanDistance(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math32.Sqrt(sum)
}
