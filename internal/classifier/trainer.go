package classifier

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ayusman/signtutor/internal/detector"
)

// TrainTemplates averages a landmark dataset into one template per label.
//
// The input is CSV with one normalized hand per row:
//
//	label,x0,y0,x1,y1,...,x20,y20
//
// An optional header row starting with "label" is skipped. Labels are
// matched case-insensitively against labels and stored in their canonical
// spelling. Templates are returned in label-set order.
func TrainTemplates(r io.Reader, labels LabelSet) ([]Template, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = detector.FeatureLen + 1
	reader.TrimLeadingSpace = true

	sums := make(map[int][]float64)
	counts := make(map[int]int)

	line := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		if line == 1 && strings.EqualFold(record[0], "label") {
			continue
		}

		idx := labels.Index(record[0])
		if idx < 0 {
			return nil, fmt.Errorf("row %d: unknown label %q", line, record[0])
		}

		if sums[idx] == nil {
			sums[idx] = make([]float64, detector.FeatureLen)
		}
		for i, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", line, i+1, err)
			}
			sums[idx][i] += v
		}
		counts[idx]++
	}

	if len(counts) == 0 {
		return nil, fmt.Errorf("%w: dataset is empty", ErrNoTemplates)
	}

	templates := make([]Template, 0, len(counts))
	for idx := range labels {
		n := counts[idx]
		if n == 0 {
			continue
		}
		features := make(detector.FeatureVector, detector.FeatureLen)
		for i, s := range sums[idx] {
			features[i] = float32(s / float64(n))
		}
		templates = append(templates, Template{
			Label:    labels[idx],
			Features: features,
			Samples:  n,
		})
	}

	return templates, nil
}
