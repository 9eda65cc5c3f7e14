package sound

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// FeatureScaler standardizes feature vectors to zero mean and unit
// variance per dimension. Fit it on training rows only, then apply it to
// both splits; fitting on everything would leak test statistics into
// training.
type FeatureScaler struct {
	Mean   []float64 `json:"mean"`
	Stddev []float64 `json:"stddev"`
}

// FitScaler computes per-dimension statistics over rows. Dimensions with
// (near) zero variance are left unscaled instead of dividing by zero.
func FitScaler(rows [][]float64) (*FeatureScaler, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows to fit scaler on")
	}
	dim := len(rows[0])
	mean := make([]float64, dim)
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), dim)
		}
		floats.Add(mean, row)
	}
	floats.Scale(1/float64(len(rows)), mean)

	variance := make([]float64, dim)
	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			variance[j] += d * d
		}
	}
	stddev := make([]float64, dim)
	for j := range stddev {
		stddev[j] = math.Sqrt(variance[j] / float64(len(rows)))
		if stddev[j] < 1e-12 {
			stddev[j] = 1
		}
	}
	return &FeatureScaler{Mean: mean, Stddev: stddev}, nil
}

// Transform returns a standardized copy of x.
func (s *FeatureScaler) Transform(x []float64) ([]float64, error) {
	if len(x) != len(s.Mean) {
		return nil, fmt.Errorf("vector has %d features, scaler expects %d", len(x), len(s.Mean))
	}
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Stddev[j]
	}
	return out, nil
}

// TransformAll standardizes every row into a new slice of new rows.
func (s *FeatureScaler) TransformAll(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := s.Transform(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = scaled
	}
	return out, nil
}
