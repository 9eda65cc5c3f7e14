package sound

// Linear Support Vector Machine
//
// Multi-class classification is done one-vs-rest: every class gets its
// own linear separator trained against all other classes, and prediction
// picks the class whose separator scores highest.
//
// Each binary problem is solved in the dual with coordinate descent
// (the liblinear approach for L1-loss linear SVMs). The bias term is
// folded in as a constant augmented feature, so a weight vector has
// dim+1 entries with the bias last. Training visits samples in a
// shuffled order each epoch using a seeded generator, which makes the
// fitted weights fully reproducible for a given seed.

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// SVMConfig holds the training hyperparameters.
type SVMConfig struct {
	C         float64 // regularization strength (larger = harder margin)
	MaxEpochs int     // upper bound on passes over the training set
	Tolerance float64 // stop when the largest projected gradient falls below this
	Seed      int64   // seeds the per-epoch sample shuffle
}

// DefaultSVMConfig returns the standard hyperparameters: C=1 with a
// linear kernel, matching the usual SVC defaults for this kind of
// pipeline.
func DefaultSVMConfig() SVMConfig {
	return SVMConfig{
		C:         1.0,
		MaxEpochs: 1000,
		Tolerance: 1e-4,
		Seed:      42,
	}
}

// SVM is a trained one-vs-rest linear classifier.
type SVM struct {
	weights    [][]float64 // one row per class, each dim+1 long (bias last)
	numClasses int
	dim        int
}

// TrainSVM fits a one-vs-rest linear SVM on the given feature rows and
// integer class ids (0..numClasses-1). A class that happens to have no
// rows here still gets a separator; it simply never wins a prediction.
func TrainSVM(rows [][]float64, ids []int, numClasses int, cfg SVMConfig) (*SVM, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no training rows")
	}
	if len(rows) != len(ids) {
		return nil, fmt.Errorf("got %d rows but %d labels", len(rows), len(ids))
	}
	if numClasses < 2 {
		return nil, fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}
	if cfg.C <= 0 {
		return nil, fmt.Errorf("C must be positive, got %g", cfg.C)
	}
	if cfg.MaxEpochs <= 0 {
		return nil, fmt.Errorf("max epochs must be positive, got %d", cfg.MaxEpochs)
	}
	dim := len(rows[0])
	if dim == 0 {
		return nil, fmt.Errorf("training rows are empty vectors")
	}
	present := make(map[int]struct{})
	for i, row := range rows {
		if len(row) != dim {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), dim)
		}
		if ids[i] < 0 || ids[i] >= numClasses {
			return nil, fmt.Errorf("row %d has class id %d outside [0, %d)", i, ids[i], numClasses)
		}
		present[ids[i]] = struct{}{}
	}
	if len(present) < 2 {
		return nil, fmt.Errorf("training rows cover %d class(es); need at least 2", len(present))
	}

	// Squared norms including the constant bias feature, shared by every
	// binary subproblem.
	norms := make([]float64, len(rows))
	for i, row := range rows {
		norms[i] = floats.Dot(row, row) + 1
	}

	m := &SVM{
		weights:    make([][]float64, numClasses),
		numClasses: numClasses,
		dim:        dim,
	}
	for class := 0; class < numClasses; class++ {
		y := make([]float64, len(ids))
		for i, id := range ids {
			if id == class {
				y[i] = 1
			} else {
				y[i] = -1
			}
		}
		m.weights[class] = trainBinary(rows, y, norms, cfg, class)
	}
	return m, nil
}

// trainBinary solves one binary subproblem by dual coordinate descent.
// Each class derives its own shuffle stream from the base seed so the
// subproblems stay independent yet reproducible.
func trainBinary(rows [][]float64, y, norms []float64, cfg SVMConfig, class int) []float64 {
	n := len(rows)
	dim := len(rows[0])
	w := make([]float64, dim+1)
	alpha := make([]float64, n)

	rng := rand.New(rand.NewSource(cfg.Seed + int64(class)))
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	for epoch := 0; epoch < cfg.MaxEpochs; epoch++ {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		maxViolation := 0.0
		for _, i := range order {
			g := y[i]*(floats.Dot(w[:dim], rows[i])+w[dim]) - 1

			// Projected gradient: directions blocked by the box
			// constraint 0 <= alpha <= C do not count as violations.
			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			} else if alpha[i] == cfg.C && g < 0 {
				pg = 0
			}
			if v := math.Abs(pg); v > maxViolation {
				maxViolation = v
			}
			if pg == 0 {
				continue
			}

			old := alpha[i]
			next := old - g/norms[i]
			if next < 0 {
				next = 0
			} else if next > cfg.C {
				next = cfg.C
			}
			alpha[i] = next
			if step := (next - old) * y[i]; step != 0 {
				floats.AddScaled(w[:dim], step, rows[i])
				w[dim] += step
			}
		}
		if maxViolation < cfg.Tolerance {
			break
		}
	}
	return w
}

// NumClasses returns the number of classes the model separates.
func (m *SVM) NumClasses() int { return m.numClasses }

// Dim returns the feature dimensionality the model was trained on.
func (m *SVM) Dim() int { return m.dim }

// DecisionValues returns the raw separator score per class for x.
func (m *SVM) DecisionValues(x []float64) ([]float64, error) {
	if len(x) != m.dim {
		return nil, fmt.Errorf("vector has %d features, model expects %d", len(x), m.dim)
	}
	scores := make([]float64, m.numClasses)
	for class, w := range m.weights {
		scores[class] = floats.Dot(w[:m.dim], x) + w[m.dim]
	}
	return scores, nil
}

// Predict returns the class id whose separator scores highest for x.
// Ties break toward the lowest id.
func (m *SVM) Predict(x []float64) (int, error) {
	scores, err := m.DecisionValues(x)
	if err != nil {
		return 0, err
	}
	best := 0
	for class := 1; class < len(scores); class++ {
		if scores[class] > scores[best] {
			best = class
		}
	}
	return best, nil
}

// PredictAll predicts every row.
func (m *SVM) PredictAll(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		id, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = id
	}
	return out, nil
}
