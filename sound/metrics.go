package sound

import (
	"fmt"
)

// Accuracy returns the fraction of positions where predicted matches
// actual.
func Accuracy(actual, predicted []string) (float64, error) {
	if len(actual) == 0 {
		return 0, fmt.Errorf("no samples to score")
	}
	if len(actual) != len(predicted) {
		return 0, fmt.Errorf("got %d actual labels but %d predictions", len(actual), len(predicted))
	}
	correct := 0
	for i := range actual {
		if actual[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(actual)), nil
}

// ConfusionMatrix counts predictions per (actual, predicted) label pair.
type ConfusionMatrix map[string]map[string]int

// BuildConfusionMatrix tallies actual vs predicted labels.
func BuildConfusionMatrix(actual, predicted []string) ConfusionMatrix {
	matrix := make(ConfusionMatrix)
	for i := range actual {
		if matrix[actual[i]] == nil {
			matrix[actual[i]] = make(map[string]int)
		}
		matrix[actual[i]][predicted[i]]++
	}
	return matrix
}

// Total returns the number of samples the matrix was built from.
func (m ConfusionMatrix) Total() int {
	total := 0
	for _, row := range m {
		for _, count := range row {
			total += count
		}
	}
	return total
}

// PrintConfusionMatrix renders the matrix as a console table with actual
// labels down the side and predicted labels across the top. Zero cells
// print as "." so the diagonal stands out.
func PrintConfusionMatrix(matrix ConfusionMatrix, classes []string) {
	fmt.Println("\nConfusion Matrix:")
	fmt.Printf("%-15s", "Actual \\ Pred")
	for _, c := range classes {
		fmt.Printf(" %6s", truncate(c, 6))
	}
	fmt.Println()
	for _, actual := range classes {
		fmt.Printf("%-15s", truncate(actual, 15))
		for _, pred := range classes {
			count := matrix[actual][pred]
			if count > 0 {
				fmt.Printf(" %6d", count)
			} else {
				fmt.Printf(" %6s", ".")
			}
		}
		fmt.Println()
	}
}

// ClassStats holds per-class evaluation numbers.
type ClassStats struct {
	Label     string  `json:"label"`
	Support   int     `json:"support"`
	Correct   int     `json:"correct"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// BuildClassReport computes precision, recall and F1 for every class in
// classes, in order. Classes with no predictions or no samples score
// zero rather than dividing by zero.
func BuildClassReport(actual, predicted []string, classes []string) []ClassStats {
	truePos := make(map[string]int)
	falsePos := make(map[string]int)
	support := make(map[string]int)
	for i := range actual {
		support[actual[i]]++
		if actual[i] == predicted[i] {
			truePos[actual[i]]++
		} else {
			falsePos[predicted[i]]++
		}
	}

	report := make([]ClassStats, 0, len(classes))
	for _, label := range classes {
		stats := ClassStats{
			Label:   label,
			Support: support[label],
			Correct: truePos[label],
		}
		if predictedCount := truePos[label] + falsePos[label]; predictedCount > 0 {
			stats.Precision = float64(truePos[label]) / float64(predictedCount)
		}
		if support[label] > 0 {
			stats.Recall = float64(truePos[label]) / float64(support[label])
		}
		if stats.Precision+stats.Recall > 0 {
			stats.F1 = 2 * stats.Precision * stats.Recall / (stats.Precision + stats.Recall)
		}
		report = append(report, stats)
	}
	return report
}

// PrintClassReport renders per-class stats as a console table.
func PrintClassReport(report []ClassStats) {
	fmt.Println("\nPer-Class Results:")
	fmt.Printf("%-15s %8s %10s %10s %10s\n", "Class", "Support", "Precision", "Recall", "F1")
	for _, stats := range report {
		fmt.Printf("%-15s %8d %10.3f %10.3f %10.3f\n",
			truncate(stats.Label, 15), stats.Support, stats.Precision, stats.Recall, stats.F1)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-2] + ".."
}
