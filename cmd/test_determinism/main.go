package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"reflect"

	"sound-classification/sound"
)

// Test if feature extraction and the training pipeline are deterministic
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: test_determinism <audio-file> [dataset-root]")
	}

	testFile := os.Args[1]
	log.Printf("Testing determinism with: %s\n", testFile)

	extractor, err := sound.NewExtractor(sound.DefaultFeatureConfig())
	if err != nil {
		log.Fatalf("Failed to build extractor: %v", err)
	}

	// Extract features 5 times from the same file
	const numRuns = 5
	var featureSets [][]float64

	for i := 0; i < numRuns; i++ {
		features, err := extractor.ExtractFile(testFile)
		if err != nil {
			log.Fatalf("Run %d failed: %v", i+1, err)
		}
		featureSets = append(featureSets, features)
		log.Printf("Run %d: First 5 features: %.10f, %.10f, %.10f, %.10f, %.10f",
			i+1, features[0], features[1], features[2], features[3], features[4])
	}

	// Check if all runs produced identical results
	fmt.Println("\n=== Determinism Check ===")
	allIdentical := true
	maxDiff := 0.0

	for i := 1; i < numRuns; i++ {
		for j := 0; j < len(featureSets[0]); j++ {
			diff := math.Abs(featureSets[0][j] - featureSets[i][j])
			if diff > maxDiff {
				maxDiff = diff
			}
			if diff > 1e-12 { // Allow tiny floating point errors
				allIdentical = false
				fmt.Printf("❌ Feature %d differs between run 1 and run %d: %.15f vs %.15f (diff: %e)\n",
					j, i+1, featureSets[0][j], featureSets[i][j], diff)
			}
		}
	}

	if allIdentical {
		fmt.Println("✅ All runs produced IDENTICAL features (deterministic)")
		fmt.Printf("   Max difference: %e\n", maxDiff)
	} else {
		fmt.Printf("❌ Feature extraction is NON-DETERMINISTIC (max diff: %e)\n", maxDiff)
		fmt.Println("   Training on these features would not be reproducible!")
	}

	if len(os.Args) > 2 {
		comparePipelineRuns(os.Args[2], extractor)
	}
}

// comparePipelineRuns trains twice with one seed and diffs the results.
func comparePipelineRuns(datasetRoot string, extractor *sound.Extractor) {
	fmt.Println("\n=== Pipeline Reproducibility ===")
	fmt.Printf("Training twice on %s with seed 42...\n", datasetRoot)

	cfg := sound.DefaultPipelineConfig()
	cfg.DatasetRoot = datasetRoot
	cfg.Feature = extractor.Config()

	first, err := sound.RunPipeline(cfg, extractor)
	if err != nil {
		log.Fatalf("First pipeline run failed: %v", err)
	}
	second, err := sound.RunPipeline(cfg, extractor)
	if err != nil {
		log.Fatalf("Second pipeline run failed: %v", err)
	}

	identical := true
	if first.TrainAccuracy != second.TrainAccuracy {
		identical = false
		fmt.Printf("❌ Train accuracy differs: %.4f%% vs %.4f%%\n",
			first.TrainAccuracy, second.TrainAccuracy)
	}
	if first.TestAccuracy != second.TestAccuracy {
		identical = false
		fmt.Printf("❌ Test accuracy differs: %.4f%% vs %.4f%%\n",
			first.TestAccuracy, second.TestAccuracy)
	}
	if first.TrainCount != second.TrainCount || first.TestCount != second.TestCount {
		identical = false
		fmt.Printf("❌ Splits differ: %d/%d vs %d/%d\n",
			first.TrainCount, first.TestCount, second.TrainCount, second.TestCount)
	}
	if !reflect.DeepEqual(first.Confusion, second.Confusion) {
		identical = false
		fmt.Println("❌ Confusion matrices differ between runs")
	}

	if identical {
		fmt.Println("✅ Both runs produced IDENTICAL results (reproducible)")
		fmt.Printf("   Test accuracy: %.2f%% on %d held-out samples\n",
			first.TestAccuracy, first.TestCount)
	} else {
		fmt.Println("❌ Pipeline is NON-REPRODUCIBLE with a fixed seed!")
	}
}
