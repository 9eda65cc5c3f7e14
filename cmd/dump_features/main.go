package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"sound-classification/sound"
)

// dumpOutput is the JSON shape written by -out.
type dumpOutput struct {
	Path         string                   `json:"path"`
	SampleRate   int                      `json:"sampleRate"`
	NumMFCC      int                      `json:"numMfcc"`
	MaxFrames    int                      `json:"maxFrames"`
	VectorLength int                      `json:"vectorLength"`
	ZeroTail     int                      `json:"zeroTailFrames"`
	Blocks       []sound.VectorBlockStats `json:"blocks"`
	Vector       []float64                `json:"vector"`
}

func main() {
	sampleRate := flag.Int("sample-rate", 22050, "Decode sample rate in Hz")
	numMFCC := flag.Int("mfcc", 13, "Number of MFCC coefficients per frame")
	maxFrames := flag.Int("max-frames", 1000, "Fixed frame count per clip")
	outPath := flag.String("out", "", "Optional JSON output path for the full vector")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: dump_features [flags] <audio-file>")
	}
	path := flag.Arg(0)

	cfg := sound.DefaultFeatureConfig()
	cfg.SampleRate = *sampleRate
	cfg.NumMFCC = *numMFCC
	cfg.MaxFrames = *maxFrames

	extractor, err := sound.NewExtractor(cfg)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	vec, err := extractor.ExtractFile(path)
	if err != nil {
		log.Fatalf("ERROR: Failed to extract %s: %v", path, err)
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("Vector length: %d (%d rows x %d frames)\n",
		len(vec), 3*cfg.NumMFCC, cfg.MaxFrames)

	zeroTail, err := sound.ZeroTailFrames(vec, cfg)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	fmt.Printf("Clip fills %d of %d frames (%d padded)\n",
		cfg.MaxFrames-zeroTail, cfg.MaxFrames, zeroTail)

	blocks, err := sound.AnalyzeVectorBlocks(vec, cfg)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	sound.PrintBlockReport(blocks)

	fmt.Println("\nFirst frame of each block:")
	for b, name := range []string{"mfcc", "delta", "delta2"} {
		offset := b * cfg.NumMFCC * cfg.MaxFrames
		fmt.Printf("  %-7s", name)
		for c := 0; c < cfg.NumMFCC; c++ {
			fmt.Printf(" %10.4f", vec[offset+c*cfg.MaxFrames])
		}
		fmt.Println()
	}

	if *outPath != "" {
		out := dumpOutput{
			Path:         path,
			SampleRate:   cfg.SampleRate,
			NumMFCC:      cfg.NumMFCC,
			MaxFrames:    cfg.MaxFrames,
			VectorLength: len(vec),
			ZeroTail:     zeroTail,
			Blocks:       blocks,
			Vector:       vec,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Fatalf("ERROR: Failed to marshal output: %v", err)
		}
		if err := os.WriteFile(*outPath, data, 0644); err != nil {
			log.Fatalf("ERROR: Failed to write %s: %v", *outPath, err)
		}
		fmt.Printf("\nFull vector written to: %s\n", *outPath)
	}
}
