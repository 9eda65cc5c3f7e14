package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"sound-classification/wav"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	_ = godotenv.Load()

	switch os.Args[1] {
	case "train":
		// Non-WAV input is decoded through FFmpeg, so say so up front
		// instead of failing file by file.
		if err := wav.CheckFFmpegAvailable(); err != nil {
			log.Printf("WARNING: %v\n", err)
			log.Println("Training will continue but every non-WAV file will be skipped.")
		}
		runTrain(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Expected 'train' or 'history' subcommand")
	fmt.Println()
	fmt.Println("  train    extract features from a labeled dataset, train the classifier and report accuracy")
	fmt.Println("  history  inspect past training runs recorded in the run registry")
}
