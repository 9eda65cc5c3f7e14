package sound

// TrainingReport is the full record of one pipeline run, written to the
// report store and summarized into the run registry. Accuracies are
// percentages (0-100).
type TrainingReport struct {
	RunID         string  `json:"runId"`
	StartedAt     string  `json:"startedAt"`
	CompletedAt   string  `json:"completedAt"`
	DatasetRoot   string  `json:"datasetRoot"`
	SampleRate    int     `json:"sampleRate"`
	NumMFCC       int     `json:"numMfcc"`
	MaxFrames     int     `json:"maxFrames"`
	VectorLength  int     `json:"vectorLength"`
	TestRatio     float64 `json:"testRatio"`
	Seed          int64   `json:"seed"`
	ScaleFeatures bool    `json:"scaleFeatures"`

	TotalFiles   int            `json:"totalFiles"`
	UsableFiles  int            `json:"usableFiles"`
	SkippedFiles []SkippedFile  `json:"skippedFiles"`
	Classes      []string       `json:"classes"`
	ClassCounts  map[string]int `json:"classCounts"`
	TrainCount   int            `json:"trainCount"`
	TestCount    int            `json:"testCount"`

	TrainAccuracy float64         `json:"trainAccuracy"`
	TestAccuracy  float64         `json:"testAccuracy"`
	Confusion     ConfusionMatrix `json:"confusionMatrix"`
	ClassReport   []ClassStats    `json:"classReport"`

	ExtractionSeconds float64 `json:"extractionSeconds"`
	TrainingSeconds   float64 `json:"trainingSeconds"`
}
