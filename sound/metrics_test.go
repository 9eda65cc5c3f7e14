package sound

import (
	"math"
	"testing"
)

func TestAccuracy(t *testing.T) {
	t.Parallel()

	acc, err := Accuracy([]string{"cat", "dog", "cat", "dog"}, []string{"cat", "dog", "dog", "dog"})
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if acc != 0.75 {
		t.Fatalf("Accuracy = %g, want 0.75", acc)
	}

	perfect, err := Accuracy([]string{"a", "b"}, []string{"a", "b"})
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if perfect != 1.0 {
		t.Fatalf("Accuracy = %g, want 1.0", perfect)
	}

	if _, err := Accuracy(nil, nil); err == nil {
		t.Fatal("Accuracy of nothing should fail")
	}
	if _, err := Accuracy([]string{"a"}, []string{"a", "b"}); err == nil {
		t.Fatal("Accuracy with mismatched lengths should fail")
	}
}

func TestBuildConfusionMatrix(t *testing.T) {
	t.Parallel()

	actual := []string{"cat", "cat", "dog", "dog"}
	predicted := []string{"cat", "dog", "dog", "dog"}
	matrix := BuildConfusionMatrix(actual, predicted)

	if got := matrix["cat"]["cat"]; got != 1 {
		t.Errorf("cat->cat = %d, want 1", got)
	}
	if got := matrix["cat"]["dog"]; got != 1 {
		t.Errorf("cat->dog = %d, want 1", got)
	}
	if got := matrix["dog"]["dog"]; got != 2 {
		t.Errorf("dog->dog = %d, want 2", got)
	}
	if got := matrix["dog"]["cat"]; got != 0 {
		t.Errorf("dog->cat = %d, want 0", got)
	}
	if got := matrix.Total(); got != 4 {
		t.Errorf("Total() = %d, want 4", got)
	}
}

func TestBuildClassReport(t *testing.T) {
	t.Parallel()

	actual := []string{"cat", "cat", "cat", "dog"}
	predicted := []string{"cat", "dog", "cat", "dog"}
	report := BuildClassReport(actual, predicted, []string{"cat", "dog"})
	if len(report) != 2 {
		t.Fatalf("report has %d rows, want 2", len(report))
	}

	cat := report[0]
	if cat.Label != "cat" || cat.Support != 3 || cat.Correct != 2 {
		t.Fatalf("cat row = %+v", cat)
	}
	if cat.Precision != 1.0 {
		t.Errorf("cat precision = %g, want 1.0", cat.Precision)
	}
	if math.Abs(cat.Recall-2.0/3.0) > 1e-12 {
		t.Errorf("cat recall = %g, want 2/3", cat.Recall)
	}
	if math.Abs(cat.F1-0.8) > 1e-12 {
		t.Errorf("cat F1 = %g, want 0.8", cat.F1)
	}

	dog := report[1]
	if dog.Precision != 0.5 {
		t.Errorf("dog precision = %g, want 0.5", dog.Precision)
	}
	if dog.Recall != 1.0 {
		t.Errorf("dog recall = %g, want 1.0", dog.Recall)
	}
	if math.Abs(dog.F1-2.0/3.0) > 1e-12 {
		t.Errorf("dog F1 = %g, want 2/3", dog.F1)
	}
}

func TestBuildClassReportHandlesUnpredictedClass(t *testing.T) {
	t.Parallel()

	// "bird" exists but is never predicted and never actual; everything
	// must stay zero instead of dividing by zero.
	report := BuildClassReport([]string{"cat"}, []string{"cat"}, []string{"bird", "cat"})
	bird := report[0]
	if bird.Support != 0 || bird.Precision != 0 || bird.Recall != 0 || bird.F1 != 0 {
		t.Fatalf("bird row should be all zero, got %+v", bird)
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short, 10) = %q", got)
	}
	if got := truncate("a-very-long-label", 6); got != "a-ve.." {
		t.Errorf("truncate = %q, want a-ve..", got)
	}
}
