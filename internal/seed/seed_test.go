package seed

import (
	"testing"

	"samplepedia/internal/models"
)

func TestComputeCounts_Default(t *testing.T) {
	easy, medium, advanced, expert := computeCounts(20, defaultDistribution)
	if easy+medium+advanced+expert != 20 {
		t.Fatalf("sum mismatch: got %d", easy+medium+advanced+expert)
	}
	if easy != 8 || medium != 7 || advanced != 4 || expert != 1 {
		t.Fatalf("unexpected default counts: easy=%d, medium=%d, advanced=%d, expert=%d", easy, medium, advanced, expert)
	}
}

func TestComputeCounts_RoundingGoesToEasy(t *testing.T) {
	easy, medium, advanced, expert := computeCounts(7, defaultDistribution)
	if easy+medium+advanced+expert != 7 {
		t.Fatalf("sum mismatch: got %d", easy+medium+advanced+expert)
	}
	if easy < medium {
		t.Fatalf("easy should absorb rounding leftovers: easy=%d, medium=%d", easy, medium)
	}
}

func TestRandomSHA256(t *testing.T) {
	f := NewFactory(nil, Options{})
	seen := map[string]bool{}
	for i := 0; i < 10; i++ {
		sha := f.RandomSHA256()
		if !models.SHA256Pattern.MatchString(sha) {
			t.Fatalf("generated hash %q is not a valid sha256", sha)
		}
		if seen[sha] {
			t.Fatalf("duplicate hash generated: %s", sha)
		}
		seen[sha] = true
	}
}
