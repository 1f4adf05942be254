package validation

import (
	"strings"
	"testing"

	"samplepedia/internal/models"

	"github.com/stretchr/testify/assert"
)

func regularUser() *models.User {
	return &models.User{ID: 1, Username: "regular"}
}

func staffUser() *models.User {
	return &models.User{ID: 2, Username: "staff", IsStaff: true}
}

func validSubmission() *TaskSubmission {
	return &TaskSubmission{
		SHA256:       strings.Repeat("a", 64),
		DownloadLink: "https://bazaar.abuse.ch/sample/abcd1234/",
		Goal:         "Find the C2 server",
		Description:  "Test malware description",
		Difficulty:   "easy",
		Tags:         []string{"ransomware", "c2"},
		Tools:        []string{"ghidra", "x64dbg"},
		ReferenceSolution: &ReferenceSolutionInput{
			Title:        "My Writeup",
			SolutionType: "blog",
			URL:          "https://myblog.com/writeup",
		},
	}
}

func TestValidateTask_RequiresCoreFields(t *testing.T) {
	errs := ValidateTask(&TaskSubmission{}, regularUser(), false)

	for _, field := range []string{"sha256", "download_link", "goal", "description", "difficulty", "tags", "tools"} {
		assert.Contains(t, errs, field, "expected error for %s", field)
	}
}

func TestValidateTask_SHA256Format(t *testing.T) {
	tests := []struct {
		name   string
		sha256 string
		ok     bool
	}{
		{"valid lowercase", strings.Repeat("a", 64), true},
		{"valid uppercase", strings.Repeat("A", 64), true},
		{"valid mixed", "a1B2c3D4" + strings.Repeat("e", 56), true},
		{"too short", strings.Repeat("a", 63), false},
		{"too long", strings.Repeat("a", 65), false},
		{"non-hex", strings.Repeat("g", 64), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validSubmission()
			in.SHA256 = tt.sha256
			errs := ValidateTask(in, regularUser(), false)
			if tt.ok {
				assert.NotContains(t, errs, "sha256")
			} else {
				assert.Contains(t, errs, "sha256")
			}
		})
	}
}

func TestValidateTask_DownloadLinkAllowlist(t *testing.T) {
	t.Run("regular users restricted to known repositories", func(t *testing.T) {
		in := validSubmission()
		in.DownloadLink = "https://example.com/malware.exe"
		errs := ValidateTask(in, regularUser(), false)
		assert.Contains(t, errs, "download_link")
		assert.Contains(t, errs["download_link"], "MalwareBazaar")
	})

	t.Run("malshare accepted", func(t *testing.T) {
		in := validSubmission()
		in.DownloadLink = "https://malshare.com/sample.php?action=detail&hash=" + strings.Repeat("a", 64)
		errs := ValidateTask(in, regularUser(), false)
		assert.NotContains(t, errs, "download_link")
	})

	t.Run("staff may use any URL", func(t *testing.T) {
		in := validSubmission()
		in.DownloadLink = "https://example.com/malware.exe"
		in.ReferenceSolution = nil
		errs := ValidateTask(in, staffUser(), false)
		assert.Empty(t, errs)
	})
}

func TestValidateTask_ReferenceSolution(t *testing.T) {
	t.Run("required for regular users", func(t *testing.T) {
		in := validSubmission()
		in.ReferenceSolution = nil
		errs := ValidateTask(in, regularUser(), false)
		assert.Contains(t, errs, "reference_solution")
		assert.Contains(t, errs["reference_solution"], "You must provide a reference solution")
	})

	t.Run("optional for staff", func(t *testing.T) {
		in := validSubmission()
		in.ReferenceSolution = nil
		errs := ValidateTask(in, staffUser(), false)
		assert.Empty(t, errs)
	})

	t.Run("not required on edit", func(t *testing.T) {
		in := validSubmission()
		in.ReferenceSolution = nil
		errs := ValidateTask(in, regularUser(), true)
		assert.Empty(t, errs)
	})

	t.Run("onsite requires content", func(t *testing.T) {
		in := validSubmission()
		in.ReferenceSolution = &ReferenceSolutionInput{
			Title:        "My Solution",
			SolutionType: "onsite",
		}
		errs := ValidateTask(in, regularUser(), false)
		assert.Contains(t, errs["reference_solution_content"], "On-site reference solutions must have content")
	})

	t.Run("external requires url", func(t *testing.T) {
		in := validSubmission()
		in.ReferenceSolution = &ReferenceSolutionInput{
			Title:        "My Blog Post",
			SolutionType: "blog",
		}
		errs := ValidateTask(in, regularUser(), false)
		assert.Contains(t, errs["reference_solution_url"], "External reference solutions")
	})

	t.Run("unknown type rejected", func(t *testing.T) {
		in := validSubmission()
		in.ReferenceSolution.SolutionType = "podcast"
		errs := ValidateTask(in, regularUser(), false)
		assert.Contains(t, errs, "reference_solution_type")
	})
}

func TestValidateTask_DifficultyChoices(t *testing.T) {
	t.Run("expert never submittable", func(t *testing.T) {
		in := validSubmission()
		in.Difficulty = "expert"
		errs := ValidateTask(in, staffUser(), false)
		assert.Contains(t, errs, "difficulty")
	})

	for _, d := range []string{"easy", "medium", "advanced"} {
		t.Run(d+" accepted", func(t *testing.T) {
			in := validSubmission()
			in.Difficulty = d
			errs := ValidateTask(in, regularUser(), false)
			assert.NotContains(t, errs, "difficulty")
		})
	}
}

func TestNormalizeLabels(t *testing.T) {
	got := NormalizeLabels([]string{" RaNsOmWaRe ", "APT", "c2", "", "  ", "apt"})
	assert.Equal(t, []string{"ransomware", "apt", "c2"}, got)
}
