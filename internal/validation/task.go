// Package validation provides input validation for task submissions.
package validation

import (
	"net/url"
	"strings"

	"samplepedia/internal/models"
)

// Download hosts regular users may link samples from.
var allowedDownloadHosts = map[string]string{
	"bazaar.abuse.ch": "MalwareBazaar",
	"malshare.com":    "MalShare",
}

// ReferenceSolutionInput is the optional reference solution attached to a
// task submission.
type ReferenceSolutionInput struct {
	Title        string `json:"title"`
	SolutionType string `json:"solution_type"`
	URL          string `json:"url"`
	Content      string `json:"content"`
}

// Provided reports whether any reference solution field was filled in.
func (r *ReferenceSolutionInput) Provided() bool {
	if r == nil {
		return false
	}
	return r.Title != "" || r.SolutionType != "" || r.URL != "" || r.Content != ""
}

// TaskSubmission carries the fields of a task create or edit request.
type TaskSubmission struct {
	SHA256            string                  `json:"sha256"`
	DownloadLink      string                  `json:"download_link"`
	Goal              string                  `json:"goal"`
	Description       string                  `json:"description"`
	Difficulty        string                  `json:"difficulty"`
	YouTubeID         string                  `json:"youtube_id"`
	ImageID           uint                    `json:"image_id"`
	Tags              []string                `json:"tags"`
	Tools             []string                `json:"tools"`
	ReferenceSolution *ReferenceSolutionInput `json:"reference_solution"`
}

// FieldErrors maps input field names to human-readable messages.
type FieldErrors map[string]string

func (f FieldErrors) add(field, msg string) {
	if _, seen := f[field]; !seen {
		f[field] = msg
	}
}

// NormalizeLabels trims whitespace, lowercases and drops empty entries.
func NormalizeLabels(labels []string) []string {
	out := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// downloadHostAllowed reports whether the link points at an allowlisted
// sample repository.
func downloadHostAllowed(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	_, ok := allowedDownloadHosts[host]
	return ok
}

// ValidateTask checks a submission the way the submission form does: required
// fields first, then per-field rules. isEdit relaxes the reference-solution
// requirement since existing tasks already carry their solutions.
func ValidateTask(in *TaskSubmission, submitter *models.User, isEdit bool) FieldErrors {
	errs := FieldErrors{}
	isStaff := submitter != nil && submitter.IsStaff

	if strings.TrimSpace(in.SHA256) == "" {
		errs.add("sha256", "This field is required.")
	} else if !models.SHA256Pattern.MatchString(strings.TrimSpace(in.SHA256)) {
		errs.add("sha256", "SHA256 must be exactly 64 hexadecimal characters.")
	}

	if strings.TrimSpace(in.DownloadLink) == "" {
		errs.add("download_link", "This field is required.")
	} else if !isStaff && !downloadHostAllowed(in.DownloadLink) {
		errs.add("download_link", "Download link must point to MalwareBazaar (bazaar.abuse.ch) or MalShare (malshare.com).")
	}

	if strings.TrimSpace(in.Goal) == "" {
		errs.add("goal", "This field is required.")
	}
	if strings.TrimSpace(in.Description) == "" {
		errs.add("description", "This field is required.")
	}

	if in.Difficulty == "" {
		errs.add("difficulty", "This field is required.")
	} else {
		valid := false
		for _, d := range models.SubmittableDifficulties {
			if models.Difficulty(in.Difficulty) == d {
				valid = true
				break
			}
		}
		if !valid {
			errs.add("difficulty", "Select a valid difficulty: easy, medium or advanced.")
		}
	}

	if len(NormalizeLabels(in.Tags)) == 0 {
		errs.add("tags", "This field is required.")
	}
	if len(NormalizeLabels(in.Tools)) == 0 {
		errs.add("tools", "This field is required.")
	}

	validateReferenceSolution(in.ReferenceSolution, isStaff, isEdit, errs)

	return errs
}

func validateReferenceSolution(ref *ReferenceSolutionInput, isStaff, isEdit bool, errs FieldErrors) {
	if !ref.Provided() {
		if !isStaff && !isEdit {
			errs.add("reference_solution", "You must provide a reference solution (write-up, blog post, or video) for this sample.")
		}
		return
	}

	if strings.TrimSpace(ref.Title) == "" {
		errs.add("reference_solution_title", "This field is required.")
	}

	st := models.SolutionType(ref.SolutionType)
	if !st.Valid() {
		errs.add("reference_solution_type", "Select a valid solution type: onsite, blog, paper or video.")
		return
	}

	if st == models.SolutionTypeOnsite {
		if strings.TrimSpace(ref.Content) == "" {
			errs.add("reference_solution_content", "On-site reference solutions must have content.")
		}
	} else if strings.TrimSpace(ref.URL) == "" {
		errs.add("reference_solution_url", "External reference solutions must have a URL.")
	}
}
