// Package verification scores proof submissions against task difficulty.
package verification

import (
	"errors"
	"fmt"
	"strings"
)

type ProofType string

const (
	ProofGithub ProofType = "github"
	ProofCourse ProofType = "course"
	ProofImage  ProofType = "image"
	ProofVideo  ProofType = "video"
	ProofText   ProofType = "text"
)

// ErrInvalidProof is returned by Validate when required fields are missing.
var ErrInvalidProof = errors.New("invalid proof")

// Proof is a single proof attempt. Only the fields relevant to Type are read.
type Proof struct {
	Type           ProofType `json:"type"`
	GithubRepo     string    `json:"githubRepo,omitempty"`
	GithubCommits  string    `json:"githubCommits,omitempty"`
	CoursePlatform string    `json:"coursePlatform,omitempty"`
	CourseProgress string    `json:"courseProgress,omitempty"`
	Description    string    `json:"description,omitempty"`
	FileURL        string    `json:"fileUrl,omitempty"`
}

// Result is the verdict for one proof.
type Result struct {
	Verified    bool     `json:"verified"`
	Confidence  int      `json:"confidence"`
	Feedback    string   `json:"feedback"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Validate checks that the fields a proof type depends on are not all empty.
// Unknown types pass; they are scored as unknown rather than rejected here.
func (p Proof) Validate() error {
	blank := func(fields ...string) bool {
		for _, f := range fields {
			if strings.TrimSpace(f) != "" {
				return false
			}
		}
		return true
	}

	switch p.Type {
	case "":
		return fmt.Errorf("%w: proof type is required", ErrInvalidProof)
	case ProofGithub:
		if blank(p.GithubRepo, p.GithubCommits) {
			return fmt.Errorf("%w: github proof needs a repository URL or commit description", ErrInvalidProof)
		}
	case ProofCourse:
		if blank(p.CoursePlatform, p.CourseProgress) {
			return fmt.Errorf("%w: course proof needs a platform or progress description", ErrInvalidProof)
		}
	case ProofImage, ProofVideo:
		if blank(p.FileURL, p.Description) {
			return fmt.Errorf("%w: %s proof needs a file or a description", ErrInvalidProof, p.Type)
		}
	case ProofText:
		if blank(p.Description) {
			return fmt.Errorf("%w: text proof needs a description", ErrInvalidProof)
		}
	}
	return nil
}
