package verification

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// PassScore is the minimum final score for a proof to be verified.
	PassScore = 70

	// goodScore selects the positive feedback template.
	goodScore = 70

	// Hard tasks scoring below hardFloor lose hardPenalty points.
	hardFloor   = 80
	hardPenalty = 10

	unknownScore = 30
	maxScore     = 100
)

const hardSuggestion = "Hard tasks require more comprehensive evidence. Consider combining several kinds of proof."

var positiveFeedback = map[ProofType]string{
	ProofGithub: "Great work! Your repository and commit history show clear progress on this task.",
	ProofCourse: "Course progress verified. Keep up the learning!",
	ProofImage:  "Your image proof looks good and is well described.",
	ProofVideo:  "Video proof accepted. Nice job documenting your work!",
	ProofText:   "Thorough explanation! Your description clearly shows how you completed the task.",
}

var feedbackSubject = map[ProofType]string{
	ProofGithub: "Your GitHub proof",
	ProofCourse: "Your course proof",
	ProofImage:  "Your image proof",
	ProofVideo:  "Your video proof",
	ProofText:   "Your description",
}

var (
	githubVerbs       = []string{"implemented", "added", "fixed", "created", "built", "developed"}
	courseKeywords    = []string{"completed", "finished", "certificate", "passed", "graduated"}
	reasoningKeywords = []string{"because", "first", "then", "finally", "result", "achieved"}
)

// Score rates proof for a task and decides whether it passes. It is pure:
// identical inputs always give identical results.
func Score(taskTitle, difficulty string, proof Proof) Result {
	var (
		score       int
		suggestions []string
	)

	switch proof.Type {
	case ProofGithub:
		score, suggestions = scoreGithub(proof)
	case ProofCourse:
		score, suggestions = scoreCourse(proof)
	case ProofImage:
		score, suggestions = scoreImage(proof)
	case ProofVideo:
		score, suggestions = scoreVideo(proof)
	case ProofText:
		score, suggestions = scoreText(proof)
	default:
		return Result{
			Verified:    false,
			Confidence:  unknownScore,
			Feedback:    fmt.Sprintf("Unknown proof type %q.", proof.Type),
			Suggestions: []string{"Submit proof as one of: github, course, image, video or text"},
		}
	}

	if score > maxScore {
		score = maxScore
	}
	if difficulty == "hard" && score < hardFloor {
		score -= hardPenalty
		if score < 0 {
			score = 0
		}
		suggestions = append(suggestions, hardSuggestion)
	}

	verified := score >= PassScore
	if verified {
		suggestions = nil
	}
	return Result{
		Verified:    verified,
		Confidence:  score,
		Feedback:    feedback(proof.Type, taskTitle, score),
		Suggestions: suggestions,
	}
}

// feedback picks the message for the final score, after the difficulty
// adjustment.
func feedback(t ProofType, title string, score int) string {
	if score >= goodScore {
		return positiveFeedback[t]
	}
	return needsMore(feedbackSubject[t], title)
}

func scoreGithub(p Proof) (int, []string) {
	score := 0
	var missing []string

	if strings.Contains(strings.ToLower(p.GithubRepo), "github.com") {
		score += 30
	} else {
		missing = append(missing, "Include a link to your GitHub repository")
	}

	commits := strings.TrimSpace(p.GithubCommits)
	switch n := length(commits); {
	case n > 50:
		score += 40
	case n > 20:
		score += 20
		missing = append(missing, "Describe your commits in more detail")
	default:
		missing = append(missing, "Describe your commits in more detail")
	}

	if containsAny(commits, githubVerbs) {
		score += 30
	} else {
		missing = append(missing, "Use action words like implemented, added, fixed or built to describe your changes")
	}

	return score, missing
}

func scoreCourse(p Proof) (int, []string) {
	score := 0
	var missing []string

	if strings.TrimSpace(p.CoursePlatform) != "" {
		score += 20
	} else {
		missing = append(missing, "Specify the course platform, such as Coursera or Udemy")
	}

	progress := strings.TrimSpace(p.CourseProgress)
	if length(progress) > 30 {
		score += 50
	} else {
		missing = append(missing, "Describe your progress in more detail, including the modules or lessons you covered")
	}

	if containsAny(progress, courseKeywords) {
		score += 30
	} else {
		missing = append(missing, "Mention whether you completed the course, passed it or earned a certificate")
	}

	return score, missing
}

func scoreImage(p Proof) (int, []string) {
	score := 0
	var missing []string

	if strings.TrimSpace(p.FileURL) != "" {
		score += 40
	} else {
		missing = append(missing, "Attach an image that shows your completed work")
	}

	desc := strings.TrimSpace(p.Description)
	n := length(desc)
	if n > 30 {
		score += 40
	} else {
		missing = append(missing, "Add a description explaining what the image shows")
	}
	if n > 100 {
		score += 20
	} else {
		missing = append(missing, "Give more context on how the image relates to the task")
	}

	return score, missing
}

func scoreVideo(p Proof) (int, []string) {
	score := 0
	var missing []string

	if strings.TrimSpace(p.FileURL) != "" {
		score += 50
	} else {
		missing = append(missing, "Attach a video recording of your work")
	}

	desc := strings.TrimSpace(p.Description)
	n := length(desc)
	if n > 20 {
		score += 30
	} else {
		missing = append(missing, "Add a short description of what the video shows")
	}
	if n > 80 {
		score += 20
	} else {
		missing = append(missing, "Point out the moments in the video that prove completion")
	}

	return score, missing
}

func scoreText(p Proof) (int, []string) {
	score := 0
	var missing []string

	desc := strings.TrimSpace(p.Description)
	n := length(desc)
	switch {
	case n > 100:
		score += 50
	case n > 50:
		score += 30
		missing = append(missing, "Add more specific details about what you accomplished")
	default:
		missing = append(missing, "Add more specific details about what you accomplished")
	}

	if containsAny(desc, reasoningKeywords) {
		score += 30
	} else {
		missing = append(missing, "Walk through your process (first, then, finally) and the result")
	}

	if n > 200 {
		score += 20
	} else {
		missing = append(missing, "Describe the outcome and what you achieved")
	}

	return score, missing
}

func needsMore(subject, title string) string {
	if title == "" {
		return subject + " needs more detail to verify this task."
	}
	return fmt.Sprintf("%s needs more detail to verify %q.", subject, title)
}

func length(s string) int {
	return utf8.RuneCountInString(s)
}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
