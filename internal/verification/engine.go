package verification

import (
	"context"
	"log"
	"time"
)

// ScoreFunc matches Score and lets tests substitute a failing scorer.
type ScoreFunc func(taskTitle, difficulty string, proof Proof) Result

// Engine runs the scorer behind an optional processing delay and turns any
// panic inside scoring into a failed verification.
type Engine struct {
	Delay time.Duration
	Score ScoreFunc
}

func NewEngine(delay time.Duration) *Engine {
	return &Engine{Delay: delay, Score: Score}
}

// Fallback is the result reported when scoring itself fails.
func Fallback() Result {
	return Result{
		Verified:    false,
		Confidence:  0,
		Feedback:    "We couldn't verify your proof right now. Please try again.",
		Suggestions: []string{"Please try submitting your proof again in a moment"},
	}
}

// Verify scores proof. The only error it returns is ctx's, when the context
// ends during the processing delay.
func (e *Engine) Verify(ctx context.Context, taskTitle, difficulty string, proof Proof) (Result, error) {
	if e.Delay > 0 {
		timer := time.NewTimer(e.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	return e.safeScore(taskTitle, difficulty, proof), nil
}

func (e *Engine) safeScore(taskTitle, difficulty string, proof Proof) (res Result) {
	score := e.Score
	if score == nil {
		score = Score
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("verify: scoring %s proof for %q panicked: %v", proof.Type, taskTitle, r)
			res = Fallback()
		}
	}()
	return score(taskTitle, difficulty, proof)
}
