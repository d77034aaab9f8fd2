// Package scoring turns an evaluator's criteria into a numeric verdict.
//
// Mandatory criteria A–E range over [0, 10]; a mandatory criterion scored
// exactly 0 disqualifies the proposal. Bonus criteria F–I range over [0, 5]
// and count as 0 while unset. The final score is the sum of both groups and
// exists only once every mandatory criterion has been scored.
package scoring

import (
	"math"

	"github.com/pnab-cultura/engine/internal/models"
	appErr "github.com/pnab-cultura/engine/pkg/errors"
	"github.com/pnab-cultura/engine/pkg/utils"
)

const (
	MandatoryMax = 10.0
	BonusMax     = 5.0
)

var (
	mandatoryLetters = [5]string{"A", "B", "C", "D", "E"}
	bonusLetters     = [4]string{"F", "G", "H", "I"}
)

// Result is the outcome of scoring one evaluation.
type Result struct {
	MandatorySum float64  `json:"mandatory_sum"`
	BonusSum     float64  `json:"bonus_sum"`
	Final        *float64 `json:"final,omitempty"`
	Disqualified bool     `json:"disqualified"`
	// Complete is true when all mandatory criteria are set.
	Complete bool `json:"complete"`
	// Missing lists the unset mandatory criteria.
	Missing []string `json:"missing,omitempty"`
}

// Score computes the result for c. It is pure: the same criteria always
// yield the same result. Criteria are scored at the two decimal places they
// are stored with, so Score(Round(c)) equals Score(c).
func Score(c models.Criteria) (Result, error) {
	var r Result

	for i, v := range c.Mandatory() {
		if v == nil {
			r.Missing = append(r.Missing, mandatoryLetters[i])
			continue
		}
		if err := checkRange(mandatoryLetters[i], *v, MandatoryMax); err != nil {
			return Result{}, err
		}
		x := round2(*v)
		if x == 0 {
			r.Disqualified = true
		}
		r.MandatorySum += x
	}

	for i, v := range c.Bonus() {
		if v == nil {
			continue
		}
		if err := checkRange(bonusLetters[i], *v, BonusMax); err != nil {
			return Result{}, err
		}
		r.BonusSum += round2(*v)
	}

	r.MandatorySum = round2(r.MandatorySum)
	r.BonusSum = round2(r.BonusSum)
	r.Complete = len(r.Missing) == 0
	if r.Complete {
		final := round2(r.MandatorySum + r.BonusSum)
		r.Final = &final
	}
	return r, nil
}

func checkRange(letter string, v, max float64) error {
	if math.IsNaN(v) || v < 0 || v > max {
		return appErr.Newf(appErr.CodeCriterionOutOfRange, "criterion %s must be between 0 and %g", letter, max).
			WithMeta("criterion", letter).
			WithMeta("value", v).
			WithMeta("max", max)
	}
	return nil
}

// Round returns c with every set criterion rounded to two decimal places.
func Round(c models.Criteria) models.Criteria {
	r := func(v *float64) *float64 {
		if v == nil {
			return nil
		}
		x := round2(*v)
		return &x
	}
	return models.Criteria{
		A: r(c.A), B: r(c.B), C: r(c.C), D: r(c.D), E: r(c.E),
		F: r(c.F), G: r(c.G), H: r(c.H), I: r(c.I),
	}
}

// round2 keeps sums at the two decimal places the storage columns hold.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Submission describes what an evaluator hands in.
type Submission struct {
	Criteria        models.Criteria
	Rejected        bool
	RejectionReason string
	// Final is true when the evaluator submits; false for a provisional save.
	Final bool
}

// Evaluate scores s and enforces the rules that apply to submissions: a
// final submission must be complete, and a rejection must carry a reason.
func Evaluate(s Submission) (Result, error) {
	r, err := Score(s.Criteria)
	if err != nil {
		return Result{}, err
	}
	if !s.Final {
		return r, nil
	}
	if !r.Complete {
		return Result{}, appErr.New(appErr.CodeIncompleteEvaluation, "all mandatory criteria must be scored before submitting").
			WithMeta("missing", r.Missing)
	}
	if s.Rejected && utils.IsBlank(s.RejectionReason) {
		return Result{}, appErr.New(appErr.CodeMissingRejectionReason, "a rejection requires a reason")
	}
	return r, nil
}

// Summary combines the concluded evaluations of one project.
type Summary struct {
	Concluded       int      `json:"concluded"`
	Disqualified    int      `json:"disqualified"`
	AverageFinal    *float64 `json:"average_final,omitempty"`
	AnyDisqualified bool     `json:"any_disqualified"`
	Recommendations struct {
		Favorable   int `json:"favorable"`
		Unfavorable int `json:"unfavorable"`
	} `json:"recommendations"`
}

// Summarize averages the final scores of concluded, non-disqualified
// evaluations. The decision itself stays with the administrators.
func Summarize(evals []models.Evaluation) Summary {
	var s Summary
	var sum float64
	var counted int
	for _, e := range evals {
		if e.Status != models.EvaluationConcluded {
			continue
		}
		s.Concluded++
		if e.Rejected {
			s.Recommendations.Unfavorable++
		} else {
			s.Recommendations.Favorable++
		}
		if e.Disqualified {
			s.Disqualified++
			s.AnyDisqualified = true
			continue
		}
		if e.FinalScore != nil {
			sum += *e.FinalScore
			counted++
		}
	}
	if counted > 0 {
		avg := round2(sum / float64(counted))
		s.AverageFinal = &avg
	}
	return s
}
