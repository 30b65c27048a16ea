// Package exam derives a 0-100 exam-likelihood estimate from retrieval
// provenance signals. Pure functions, no I/O, safe on every retrieval.
package exam

import (
	"regexp"
	"strconv"
)

// #region signals
// Signals are the five boolean provenance inputs to the estimator.
type Signals struct {
	InPreviousPaper         bool // a previous-paper chunk was selected
	InQuestionBank          bool // a question-bank chunk was selected
	RepeatedInStudyMaterial bool // two or more study-material chunks selected
	CoreSyllabusTopic       bool // a syllabus-derived chunk was selected
	HighChapterWeightage    bool // parsed chapter weight >= 15
}

// #endregion signals

// #region estimate
// Label is the four-level exam-likelihood bucket.
type Label string

const (
	LabelVeryLikely Label = "very_likely"
	LabelHigh       Label = "high"
	LabelMedium     Label = "medium"
	LabelLow        Label = "low"
)

// Estimate is the scored exam-likelihood output.
type Estimate struct {
	Score int // 0-100
	Label Label
}

// #endregion estimate

// #region weights
// Fixed score contributions per signal. They sum to 100.
const (
	weightPreviousPaper = 35
	weightQuestionBank  = 25
	weightRepeatedStudy = 15
	weightSyllabus      = 15
	weightChapter       = 10
)

// Label thresholds.
const (
	thresholdVeryLikely = 75
	thresholdHigh       = 50
	thresholdMedium     = 25
)

// #endregion weights

// #region estimator
// EstimateLikelihood scores the signals against fixed weights and thresholds.
func EstimateLikelihood(s Signals) Estimate {
	score := 0
	if s.InPreviousPaper {
		score += weightPreviousPaper
	}
	if s.InQuestionBank {
		score += weightQuestionBank
	}
	if s.RepeatedInStudyMaterial {
		score += weightRepeatedStudy
	}
	if s.CoreSyllabusTopic {
		score += weightSyllabus
	}
	if s.HighChapterWeightage {
		score += weightChapter
	}

	label := LabelLow
	switch {
	case score >= thresholdVeryLikely:
		label = LabelVeryLikely
	case score >= thresholdHigh:
		label = LabelHigh
	case score >= thresholdMedium:
		label = LabelMedium
	}
	return Estimate{Score: score, Label: label}
}

// #endregion estimator

// #region weightage
var weightagePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)`)

// HighWeightage parses the first number out of a free-form chapter weightage
// string ("weightage: 18 marks", "20%") and reports whether it is >= 15.
// Unparseable input counts as not high.
func HighWeightage(raw string) bool {
	m := weightagePattern.FindString(raw)
	if m == "" {
		return false
	}
	w, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return false
	}
	return w >= 15
}

// #endregion weightage
