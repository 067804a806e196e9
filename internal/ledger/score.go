package ledger

import "fmt"

// Grade is the letter band of a WeightedScore.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

var gradeLabels = map[Grade]string{
	GradeA: "Excellent",
	GradeB: "Good",
	GradeC: "Average",
	GradeD: "Needs Improvement",
	GradeF: "Poor",
}

func (g Grade) String() string {
	return fmt.Sprintf("%s (%s)", string(g), gradeLabels[g])
}

// Status maps the grade back onto a test case status: A and B pass,
// C is a warning, D and F fail.
func (g Grade) Status() Status {
	switch g {
	case GradeA, GradeB:
		return StatusPass
	case GradeC:
		return StatusWarning
	default:
		return StatusFail
	}
}

var severityWeights = map[Severity]int{
	SeverityCritical: 10,
	SeverityHigh:     5,
	SeverityMedium:   3,
	SeverityLow:      1,
	SeverityInfo:     0,
}

// weightedPassing is intentionally wider than the verdict table:
// Warning and Info add to the passing weight here.
var weightedPassing = map[Status]bool{
	StatusPass:    true,
	StatusWarning: true,
	StatusInfo:    true,
}

// WeightedScore is the severity-weighted score. It is a separate metric from
// Statistics.PassRate and the two are not expected to agree.
type WeightedScore struct {
	Score    float64 `json:"score"`
	Grade    Grade   `json:"grade"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Warnings int     `json:"warnings"`
}

// ComputeWeightedScore weighs each case by severity and counts Pass, Warning
// and Info statuses toward the passing weight. Score is 0 when the total
// weight is 0.
func ComputeWeightedScore(cases []TestCase) WeightedScore {
	var total, passing int
	var result WeightedScore
	for _, tc := range cases {
		weight, ok := severityWeights[tc.Severity]
		if !ok {
			weight = 1
		}
		total += weight
		if weightedPassing[tc.Status] {
			passing += weight
		}
		switch tc.Status {
		case StatusPass:
			result.Passed++
		case StatusFail:
			result.Failed++
		case StatusWarning:
			result.Warnings++
		}
	}
	if total > 0 {
		result.Score = float64(passing) / float64(total) * 100
	}
	result.Grade = GradeFor(result.Score)
	return result
}

func GradeFor(score float64) Grade {
	switch {
	case score >= 90:
		return GradeA
	case score >= 80:
		return GradeB
	case score >= 70:
		return GradeC
	case score >= 60:
		return GradeD
	default:
		return GradeF
	}
}
