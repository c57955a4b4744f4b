package models

import "time"

// The five fixed judging criteria. Every judge scores each criterion
// with an integer from 0 to 10.
const (
	ScoreMin      = 0
	ScoreMax      = 10
	CriteriaCount = 5
)

type JudgeScore struct {
	ID           int       `json:"id" db:"id"`
	SubmissionID int       `json:"submission_id" db:"submission_id"`
	JudgeID      int       `json:"judge_id" db:"judge_id"`
	Innovation   int       `json:"innovation" db:"innovation"`
	Technical    int       `json:"technical" db:"technical"`
	Design       int       `json:"design" db:"design"`
	Presentation int       `json:"presentation" db:"presentation"`
	Impact       int       `json:"impact" db:"impact"`
	Comment      *string   `json:"comment,omitempty" db:"comment"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Judge *User `json:"judge,omitempty" db:"-"`
}

// Vector returns the criterion scores in their fixed order.
func (s JudgeScore) Vector() [CriteriaCount]int {
	return [CriteriaCount]int{s.Innovation, s.Technical, s.Design, s.Presentation, s.Impact}
}

// Valid reports whether every criterion is within the 0..10 range.
func (s JudgeScore) Valid() bool {
	for _, v := range s.Vector() {
		if v < ScoreMin || v > ScoreMax {
			return false
		}
	}
	return true
}

// SubmissionVersion is an append-only snapshot of a submission's content
// taken before an edit overwrites it.
type SubmissionVersion struct {
	ID           int       `json:"id" db:"id"`
	SubmissionID int       `json:"submission_id" db:"submission_id"`
	Summary      string    `json:"summary" db:"summary"`
	VideoURL     *string   `json:"video_url,omitempty" db:"video_url"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Submission struct {
	ID        int     `json:"id" db:"id"`
	ProjectID int     `json:"project_id" db:"project_id"`
	Summary   string  `json:"summary" db:"summary"`
	VideoURL  *string `json:"video_url,omitempty" db:"video_url"`
	// Mean of the five per-criterion means across all judges, recomputed
	// whenever the judge list changes.
	AverageScore float64   `json:"average_score" db:"average_score"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	Scores   []JudgeScore        `json:"scores,omitempty" db:"-"`
	Versions []SubmissionVersion `json:"versions,omitempty" db:"-"`
}

// AggregateScore computes the average of averages: for each criterion
// the mean across all judges, then the mean of the five criterion means.
func AggregateScore(scores []JudgeScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	var criterionSums [CriteriaCount]float64
	for _, s := range scores {
		for i, v := range s.Vector() {
			criterionSums[i] += float64(v)
		}
	}
	total := 0.0
	for _, sum := range criterionSums {
		total += sum / float64(len(scores))
	}
	return total / CriteriaCount
}
