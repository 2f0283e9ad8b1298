package models

// DefaultMaxScore is applied when a mark is recorded without an explicit
// maximum.
const DefaultMaxScore float64 = 100

// Mark is a single score record linking one student to one course. IDs are
// assigned by the store, monotonically increasing and never reused. At most
// one mark may exist per (StudentUsername, Course) pair; the mark service
// checks this on create.
type Mark struct {
	ID              int     `json:"id"`
	StudentUsername string  `json:"studentUsername"`
	Course          string  `json:"course"`
	Score           float64 `json:"score"`
	MaxScore        float64 `json:"maxScore"`
	// CreatedBy is the username of the teacher who recorded the mark, empty
	// for admin-created or imported-without-scope records.
	CreatedBy string `json:"createdBy"`
}
