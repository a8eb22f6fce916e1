package models

import "time"

// CheckSession is one persisted validation run: the uploaded file's name, the
// issues found, their summary, and the optional ML readiness result.
type CheckSession struct {
	ID        string           `json:"id"`
	Filename  string           `json:"filename"`
	CreatedAt time.Time        `json:"created_at"`
	Summary   *Summary         `json:"summary,omitempty"`
	Issues    []Issue          `json:"issues"`
	Readiness *ReadinessResult `json:"readiness,omitempty"`
}
