package domain

// OutcomeKind is how the processing of a single listing reference ended.
type OutcomeKind int

const (
	OutcomeEmitted OutcomeKind = iota
	OutcomeSkipped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeEmitted:
		return "emitted"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is produced exactly once per submitted reference.
type Outcome struct {
	Kind      OutcomeKind
	Reference ListingReference
	URL       string
	Record    *ListingRecord
	Err       error
}

// Stats summarizes a crawl. Once the pool has drained,
// Emitted+Skipped+Failed equals Submitted.
type Stats struct {
	Site      string `json:"site"`
	RunID     string `json:"runId,omitempty"`
	Pages     int64  `json:"pages"`
	Submitted int64  `json:"submitted"`
	Emitted   int64  `json:"emitted"`
	Skipped   int64  `json:"skipped"`
	Failed    int64  `json:"failed"`
	Done      bool   `json:"done"`
}

// Pending is the number of submitted references without an outcome yet.
func (s Stats) Pending() int64 {
	return s.Submitted - s.Emitted - s.Skipped - s.Failed
}
