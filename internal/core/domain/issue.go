package domain

import "time"

// IssueStatus represents the lifecycle state of an issue.
type IssueStatus string

const (
	StatusPending    IssueStatus = "pending"
	StatusInProgress IssueStatus = "in-progress"
	StatusResolved   IssueStatus = "resolved"
	StatusClosed     IssueStatus = "closed"
)

// Statuses lists every status in display order.
var Statuses = []IssueStatus{StatusPending, StatusInProgress, StatusResolved, StatusClosed}

// Valid reports whether s is one of the enumerated statuses. There is no
// transition graph: an admin may move an issue from any status to any other.
func (s IssueStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// IssueCategory classifies the kind of facility problem.
type IssueCategory string

const (
	CategoryInfrastructure IssueCategory = "infrastructure"
	CategoryCleanliness    IssueCategory = "cleanliness"
	CategoryNetwork        IssueCategory = "network"
	CategoryEquipment      IssueCategory = "equipment"
	CategoryOther          IssueCategory = "other"
)

// IssuePriority ranks how urgently an issue needs attention.
type IssuePriority string

const (
	PriorityLow    IssuePriority = "low"
	PriorityMedium IssuePriority = "medium"
	PriorityHigh   IssuePriority = "high"
	PriorityUrgent IssuePriority = "urgent"
)

// Field limits enforced on create and edit.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxCommentLength     = 500
	MaxImages            = 5
)

// Location pins an issue to a place on campus.
type Location struct {
	Building    string `json:"building"`
	Floor       string `json:"floor,omitempty"`
	Room        string `json:"room,omitempty"`
	Description string `json:"description,omitempty"`
}

// StatusChange records a single status transition on an issue.
type StatusChange struct {
	Status    IssueStatus `json:"status"`
	ChangedBy string      `json:"changedBy,omitempty"`
	ChangedAt time.Time   `json:"changedAt"`
	Note      string      `json:"note,omitempty"`
}

// Issue is the core aggregate root. StatusHistory is append-only and is
// seeded with the initial pending entry on creation.
type Issue struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      IssueCategory  `json:"category"`
	Status        IssueStatus    `json:"status"`
	Priority      IssuePriority  `json:"priority"`
	Location      Location       `json:"location"`
	Images        []string       `json:"images"`
	ReportedBy    string         `json:"reportedBy"`
	AssignedTo    string         `json:"assignedTo,omitempty"`
	StatusHistory []StatusChange `json:"statusHistory"`
	// ResolvedAt is set on every transition to resolved and is never cleared
	// afterwards, so it also marks issues that were resolved and later reopened.
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// DefaultStatusNote is the history note used when an admin gives none.
func DefaultStatusNote(s IssueStatus) string {
	return "Status changed to " + string(s)
}
