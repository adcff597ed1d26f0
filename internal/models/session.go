package models

import "time"

// SessionType classifies a scheduled meeting.
type SessionType string

const (
	SessionTypeClass       SessionType = "CLASS"
	SessionTypeExam        SessionType = "EXAM"
	SessionTypeWorkshop    SessionType = "WORKSHOP"
	SessionTypeTutoring    SessionType = "TUTORING"
	SessionTypeOrientation SessionType = "ORIENTATION"
)

// Valid returns true when the type is a supported value.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTypeClass, SessionTypeExam, SessionTypeWorkshop,
		SessionTypeTutoring, SessionTypeOrientation:
		return true
	default:
		return false
	}
}

// Session represents a single scheduled meeting of a course run. Empty
// InstructorID, CenterID or Room means unassigned.
type Session struct {
	ID           string            `db:"id" json:"id"`
	TenantID     string            `db:"tenant_id" json:"tenant_id"`
	CourseRunID  string            `db:"course_run_id" json:"course_run_id"`
	Title        string            `db:"title" json:"title"`
	Type         SessionType       `db:"type" json:"type"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	EndTime      time.Time         `db:"end_time" json:"end_time"`
	InstructorID string            `db:"instructor_id" json:"instructor_id,omitempty"`
	CenterID     string            `db:"center_id" json:"center_id,omitempty"`
	Room         string            `db:"room" json:"room,omitempty"`
	IsOnline     bool              `db:"is_online" json:"is_online"`
	Materials    []string          `db:"materials" json:"materials,omitempty"`
	Metadata     map[string]string `db:"metadata" json:"metadata,omitempty"`
}

// SessionValidation collects every time-window violation for a session.
type SessionValidation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ConflictDimension identifies the contended resource.
type ConflictDimension string

const (
	ConflictDimensionInstructor ConflictDimension = "INSTRUCTOR"
	ConflictDimensionRoom       ConflictDimension = "ROOM"
)

// SessionConflict describes an overlap between a candidate session and an
// existing one on a single resource dimension.
type SessionConflict struct {
	Dimension     ConflictDimension `json:"dimension"`
	SessionID     string            `json:"session_id"`
	ConflictingID string            `json:"conflicting_id"`
	Message       string            `json:"message"`
}

// RecurrenceFrequency determines the base step of a recurring series.
type RecurrenceFrequency string

const (
	RecurrenceWeekly   RecurrenceFrequency = "WEEKLY"
	RecurrenceBiweekly RecurrenceFrequency = "BIWEEKLY"
)

// Valid returns true when the frequency is a supported value.
func (f RecurrenceFrequency) Valid() bool {
	return f == RecurrenceWeekly || f == RecurrenceBiweekly
}

// RecurrencePattern describes how a base session expands into a series.
// Generation stops at Occurrences instances or when the next start would pass
// EndDate, whichever comes first.
type RecurrencePattern struct {
	Frequency   RecurrenceFrequency `json:"frequency"`
	Interval    int                 `json:"interval"`
	Occurrences int                 `json:"occurrences"`
	EndDate     *time.Time          `json:"end_date,omitempty"`
}

// CalendarFilter narrows down sessions for calendar queries.
type CalendarFilter struct {
	TenantID    string        `json:"tenant_id"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	CourseRunID string        `json:"course_run_id,omitempty"`
	Types       []SessionType `json:"types,omitempty"`
}
