package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
	AttendanceStatusPending AttendanceStatus = "PENDING"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent,
		AttendanceStatusExcused, AttendanceStatusPending:
		return true
	default:
		return false
	}
}

// Attended reports whether the status counts towards the attendance rate.
func (s AttendanceStatus) Attended() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// Attendance records one user's presence for one session.
type Attendance struct {
	ID                string            `db:"id" json:"id"`
	TenantID          string            `db:"tenant_id" json:"tenant_id"`
	SessionID         string            `db:"session_id" json:"session_id"`
	EnrollmentID      string            `db:"enrollment_id" json:"enrollment_id"`
	UserID            string            `db:"user_id" json:"user_id"`
	Status            AttendanceStatus  `db:"status" json:"status"`
	CheckInTime       *time.Time        `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime      *time.Time        `db:"check_out_time" json:"check_out_time,omitempty"`
	ExcuseReason      *string           `db:"excuse_reason" json:"excuse_reason,omitempty"`
	ExcuseDocumentURL *string           `db:"excuse_document_url" json:"excuse_document_url,omitempty"`
	MarkedBy          string            `db:"marked_by" json:"marked_by"`
	MarkedAt          time.Time         `db:"marked_at" json:"marked_at"`
	Metadata          map[string]string `db:"metadata" json:"metadata,omitempty"`
}

// AttendanceSummary aggregates one enrollment's attendance records.
type AttendanceSummary struct {
	TotalSessions  int        `json:"total_sessions"`
	Attended       int        `json:"attended"`
	Absent         int        `json:"absent"`
	Late           int        `json:"late"`
	Excused        int        `json:"excused"`
	AttendanceRate int        `json:"attendance_rate"`
	LastAttendance *time.Time `json:"last_attendance,omitempty"`
}

// SessionAttendanceSummary aggregates attendance for a single session.
type SessionAttendanceSummary struct {
	SessionID      string `json:"session_id"`
	Title          string `json:"title,omitempty"`
	TotalEnrolled  int    `json:"total_enrolled"`
	Attended       int    `json:"attended"`
	Absent         int    `json:"absent"`
	Late           int    `json:"late"`
	Excused        int    `json:"excused"`
	Pending        int    `json:"pending"`
	AttendanceRate int    `json:"attendance_rate"`
}

// AttendanceRequirementResult reports whether an enrollment meets the minimum
// attendance rate.
type AttendanceRequirementResult struct {
	Meets    bool `json:"meets"`
	Rate     int  `json:"rate"`
	Required int  `json:"required"`
}

// LowAttendanceStudent flags an enrollment below the minimum attendance rate.
type LowAttendanceStudent struct {
	EnrollmentID  string `json:"enrollment_id"`
	TotalSessions int    `json:"total_sessions"`
	Attended      int    `json:"attended"`
	Rate          int    `json:"rate"`
}

// AttendanceReport summarises attendance over a date range.
type AttendanceReport struct {
	TotalSessions         int                      `json:"total_sessions"`
	AverageAttendanceRate float64                  `json:"average_attendance_rate"`
	StatusBreakdown       map[AttendanceStatus]int `json:"status_breakdown"`
}
