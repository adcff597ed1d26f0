package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusPending   EnrollmentStatus = "PENDING"
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusCompleted EnrollmentStatus = "COMPLETED"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
	EnrollmentStatusFailed    EnrollmentStatus = "FAILED"
)

// Valid returns true when the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusActive, EnrollmentStatusCompleted,
		EnrollmentStatusWithdrawn, EnrollmentStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether no further transitions are allowed from the status.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentStatusCompleted
}

// enrollmentTransitions is the exhaustive transition table. COMPLETED is
// terminal and intentionally absent.
var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusPending:   {EnrollmentStatusActive, EnrollmentStatusWithdrawn},
	EnrollmentStatusActive:    {EnrollmentStatusCompleted, EnrollmentStatusWithdrawn, EnrollmentStatusFailed},
	EnrollmentStatusWithdrawn: {EnrollmentStatusPending},
	EnrollmentStatusFailed:    {EnrollmentStatusPending},
}

// IsValidEnrollmentTransition reports whether the status change is allowed by
// the lifecycle state machine.
func IsValidEnrollmentTransition(from, to EnrollmentStatus) bool {
	for _, allowed := range enrollmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EnrollmentMetadata carries the known optional enrollment attributes plus a
// bounded extension map for caller-specific keys.
type EnrollmentMetadata struct {
	LeadID        *string           `db:"lead_id" json:"lead_id,omitempty"`
	PaymentMethod *string           `db:"payment_method" json:"payment_method,omitempty"`
	Notes         *string           `db:"notes" json:"notes,omitempty"`
	Extra         map[string]string `db:"extra" json:"extra,omitempty"`
}

// Enrollment captures a user's registration to a course run within a tenant.
type Enrollment struct {
	ID          string             `db:"id" json:"id"`
	TenantID    string             `db:"tenant_id" json:"tenant_id"`
	UserID      string             `db:"user_id" json:"user_id"`
	CourseRunID string             `db:"course_run_id" json:"course_run_id"`
	Status      EnrollmentStatus   `db:"status" json:"status"`
	Progress    int                `db:"progress" json:"progress"`
	EnrolledAt  time.Time          `db:"enrolled_at" json:"enrolled_at"`
	ExpiresAt   *time.Time         `db:"expires_at" json:"expires_at,omitempty"`
	Metadata    EnrollmentMetadata `db:"metadata" json:"metadata"`
}

// EnrollmentTransition records one applied status change together with the
// updated enrollment.
type EnrollmentTransition struct {
	Enrollment Enrollment       `json:"enrollment"`
	From       EnrollmentStatus `json:"from"`
	To         EnrollmentStatus `json:"to"`
	ActorID    string           `json:"actor_id"`
	Reason     *string          `json:"reason,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// GraduationRequirement is one named, independently evaluated condition.
type GraduationRequirement struct {
	Name   string `json:"name"`
	Met    bool   `json:"met"`
	Detail string `json:"detail"`
}

// GraduationCheck summarises all graduation requirements for an enrollment.
type GraduationCheck struct {
	CanGraduate  bool                    `json:"can_graduate"`
	Requirements []GraduationRequirement `json:"requirements"`
}

// EnrollmentEligibility is the structured admission decision. Rejections are
// expected outcomes, not errors.
type EnrollmentEligibility struct {
	CanEnroll bool   `json:"can_enroll"`
	Reason    string `json:"reason,omitempty"`
}
