package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/akdemia/academy-ops/internal/models"
	appErrors "github.com/akdemia/academy-ops/pkg/errors"
)

// Session duration bounds enforced by ValidateSessionTimes.
const (
	MinSessionDuration = 15 * time.Minute
	MaxSessionDuration = 8 * time.Hour
)

// ValidateSessionTimes checks a session's time window and collects every
// violation instead of stopping at the first. A zero now means current time.
// It never fails: violations come back as a structured result.
func ValidateSessionTimes(session models.Session, now time.Time) models.SessionValidation {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	var violations []string
	if !session.EndTime.After(session.StartTime) {
		violations = append(violations, "end time must be after start time")
	} else {
		duration := session.EndTime.Sub(session.StartTime)
		if duration < MinSessionDuration {
			violations = append(violations, fmt.Sprintf("session must last at least %d minutes", int(MinSessionDuration.Minutes())))
		}
		if duration > MaxSessionDuration {
			violations = append(violations, fmt.Sprintf("session must not exceed %d hours", int(MaxSessionDuration.Hours())))
		}
	}
	if session.StartTime.Before(now) {
		violations = append(violations, "start time must not be in the past")
	}
	return models.SessionValidation{Valid: len(violations) == 0, Errors: violations}
}

// intervalsOverlap tests [startA, endA) against [startB, endB).
func intervalsOverlap(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// CheckSessionConflicts compares a candidate against existing sessions on two
// independent resource dimensions: instructor, and center room for in-person
// sessions. An empty result means no conflict; the function never fails so the
// caller decides whether to block or warn.
func CheckSessionConflicts(candidate models.Session, existing []models.Session) []models.SessionConflict {
	var conflicts []models.SessionConflict
	for _, other := range existing {
		if other.ID == candidate.ID {
			continue
		}
		if !intervalsOverlap(candidate.StartTime, candidate.EndTime, other.StartTime, other.EndTime) {
			continue
		}
		if candidate.InstructorID != "" && candidate.InstructorID == other.InstructorID {
			conflicts = append(conflicts, models.SessionConflict{
				Dimension:     models.ConflictDimensionInstructor,
				SessionID:     candidate.ID,
				ConflictingID: other.ID,
				Message:       fmt.Sprintf("instructor %s already has a session in this interval", candidate.InstructorID),
			})
		}
		if !candidate.IsOnline && !other.IsOnline &&
			candidate.CenterID != "" && candidate.CenterID == other.CenterID &&
			candidate.Room != "" && candidate.Room == other.Room {
			conflicts = append(conflicts, models.SessionConflict{
				Dimension:     models.ConflictDimensionRoom,
				SessionID:     candidate.ID,
				ConflictingID: other.ID,
				Message:       fmt.Sprintf("room %s at center %s is already booked in this interval", candidate.Room, candidate.CenterID),
			})
		}
	}
	return conflicts
}

// GenerateRecurringSessions expands a base session into a series. Each
// instance keeps the base duration; the step is seven or fourteen days times
// the interval. Generation stops at the occurrence budget or at the first
// instance whose start would pass the pattern end date, whichever comes first.
func GenerateRecurringSessions(base models.Session, pattern models.RecurrencePattern) ([]models.Session, error) {
	if !pattern.Frequency.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported recurrence frequency %q", pattern.Frequency))
	}
	if pattern.Occurrences < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "occurrences must be at least 1")
	}
	interval := pattern.Interval
	if interval < 1 {
		interval = 1
	}
	stepDays := 7
	if pattern.Frequency == models.RecurrenceBiweekly {
		stepDays = 14
	}
	step := time.Duration(stepDays*interval) * 24 * time.Hour
	duration := base.EndTime.Sub(base.StartTime)

	sessions := make([]models.Session, 0, pattern.Occurrences)
	start := base.StartTime
	for i := 0; i < pattern.Occurrences; i++ {
		if pattern.EndDate != nil && start.After(*pattern.EndDate) {
			break
		}
		instance := base
		instance.ID = uuid.NewString()
		instance.StartTime = start
		instance.EndTime = start.Add(duration)
		instance.Metadata = cloneMetadata(base.Metadata)
		instance.Metadata["occurrence"] = fmt.Sprintf("%d", i+1)
		if base.ID != "" {
			instance.Metadata["series_id"] = base.ID
		}
		sessions = append(sessions, instance)
		start = start.Add(step)
	}
	return sessions, nil
}

func cloneMetadata(metadata map[string]string) map[string]string {
	clone := make(map[string]string, len(metadata)+2)
	for key, value := range metadata {
		clone[key] = value
	}
	return clone
}
