package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akdemia/academy-ops/internal/models"
)

func scheduledSession(id string, start, end time.Time) models.Session {
	return models.Session{
		ID:          id,
		TenantID:    "tenant-1",
		CourseRunID: "run-1",
		Title:       "Clase",
		Type:        models.SessionTypeClass,
		StartTime:   start,
		EndTime:     end,
	}
}

func TestValidateSessionTimes(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	session := scheduledSession("s1", now.Add(time.Hour), now.Add(3*time.Hour))

	result := ValidateSessionTimes(session, now)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateSessionTimesCollectsAllViolations(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	session := scheduledSession("s1", now.Add(-2*time.Hour), now.Add(-3*time.Hour))

	result := ValidateSessionTimes(session, now)
	assert.False(t, result.Valid)
	// End before start plus start in the past.
	assert.Len(t, result.Errors, 2)
}

func TestValidateSessionTimesDurationBounds(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	short := scheduledSession("s1", now.Add(time.Hour), now.Add(time.Hour+10*time.Minute))
	result := ValidateSessionTimes(short, now)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "15 minutes")

	long := scheduledSession("s2", now.Add(time.Hour), now.Add(10*time.Hour))
	result = ValidateSessionTimes(long, now)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "8 hours")

	// Boundary durations are accepted.
	exact := scheduledSession("s3", now.Add(time.Hour), now.Add(time.Hour+MinSessionDuration))
	assert.True(t, ValidateSessionTimes(exact, now).Valid)
	exact = scheduledSession("s4", now.Add(time.Hour), now.Add(time.Hour+MaxSessionDuration))
	assert.True(t, ValidateSessionTimes(exact, now).Valid)
}

func TestValidateSessionTimesIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	session := scheduledSession("s1", now.Add(-time.Hour), now.Add(time.Hour))

	first := ValidateSessionTimes(session, now)
	second := ValidateSessionTimes(session, now)
	assert.Equal(t, first, second)
}

func TestCheckSessionConflictsInstructor(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	candidate := scheduledSession("s-new", day.Add(10*time.Hour), day.Add(12*time.Hour))
	candidate.InstructorID = "instructor-1"
	existing := scheduledSession("s-old", day.Add(9*time.Hour), day.Add(11*time.Hour))
	existing.InstructorID = "instructor-1"

	conflicts := CheckSessionConflicts(candidate, []models.Session{existing})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictDimensionInstructor, conflicts[0].Dimension)
	assert.Equal(t, "s-old", conflicts[0].ConflictingID)

	// Same sessions without overlap: no conflict.
	candidate.StartTime = day.Add(14 * time.Hour)
	candidate.EndTime = day.Add(16 * time.Hour)
	assert.Empty(t, CheckSessionConflicts(candidate, []models.Session{existing}))
}

func TestCheckSessionConflictsRoom(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	candidate := scheduledSession("s-new", day.Add(10*time.Hour), day.Add(12*time.Hour))
	candidate.CenterID = "center-1"
	candidate.Room = "aula-2"
	existing := scheduledSession("s-old", day.Add(11*time.Hour), day.Add(13*time.Hour))
	existing.CenterID = "center-1"
	existing.Room = "aula-2"

	conflicts := CheckSessionConflicts(candidate, []models.Session{existing})
	require.Len(t, conflicts, 1)
	assert.Equal(t, models.ConflictDimensionRoom, conflicts[0].Dimension)

	// An online session does not occupy the room.
	existing.IsOnline = true
	assert.Empty(t, CheckSessionConflicts(candidate, []models.Session{existing}))
}

func TestCheckSessionConflictsSkipsSelfAndBlanks(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	candidate := scheduledSession("s1", day.Add(10*time.Hour), day.Add(12*time.Hour))
	candidate.InstructorID = "instructor-1"

	// Same id is the session being rescheduled, not a conflict.
	self := candidate
	assert.Empty(t, CheckSessionConflicts(candidate, []models.Session{self}))

	// Sessions without instructor or room assignments never conflict.
	unassigned := scheduledSession("s2", day.Add(10*time.Hour), day.Add(12*time.Hour))
	blank := candidate
	blank.InstructorID = ""
	assert.Empty(t, CheckSessionConflicts(blank, []models.Session{unassigned}))
}

func TestCheckSessionConflictsBothDimensions(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	candidate := scheduledSession("s-new", day.Add(10*time.Hour), day.Add(12*time.Hour))
	candidate.InstructorID = "instructor-1"
	candidate.CenterID = "center-1"
	candidate.Room = "aula-2"
	existing := scheduledSession("s-old", day.Add(11*time.Hour), day.Add(13*time.Hour))
	existing.InstructorID = "instructor-1"
	existing.CenterID = "center-1"
	existing.Room = "aula-2"

	conflicts := CheckSessionConflicts(candidate, []models.Session{existing})
	require.Len(t, conflicts, 2)
	assert.Equal(t, models.ConflictDimensionInstructor, conflicts[0].Dimension)
	assert.Equal(t, models.ConflictDimensionRoom, conflicts[1].Dimension)
}

func TestGenerateRecurringSessionsWeekly(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	base := scheduledSession("s-base", start, start.Add(2*time.Hour))

	sessions, err := GenerateRecurringSessions(base, models.RecurrencePattern{
		Frequency:   models.RecurrenceWeekly,
		Interval:    1,
		Occurrences: 4,
	})
	require.NoError(t, err)
	require.Len(t, sessions, 4)
	for i, session := range sessions {
		assert.Equal(t, 2*time.Hour, session.EndTime.Sub(session.StartTime))
		assert.NotEqual(t, base.ID, session.ID)
		assert.Equal(t, "s-base", session.Metadata["series_id"])
		if i > 0 {
			delta := session.StartTime.Sub(sessions[i-1].StartTime)
			assert.Equal(t, 7*24*time.Hour, delta)
		}
	}
	assert.True(t, sessions[0].StartTime.Equal(start))
}

func TestGenerateRecurringSessionsBiweeklyInterval(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	base := scheduledSession("s-base", start, start.Add(time.Hour))

	sessions, err := GenerateRecurringSessions(base, models.RecurrencePattern{
		Frequency:   models.RecurrenceBiweekly,
		Interval:    2,
		Occurrences: 3,
	})
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, 28*24*time.Hour, sessions[1].StartTime.Sub(sessions[0].StartTime))
}

func TestGenerateRecurringSessionsEndDateCeiling(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	base := scheduledSession("s-base", start, start.Add(time.Hour))
	endDate := start.Add(15 * 24 * time.Hour)

	sessions, err := GenerateRecurringSessions(base, models.RecurrencePattern{
		Frequency:   models.RecurrenceWeekly,
		Interval:    1,
		Occurrences: 10,
		EndDate:     &endDate,
	})
	require.NoError(t, err)
	// Weeks 0, 1 and 2 fit inside the ceiling; week 3 would pass it.
	require.Len(t, sessions, 3)
	assert.False(t, sessions[2].StartTime.After(endDate))
}

func TestGenerateRecurringSessionsInvalidPattern(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	base := scheduledSession("s-base", start, start.Add(time.Hour))

	_, err := GenerateRecurringSessions(base, models.RecurrencePattern{Frequency: "MONTHLY", Occurrences: 2})
	require.Error(t, err)

	_, err = GenerateRecurringSessions(base, models.RecurrencePattern{Frequency: models.RecurrenceWeekly})
	require.Error(t, err)
}
