package service

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/akdemia/academy-ops/internal/models"
	"github.com/akdemia/academy-ops/pkg/config"
)

func newCalendarService() *CalendarService {
	return NewCalendarService(config.CalendarConfig{}, validator.New(), zap.NewNop(), nil)
}

func TestCalendarEvents(t *testing.T) {
	svc := newCalendarService()
	week := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	later := scheduledSession("s-exam", week.Add(3*24*time.Hour), week.Add(3*24*time.Hour+2*time.Hour))
	later.Type = models.SessionTypeExam
	earlier := scheduledSession("s-class", week.Add(24*time.Hour+9*time.Hour), week.Add(24*time.Hour+11*time.Hour))
	otherTenant := scheduledSession("s-foreign", week.Add(24*time.Hour), week.Add(24*time.Hour+time.Hour))
	otherTenant.TenantID = "tenant-2"
	outOfRange := scheduledSession("s-past", week.Add(-24*time.Hour), week.Add(-22*time.Hour))
	otherRun := scheduledSession("s-other-run", week.Add(2*24*time.Hour), week.Add(2*24*time.Hour+time.Hour))
	otherRun.CourseRunID = "run-2"

	sessions := []models.Session{later, earlier, otherTenant, outOfRange, otherRun}

	events := svc.Events(sessions, models.CalendarFilter{
		TenantID:  "tenant-1",
		StartDate: week,
		EndDate:   week.Add(7 * 24 * time.Hour),
	})
	require.Len(t, events, 3)
	assert.Equal(t, "s-class", events[0].ID)
	assert.Equal(t, "s-other-run", events[1].ID)
	assert.Equal(t, "s-exam", events[2].ID)

	events = svc.Events(sessions, models.CalendarFilter{
		TenantID:    "tenant-1",
		StartDate:   week,
		EndDate:     week.Add(7 * 24 * time.Hour),
		CourseRunID: "run-1",
	})
	require.Len(t, events, 2)

	events = svc.Events(sessions, models.CalendarFilter{
		TenantID:  "tenant-1",
		StartDate: week,
		EndDate:   week.Add(7 * 24 * time.Hour),
		Types:     []models.SessionType{models.SessionTypeExam},
	})
	require.Len(t, events, 1)
	assert.Equal(t, "s-exam", events[0].ID)
}

func TestSessionsForDay(t *testing.T) {
	svc := newCalendarService()
	day := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)

	inDay := scheduledSession("s-in", day.Add(9*time.Hour), day.Add(11*time.Hour))
	nextDay := scheduledSession("s-next", day.Add(26*time.Hour), day.Add(28*time.Hour))

	sessions := svc.SessionsForDay([]models.Session{inDay, nextDay}, day.Add(13*time.Hour), "tenant-1")
	require.Len(t, sessions, 1)
	assert.Equal(t, "s-in", sessions[0].ID)
}

func TestIsSessionOngoing(t *testing.T) {
	svc := newCalendarService()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := scheduledSession("s1", start, start.Add(2*time.Hour))

	assert.False(t, svc.IsSessionOngoing(session, start.Add(-time.Minute)))
	assert.True(t, svc.IsSessionOngoing(session, start))
	assert.True(t, svc.IsSessionOngoing(session, start.Add(time.Hour)))
	assert.False(t, svc.IsSessionOngoing(session, start.Add(2*time.Hour)))
}

func TestIsSessionUpcoming(t *testing.T) {
	svc := newCalendarService()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	session := scheduledSession("s1", start, start.Add(time.Hour))

	assert.True(t, svc.IsSessionUpcoming(session, 60, start.Add(-30*time.Minute)))
	assert.False(t, svc.IsSessionUpcoming(session, 15, start.Add(-30*time.Minute)))
	assert.False(t, svc.IsSessionUpcoming(session, 60, start.Add(time.Minute)))
	// Zero window selects the configured default of 30 minutes.
	assert.True(t, svc.IsSessionUpcoming(session, 0, start.Add(-30*time.Minute)))
	assert.False(t, svc.IsSessionUpcoming(session, 0, start.Add(-31*time.Minute)))
}

func TestSessionDuration(t *testing.T) {
	svc := newCalendarService()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, 120, svc.SessionDuration(scheduledSession("s1", start, start.Add(2*time.Hour))))
	assert.Equal(t, 45, svc.SessionDuration(scheduledSession("s2", start, start.Add(45*time.Minute))))
}

func TestCalendarServiceWrappers(t *testing.T) {
	svc := NewCalendarService(config.CalendarConfig{}, validator.New(), zap.NewNop(), NewMetricsService())
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	candidate := scheduledSession("s-new", day.Add(10*time.Hour), day.Add(12*time.Hour))
	candidate.InstructorID = "instructor-1"
	existing := scheduledSession("s-old", day.Add(9*time.Hour), day.Add(11*time.Hour))
	existing.InstructorID = "instructor-1"

	conflicts := svc.CheckConflicts(candidate, []models.Session{existing})
	require.Len(t, conflicts, 1)

	validation := svc.ValidateSession(scheduledSession("s-bad", day.Add(2*time.Hour), day.Add(time.Hour)))
	assert.False(t, validation.Valid)

	sessions, err := svc.ExpandRecurring(candidate, models.RecurrencePattern{
		Frequency:   models.RecurrenceWeekly,
		Interval:    1,
		Occurrences: 2,
	})
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}
