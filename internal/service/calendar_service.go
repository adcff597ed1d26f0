package service

import (
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/akdemia/academy-ops/internal/models"
	"github.com/akdemia/academy-ops/pkg/config"
)

// CalendarService answers calendar queries over caller-supplied session
// collections and wraps the scheduling primitives with logging and metrics.
type CalendarService struct {
	cfg       config.CalendarConfig
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewCalendarService constructs the service.
func NewCalendarService(cfg config.CalendarConfig, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{cfg: cfg.Normalize(), validator: validate, logger: logger, metrics: metrics}
}

// Events filters sessions to the tenant, date window, optional course run and
// optional type set, sorted ascending by start time.
func (s *CalendarService) Events(sessions []models.Session, filter models.CalendarFilter) []models.Session {
	events := make([]models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.TenantID != filter.TenantID {
			continue
		}
		if session.StartTime.Before(filter.StartDate) || session.StartTime.After(filter.EndDate) {
			continue
		}
		if filter.CourseRunID != "" && session.CourseRunID != filter.CourseRunID {
			continue
		}
		if len(filter.Types) > 0 && !containsType(filter.Types, session.Type) {
			continue
		}
		events = append(events, session)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
	return events
}

// SessionsForDay returns a tenant's sessions starting within the UTC day.
func (s *CalendarService) SessionsForDay(sessions []models.Session, day time.Time, tenantID string) []models.Session {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return s.Events(sessions, models.CalendarFilter{
		TenantID:  tenantID,
		StartDate: dayStart,
		EndDate:   dayStart.Add(24*time.Hour - time.Nanosecond),
	})
}

// IsSessionOngoing reports whether the session covers the given instant. A
// zero now means current time.
func (s *CalendarService) IsSessionOngoing(session models.Session, now time.Time) bool {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return !now.Before(session.StartTime) && now.Before(session.EndTime)
}

// IsSessionUpcoming reports whether the session starts within the window. A
// non-positive withinMinutes selects the configured default; a zero now means
// current time.
func (s *CalendarService) IsSessionUpcoming(session models.Session, withinMinutes int, now time.Time) bool {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	if withinMinutes <= 0 {
		withinMinutes = s.cfg.UpcomingWindowMinutes
	}
	if session.StartTime.Before(now) {
		return false
	}
	return !session.StartTime.After(now.Add(time.Duration(withinMinutes) * time.Minute))
}

// SessionDuration returns the scheduled length in whole minutes.
func (s *CalendarService) SessionDuration(session models.Session) int {
	return int(session.EndTime.Sub(session.StartTime).Minutes())
}

// ValidateSession wraps ValidateSessionTimes with logging.
func (s *CalendarService) ValidateSession(session models.Session) models.SessionValidation {
	result := ValidateSessionTimes(session, time.Time{})
	if !result.Valid {
		s.logger.Debug("session time validation failed",
			zap.String("session_id", session.ID),
			zap.Strings("violations", result.Errors))
	}
	return result
}

// CheckConflicts wraps CheckSessionConflicts with logging and metrics.
func (s *CalendarService) CheckConflicts(candidate models.Session, existing []models.Session) []models.SessionConflict {
	conflicts := CheckSessionConflicts(candidate, existing)
	for _, conflict := range conflicts {
		s.metrics.ObserveSessionConflict(conflict.Dimension)
		s.logger.Info("session conflict detected",
			zap.String("session_id", candidate.ID),
			zap.String("conflicting_id", conflict.ConflictingID),
			zap.String("dimension", string(conflict.Dimension)))
	}
	return conflicts
}

// ExpandRecurring wraps GenerateRecurringSessions with metrics.
func (s *CalendarService) ExpandRecurring(base models.Session, pattern models.RecurrencePattern) ([]models.Session, error) {
	sessions, err := GenerateRecurringSessions(base, pattern)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRecurringGenerated(len(sessions))
	s.logger.Info("recurring sessions generated",
		zap.String("base_session_id", base.ID),
		zap.Int("count", len(sessions)))
	return sessions, nil
}

func containsType(types []models.SessionType, t models.SessionType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
