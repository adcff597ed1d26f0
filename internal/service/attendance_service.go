package service

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akdemia/academy-ops/internal/models"
	"github.com/akdemia/academy-ops/pkg/config"
	appErrors "github.com/akdemia/academy-ops/pkg/errors"
)

// MarkAttendanceRequest describes payload for marking a single attendance.
type MarkAttendanceRequest struct {
	SessionID         string  `json:"session_id" validate:"required"`
	EnrollmentID      string  `json:"enrollment_id" validate:"required"`
	UserID            string  `json:"user_id" validate:"required"`
	TenantID          string  `json:"tenant_id" validate:"required"`
	Status            string  `json:"status" validate:"required,attendance_status"`
	MarkedBy          string  `json:"marked_by" validate:"required"`
	ExcuseReason      *string `json:"excuse_reason"`
	ExcuseDocumentURL *string `json:"excuse_document_url"`
}

// BatchAttendanceItem holds one entry of a batch mark.
type BatchAttendanceItem struct {
	EnrollmentID string `json:"enrollment_id" validate:"required"`
	UserID       string `json:"user_id" validate:"required"`
	Status       string `json:"status" validate:"required,attendance_status"`
}

// BatchMarkAttendanceRequest marks attendance for many enrollments of one
// session.
type BatchMarkAttendanceRequest struct {
	SessionID string                `json:"session_id" validate:"required"`
	TenantID  string                `json:"tenant_id" validate:"required"`
	MarkedBy  string                `json:"marked_by" validate:"required"`
	Items     []BatchAttendanceItem `json:"items" validate:"required,min=1,dive"`
}

// AttendanceReportRequest scopes report generation to a date range.
type AttendanceReportRequest struct {
	Attendances []models.Attendance `json:"attendances"`
	StartDate   time.Time           `json:"start_date"`
	EndDate     time.Time           `json:"end_date"`
}

// AttendanceService owns marking, status inference, aggregation and reporting
// over caller-supplied attendance collections.
type AttendanceService struct {
	cfg       config.AttendanceConfig
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(cfg config.AttendanceConfig, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{cfg: cfg.Normalize(), validator: validate, logger: logger, metrics: metrics}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		status := models.AttendanceStatus(strings.ToUpper(fl.Field().String()))
		return status.Valid()
	})
	return svc
}

// MarkAttendance builds one attendance record. CheckInTime is set only for
// PRESENT or LATE; excuse fields are kept only for EXCUSED.
func (s *AttendanceService) MarkAttendance(req MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	now := time.Now().UTC()
	status := models.AttendanceStatus(strings.ToUpper(req.Status))
	record := models.Attendance{
		ID:           uuid.NewString(),
		TenantID:     req.TenantID,
		SessionID:    req.SessionID,
		EnrollmentID: req.EnrollmentID,
		UserID:       req.UserID,
		Status:       status,
		MarkedBy:     req.MarkedBy,
		MarkedAt:     now,
	}
	if status.Attended() {
		checkIn := now
		record.CheckInTime = &checkIn
	}
	if status == models.AttendanceStatusExcused {
		record.ExcuseReason = req.ExcuseReason
		record.ExcuseDocumentURL = req.ExcuseDocumentURL
	}
	s.metrics.ObserveAttendanceMarked(status)
	s.logger.Debug("attendance marked",
		zap.String("session_id", record.SessionID),
		zap.String("enrollment_id", record.EnrollmentID),
		zap.String("status", string(status)))
	return &record, nil
}

// BatchMarkAttendance applies MarkAttendance semantics to every item of one
// session, preserving input order.
func (s *AttendanceService) BatchMarkAttendance(req BatchMarkAttendanceRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}
	seen := map[string]struct{}{}
	records := make([]models.Attendance, 0, len(req.Items))
	for _, item := range req.Items {
		key := fmt.Sprintf("%s|%s", item.EnrollmentID, req.SessionID)
		if _, ok := seen[key]; ok {
			return nil, appErrors.Clone(appErrors.ErrConflict, "duplicate enrollment in payload")
		}
		seen[key] = struct{}{}
		record, err := s.MarkAttendance(MarkAttendanceRequest{
			SessionID:    req.SessionID,
			EnrollmentID: item.EnrollmentID,
			UserID:       item.UserID,
			TenantID:     req.TenantID,
			Status:       item.Status,
			MarkedBy:     req.MarkedBy,
		})
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// DetermineStatus infers PRESENT or LATE from a check-in time. The late
// threshold boundary is inclusive and early arrivals are PRESENT.
func (s *AttendanceService) DetermineStatus(checkIn, sessionStart time.Time) models.AttendanceStatus {
	if checkIn.After(sessionStart.Add(s.cfg.LateThreshold())) {
		return models.AttendanceStatusLate
	}
	return models.AttendanceStatusPresent
}

// EnrollmentSummary aggregates the supplied records for one enrollment.
func (s *AttendanceService) EnrollmentSummary(attendances []models.Attendance) *models.AttendanceSummary {
	summary := &models.AttendanceSummary{TotalSessions: len(attendances)}
	for _, record := range attendances {
		switch record.Status {
		case models.AttendanceStatusPresent:
			summary.Attended++
		case models.AttendanceStatusLate:
			summary.Attended++
			summary.Late++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusExcused:
			summary.Excused++
		}
		if record.CheckInTime != nil && (summary.LastAttendance == nil || record.CheckInTime.After(*summary.LastAttendance)) {
			summary.LastAttendance = record.CheckInTime
		}
	}
	summary.AttendanceRate = ratePercent(summary.Attended, summary.TotalSessions)
	return summary
}

// SessionSummary aggregates the records belonging to one session.
func (s *AttendanceService) SessionSummary(attendances []models.Attendance, sessionID, title string) *models.SessionAttendanceSummary {
	summary := &models.SessionAttendanceSummary{SessionID: sessionID, Title: title}
	for _, record := range attendances {
		if record.SessionID != sessionID {
			continue
		}
		summary.TotalEnrolled++
		switch record.Status {
		case models.AttendanceStatusPresent:
			summary.Attended++
		case models.AttendanceStatusLate:
			summary.Attended++
			summary.Late++
		case models.AttendanceStatusAbsent:
			summary.Absent++
		case models.AttendanceStatusExcused:
			summary.Excused++
		case models.AttendanceStatusPending:
			summary.Pending++
		}
	}
	summary.AttendanceRate = ratePercent(summary.Attended, summary.TotalEnrolled)
	return summary
}

// MeetsAttendanceRequirement checks an enrollment's rate against a minimum.
// A non-positive minRate selects the configured default.
func (s *AttendanceService) MeetsAttendanceRequirement(attendances []models.Attendance, minRate int) *models.AttendanceRequirementResult {
	if minRate <= 0 {
		minRate = s.cfg.MinAttendanceRate
	}
	summary := s.EnrollmentSummary(attendances)
	return &models.AttendanceRequirementResult{
		Meets:    summary.AttendanceRate >= minRate,
		Rate:     summary.AttendanceRate,
		Required: minRate,
	}
}

// LowAttendanceStudents groups records by enrollment and returns those below
// the minimum rate, ascending by rate. Enrollments with fewer than the minimum
// sample of sessions are skipped to avoid false positives on thin samples.
func (s *AttendanceService) LowAttendanceStudents(attendances []models.Attendance) []models.LowAttendanceStudent {
	type bucket struct {
		total    int
		attended int
	}
	buckets := map[string]*bucket{}
	for _, record := range attendances {
		b := buckets[record.EnrollmentID]
		if b == nil {
			b = &bucket{}
			buckets[record.EnrollmentID] = b
		}
		b.total++
		if record.Status.Attended() {
			b.attended++
		}
	}
	var flagged []models.LowAttendanceStudent
	for enrollmentID, b := range buckets {
		if b.total < s.cfg.MinSampleSessions {
			continue
		}
		rate := ratePercent(b.attended, b.total)
		if rate >= s.cfg.MinAttendanceRate {
			continue
		}
		flagged = append(flagged, models.LowAttendanceStudent{
			EnrollmentID:  enrollmentID,
			TotalSessions: b.total,
			Attended:      b.attended,
			Rate:          rate,
		})
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].Rate != flagged[j].Rate {
			return flagged[i].Rate < flagged[j].Rate
		}
		return flagged[i].EnrollmentID < flagged[j].EnrollmentID
	})
	return flagged
}

// GenerateReport summarises records marked within [StartDate, EndDate].
func (s *AttendanceService) GenerateReport(req AttendanceReportRequest) *models.AttendanceReport {
	report := &models.AttendanceReport{StatusBreakdown: map[models.AttendanceStatus]int{}}
	sessions := map[string]struct{}{}
	total := 0
	attended := 0
	for _, record := range req.Attendances {
		if record.MarkedAt.Before(req.StartDate) || record.MarkedAt.After(req.EndDate) {
			continue
		}
		sessions[record.SessionID] = struct{}{}
		report.StatusBreakdown[record.Status]++
		total++
		if record.Status.Attended() {
			attended++
		}
	}
	report.TotalSessions = len(sessions)
	if total > 0 {
		report.AverageAttendanceRate = float64(attended) / float64(total) * 100
	}
	return report
}

// CanModifyAttendance reports whether a record is still inside the
// modification window measured from session end. A non-positive windowHours
// selects the default.
func CanModifyAttendance(_ models.Attendance, sessionEnd time.Time, windowHours int) bool {
	if windowHours <= 0 {
		windowHours = config.DefaultModificationWindowHours
	}
	return time.Now().UTC().Sub(sessionEnd) <= time.Duration(windowHours)*time.Hour
}

// AttendanceDuration derives how long the user stayed: check-out minus
// check-in when both exist, session end minus check-in otherwise, zero when
// there was no check-in.
func AttendanceDuration(attendance models.Attendance, sessionEnd time.Time) time.Duration {
	if attendance.CheckInTime == nil {
		return 0
	}
	if attendance.CheckOutTime != nil {
		return attendance.CheckOutTime.Sub(*attendance.CheckInTime)
	}
	return sessionEnd.Sub(*attendance.CheckInTime)
}

func ratePercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
