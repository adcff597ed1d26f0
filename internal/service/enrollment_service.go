package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akdemia/academy-ops/internal/models"
	"github.com/akdemia/academy-ops/pkg/config"
	appErrors "github.com/akdemia/academy-ops/pkg/errors"
)

// EnrollmentHooks receives enrollment lifecycle events after the in-memory
// transition is computed. Implementations are best-effort: failures are logged
// and never rolled back.
type EnrollmentHooks interface {
	OnEnrollmentCreated(ctx context.Context, enrollment *models.Enrollment) error
	OnStatusChanged(ctx context.Context, transition *models.EnrollmentTransition) error
	OnGraduation(ctx context.Context, enrollment *models.Enrollment) error
}

// CreateEnrollmentRequest describes enrollment creation payload.
type CreateEnrollmentRequest struct {
	TenantID      string     `json:"tenant_id" validate:"required"`
	UserID        string     `json:"user_id" validate:"required"`
	CourseRunID   string     `json:"course_run_id" validate:"required"`
	PaymentMethod *string    `json:"payment_method"`
	LeadID        *string    `json:"lead_id"`
	Notes         *string    `json:"notes"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

// ProgressInput holds the raw counters for weighted progress computation.
type ProgressInput struct {
	CompletedLessons     int     `json:"completed_lessons"`
	TotalLessons         int     `json:"total_lessons"`
	CompletedAssignments int     `json:"completed_assignments"`
	TotalAssignments     int     `json:"total_assignments"`
	AttendanceRate       float64 `json:"attendance_rate"`
}

// EligibilityRequest describes an admission probe for one user/course-run pair.
type EligibilityRequest struct {
	UserID                 string              `json:"user_id" validate:"required"`
	CourseRunID            string              `json:"course_run_id" validate:"required"`
	Existing               []models.Enrollment `json:"existing"`
	CourseRunCapacity      int                 `json:"course_run_capacity"`
	CurrentEnrollmentCount int                 `json:"current_enrollment_count"`
}

// EnrollmentService owns the enrollment state machine, progress scoring,
// graduation checks and admission rules. Entities are passed and returned by
// value; persistence belongs to the caller.
type EnrollmentService struct {
	hooks     EnrollmentHooks
	cfg       config.EnrollmentConfig
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
}

// NewEnrollmentService constructs EnrollmentService. A nil hooks collaborator
// disables event dispatch.
func NewEnrollmentService(hooks EnrollmentHooks, cfg config.EnrollmentConfig, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{hooks: hooks, cfg: cfg.Normalize(), validator: validate, logger: logger, metrics: metrics}
}

// CreateEnrollment registers a user to a course run in PENDING state.
func (s *EnrollmentService) CreateEnrollment(ctx context.Context, req CreateEnrollmentRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	enrollment := models.Enrollment{
		ID:          uuid.NewString(),
		TenantID:    req.TenantID,
		UserID:      req.UserID,
		CourseRunID: req.CourseRunID,
		Status:      models.EnrollmentStatusPending,
		Progress:    0,
		EnrolledAt:  time.Now().UTC(),
		ExpiresAt:   req.ExpiresAt,
		Metadata: models.EnrollmentMetadata{
			LeadID:        req.LeadID,
			PaymentMethod: req.PaymentMethod,
			Notes:         req.Notes,
		},
	}
	s.metrics.ObserveEnrollmentCreated()
	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("tenant_id", enrollment.TenantID),
		zap.String("course_run_id", enrollment.CourseRunID))
	if s.hooks != nil {
		if err := s.hooks.OnEnrollmentCreated(ctx, &enrollment); err != nil {
			s.logger.Warn("enrollment created hook failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		}
	}
	return &enrollment, nil
}

// Activate moves a PENDING enrollment to ACTIVE.
func (s *EnrollmentService) Activate(ctx context.Context, enrollment models.Enrollment, actorID string) (*models.EnrollmentTransition, error) {
	return s.transition(ctx, enrollment, models.EnrollmentStatusActive, actorID, nil)
}

// Complete graduates an ACTIVE enrollment once all requirements hold.
func (s *EnrollmentService) Complete(ctx context.Context, enrollment models.Enrollment, actorID string) (*models.EnrollmentTransition, error) {
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, s.invalidTransition(enrollment.Status, models.EnrollmentStatusCompleted)
	}
	check := s.CheckGraduationRequirements(enrollment)
	if !check.CanGraduate {
		return nil, appErrors.Clone(appErrors.ErrGraduationUnmet, "")
	}
	transition, err := s.transition(ctx, enrollment, models.EnrollmentStatusCompleted, actorID, nil)
	if err != nil {
		return nil, err
	}
	if s.hooks != nil {
		if err := s.hooks.OnGraduation(ctx, &transition.Enrollment); err != nil {
			s.logger.Warn("graduation hook failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		}
	}
	return transition, nil
}

// Withdraw removes the user from the course run. Allowed from PENDING or
// ACTIVE.
func (s *EnrollmentService) Withdraw(ctx context.Context, enrollment models.Enrollment, actorID, reason string) (*models.EnrollmentTransition, error) {
	return s.transition(ctx, enrollment, models.EnrollmentStatusWithdrawn, actorID, optionalReason(reason))
}

// Fail marks an ACTIVE enrollment as failed.
func (s *EnrollmentService) Fail(ctx context.Context, enrollment models.Enrollment, actorID, reason string) (*models.EnrollmentTransition, error) {
	return s.transition(ctx, enrollment, models.EnrollmentStatusFailed, actorID, optionalReason(reason))
}

// CheckGraduationRequirements evaluates every named requirement independently
// and reports them all.
func (s *EnrollmentService) CheckGraduationRequirements(enrollment models.Enrollment) *models.GraduationCheck {
	now := time.Now().UTC()
	requirements := []models.GraduationRequirement{
		{
			Name:   "status",
			Met:    enrollment.Status == models.EnrollmentStatusActive,
			Detail: fmt.Sprintf("status is %s, must be %s", enrollment.Status, models.EnrollmentStatusActive),
		},
		{
			Name:   "progress",
			Met:    enrollment.Progress >= s.cfg.GraduationMinProgress,
			Detail: fmt.Sprintf("progress is %d, minimum is %d", enrollment.Progress, s.cfg.GraduationMinProgress),
		},
		{
			Name:   "expiry",
			Met:    enrollment.ExpiresAt == nil || enrollment.ExpiresAt.After(now),
			Detail: "enrollment must not be expired",
		},
	}
	check := &models.GraduationCheck{CanGraduate: true, Requirements: requirements}
	for _, requirement := range requirements {
		if !requirement.Met {
			check.CanGraduate = false
			break
		}
	}
	return check
}

// CalculateProgress computes the weighted 0-100 progress score: lessons up to
// 50 points, assignments up to 30, attendance up to 20.
func (s *EnrollmentService) CalculateProgress(input ProgressInput) int {
	var score float64
	if input.TotalLessons > 0 {
		score += float64(input.CompletedLessons) / float64(input.TotalLessons) * 50
	}
	if input.TotalAssignments > 0 {
		score += float64(input.CompletedAssignments) / float64(input.TotalAssignments) * 30
	}
	score += input.AttendanceRate / 100 * 20
	result := int(math.Round(score))
	if result > 100 {
		result = 100
	}
	if result < 0 {
		result = 0
	}
	return result
}

// CanEnroll probes the admission rules for a user/course-run pair. The
// decision is returned structured, never as an error.
func (s *EnrollmentService) CanEnroll(req EligibilityRequest) *models.EnrollmentEligibility {
	activeForUser := 0
	for _, existing := range req.Existing {
		if existing.UserID != req.UserID {
			continue
		}
		switch existing.Status {
		case models.EnrollmentStatusPending, models.EnrollmentStatusActive:
			activeForUser++
		}
		if existing.CourseRunID != req.CourseRunID {
			continue
		}
		if existing.Status != models.EnrollmentStatusWithdrawn && existing.Status != models.EnrollmentStatusFailed {
			return &models.EnrollmentEligibility{CanEnroll: false, Reason: "Ya está matriculado en este curso"}
		}
	}
	if activeForUser >= s.cfg.MaxEnrollmentsPerUser {
		return &models.EnrollmentEligibility{CanEnroll: false, Reason: "Límite de matrículas activas alcanzado"}
	}
	if req.CourseRunCapacity > 0 && req.CurrentEnrollmentCount >= req.CourseRunCapacity {
		return &models.EnrollmentEligibility{CanEnroll: false, Reason: "La convocatoria está completa"}
	}
	return &models.EnrollmentEligibility{CanEnroll: true}
}

func (s *EnrollmentService) transition(ctx context.Context, enrollment models.Enrollment, to models.EnrollmentStatus, actorID string, reason *string) (*models.EnrollmentTransition, error) {
	from := enrollment.Status
	if !models.IsValidEnrollmentTransition(from, to) {
		return nil, s.invalidTransition(from, to)
	}
	enrollment.Status = to
	transition := &models.EnrollmentTransition{
		Enrollment: enrollment,
		From:       from,
		To:         to,
		ActorID:    actorID,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	s.metrics.ObserveEnrollmentTransition(from, to)
	s.logger.Info("enrollment status changed",
		zap.String("enrollment_id", enrollment.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.String("actor_id", actorID))
	if s.hooks != nil {
		if err := s.hooks.OnStatusChanged(ctx, transition); err != nil {
			s.logger.Warn("status changed hook failed", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		}
	}
	return transition, nil
}

func (s *EnrollmentService) invalidTransition(from, to models.EnrollmentStatus) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("transition %s -> %s is not allowed", from, to))
}

func optionalReason(reason string) *string {
	if reason == "" {
		return nil
	}
	return &reason
}
