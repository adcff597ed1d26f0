package service

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/akdemia/academy-ops/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for the academic
// operations services. All observers are nil-safe so wiring is optional.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	enrollmentsCreated    prometheus.Counter
	enrollmentTransitions *prometheus.CounterVec
	attendanceMarked      *prometheus.CounterVec
	sessionConflicts      *prometheus.CounterVec
	recurringGenerated    prometheus.Counter
}

// NewMetricsService registers the domain collectors on an isolated registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	enrollmentsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "academy_enrollments_created_total",
		Help: "Total enrollments created",
	})

	enrollmentTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_enrollment_transitions_total",
		Help: "Total enrollment status transitions",
	}, []string{"from", "to"})

	attendanceMarked := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_attendance_marked_total",
		Help: "Total attendance records marked",
	}, []string{"status"})

	sessionConflicts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "academy_session_conflicts_total",
		Help: "Total session conflicts detected",
	}, []string{"dimension"})

	recurringGenerated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "academy_recurring_sessions_generated_total",
		Help: "Total sessions produced by recurrence expansion",
	})

	registry.MustRegister(enrollmentsCreated, enrollmentTransitions, attendanceMarked, sessionConflicts, recurringGenerated)

	return &MetricsService{
		registry:              registry,
		handler:               promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		enrollmentsCreated:    enrollmentsCreated,
		enrollmentTransitions: enrollmentTransitions,
		attendanceMarked:      attendanceMarked,
		sessionConflicts:      sessionConflicts,
		recurringGenerated:    recurringGenerated,
	}
}

// Handler exposes the registry for the owning application to mount.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return m.handler
}

// ObserveEnrollmentCreated counts one created enrollment.
func (m *MetricsService) ObserveEnrollmentCreated() {
	if m == nil {
		return
	}
	m.enrollmentsCreated.Inc()
}

// ObserveEnrollmentTransition counts one applied status transition.
func (m *MetricsService) ObserveEnrollmentTransition(from, to models.EnrollmentStatus) {
	if m == nil {
		return
	}
	m.enrollmentTransitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveAttendanceMarked counts one marked attendance record.
func (m *MetricsService) ObserveAttendanceMarked(status models.AttendanceStatus) {
	if m == nil {
		return
	}
	m.attendanceMarked.WithLabelValues(string(status)).Inc()
}

// ObserveSessionConflict counts one detected conflict.
func (m *MetricsService) ObserveSessionConflict(dimension models.ConflictDimension) {
	if m == nil {
		return
	}
	m.sessionConflicts.WithLabelValues(string(dimension)).Inc()
}

// ObserveRecurringGenerated counts sessions produced by one expansion.
func (m *MetricsService) ObserveRecurringGenerated(count int) {
	if m == nil {
		return
	}
	m.recurringGenerated.Add(float64(count))
}
