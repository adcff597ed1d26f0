package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env string

	Log        LogConfig
	Enrollment EnrollmentConfig
	Attendance AttendanceConfig
	Calendar   CalendarConfig
}

type LogConfig struct {
	Level  string
	Format string
}

// EnrollmentConfig carries per-instance enrollment policy. A deployment with
// divergent tenant policies constructs one service per tenant.
type EnrollmentConfig struct {
	MaxEnrollmentsPerUser int
	GraduationMinProgress int
}

// AttendanceConfig carries per-instance attendance policy.
type AttendanceConfig struct {
	LateThresholdMinutes    int
	MinAttendanceRate       int
	ModificationWindowHours int
	MinSampleSessions       int
}

// CalendarConfig carries per-instance calendar policy.
type CalendarConfig struct {
	UpcomingWindowMinutes int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Enrollment = EnrollmentConfig{
		MaxEnrollmentsPerUser: v.GetInt("ENROLLMENT_MAX_PER_USER"),
		GraduationMinProgress: v.GetInt("ENROLLMENT_GRADUATION_MIN_PROGRESS"),
	}

	cfg.Attendance = AttendanceConfig{
		LateThresholdMinutes:    v.GetInt("ATTENDANCE_LATE_THRESHOLD_MINUTES"),
		MinAttendanceRate:       v.GetInt("ATTENDANCE_MIN_RATE"),
		ModificationWindowHours: v.GetInt("ATTENDANCE_MODIFICATION_WINDOW_HOURS"),
		MinSampleSessions:       v.GetInt("ATTENDANCE_MIN_SAMPLE_SESSIONS"),
	}

	cfg.Calendar = CalendarConfig{
		UpcomingWindowMinutes: v.GetInt("CALENDAR_UPCOMING_WINDOW_MINUTES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENROLLMENT_MAX_PER_USER", DefaultMaxEnrollmentsPerUser)
	v.SetDefault("ENROLLMENT_GRADUATION_MIN_PROGRESS", DefaultGraduationMinProgress)

	v.SetDefault("ATTENDANCE_LATE_THRESHOLD_MINUTES", DefaultLateThresholdMinutes)
	v.SetDefault("ATTENDANCE_MIN_RATE", DefaultMinAttendanceRate)
	v.SetDefault("ATTENDANCE_MODIFICATION_WINDOW_HOURS", DefaultModificationWindowHours)
	v.SetDefault("ATTENDANCE_MIN_SAMPLE_SESSIONS", DefaultMinSampleSessions)

	v.SetDefault("CALENDAR_UPCOMING_WINDOW_MINUTES", DefaultUpcomingWindowMinutes)
}

// Policy defaults applied when a section field is zero.
const (
	DefaultMaxEnrollmentsPerUser   = 5
	DefaultGraduationMinProgress   = 80
	DefaultLateThresholdMinutes    = 15
	DefaultMinAttendanceRate       = 80
	DefaultModificationWindowHours = 48
	DefaultMinSampleSessions       = 3
	DefaultUpcomingWindowMinutes   = 30
)

// Normalize fills zero-valued fields with the documented defaults.
func (c EnrollmentConfig) Normalize() EnrollmentConfig {
	if c.MaxEnrollmentsPerUser <= 0 {
		c.MaxEnrollmentsPerUser = DefaultMaxEnrollmentsPerUser
	}
	if c.GraduationMinProgress <= 0 {
		c.GraduationMinProgress = DefaultGraduationMinProgress
	}
	return c
}

// Normalize fills zero-valued fields with the documented defaults.
func (c AttendanceConfig) Normalize() AttendanceConfig {
	if c.LateThresholdMinutes <= 0 {
		c.LateThresholdMinutes = DefaultLateThresholdMinutes
	}
	if c.MinAttendanceRate <= 0 {
		c.MinAttendanceRate = DefaultMinAttendanceRate
	}
	if c.ModificationWindowHours <= 0 {
		c.ModificationWindowHours = DefaultModificationWindowHours
	}
	if c.MinSampleSessions <= 0 {
		c.MinSampleSessions = DefaultMinSampleSessions
	}
	return c
}

// Normalize fills zero-valued fields with the documented defaults.
func (c CalendarConfig) Normalize() CalendarConfig {
	if c.UpcomingWindowMinutes <= 0 {
		c.UpcomingWindowMinutes = DefaultUpcomingWindowMinutes
	}
	return c
}

// LateThreshold returns the configured late threshold as a duration.
func (c AttendanceConfig) LateThreshold() time.Duration {
	return time.Duration(c.LateThresholdMinutes) * time.Minute
}

// ModificationWindow returns the configured modification window as a duration.
func (c AttendanceConfig) ModificationWindow() time.Duration {
	return time.Duration(c.ModificationWindowHours) * time.Hour
}
