package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope is what we store with every event.
type Envelope struct {
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web", "cli":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	return Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
}

// SourceEventKeyFromRequest returns the client-provided idempotency key, if any.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Event is one product event. Props must not contain raw user text.
type Event struct {
	Name      string
	Envelope  Envelope
	SourceKey string
	Props     map[string]any
}

// NewEvent fills the envelope and idempotency key from r.
func NewEvent(r *http.Request, name string, props map[string]any) Event {
	return Event{
		Name:      name,
		Envelope:  FromRequest(r),
		SourceKey: SourceEventKeyFromRequest(r),
		Props:     props,
	}
}

// Recorder stores events on a best-effort basis; it never fails the caller.
type Recorder interface {
	Record(ctx context.Context, ev Event)
}

type Nop struct{}

func (Nop) Record(context.Context, Event) {}

// LogRecorder writes events to the structured log.
type LogRecorder struct {
	Logger *zap.Logger
}

func (l LogRecorder) Record(_ context.Context, ev Event) {
	if ev.Name == "" {
		return
	}
	l.Logger.Info("analytics event",
		zap.String("event", ev.Name),
		zap.String("platform", ev.Envelope.Platform),
		zap.String("session_id", ev.Envelope.SessionID),
		zap.String("app_version", ev.Envelope.AppVersion),
		zap.Any("props", ev.Props),
	)
}

// SQLRecorder appends events to analytics_events. Events whose source key was
// already stored are dropped.
type SQLRecorder struct {
	DB     *sql.DB
	Driver string
	Logger *zap.Logger
	Now    func() time.Time
}

func (s SQLRecorder) Record(ctx context.Context, ev Event) {
	if ev.Name == "" {
		return
	}

	b, err := json.Marshal(ev.Props)
	if err != nil {
		s.Logger.Warn("analytics props not serializable", zap.String("event", ev.Name), zap.Error(err))
		return
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	query := `
		INSERT INTO analytics_events (
			id, event_name, event_time,
			session_id, platform, app_version, device_locale,
			source_event_key, properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (source_event_key) DO NOTHING
	`
	if s.Driver == "sqlite" {
		query = strings.ReplaceAll(query, "$", "?")
	}

	_, err = s.DB.ExecContext(ctx, query,
		uuid.NewString(), ev.Name, now().UTC(),
		nullIfEmpty(ev.Envelope.SessionID), ev.Envelope.Platform, ev.Envelope.AppVersion, nullIfEmpty(ev.Envelope.DeviceLocale),
		nullIfEmpty(ev.SourceKey), string(b),
	)
	if err != nil {
		s.Logger.Warn("analytics insert failed", zap.String("event", ev.Name), zap.Error(err))
	}
}

// New selects a recorder for sink ("log", "db" or "off").
func New(sink string, db *sql.DB, driver string, logger *zap.Logger) Recorder {
	switch sink {
	case "db":
		return SQLRecorder{DB: db, Driver: driver, Logger: logger}
	case "off":
		return Nop{}
	default:
		return LogRecorder{Logger: logger}
	}
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
