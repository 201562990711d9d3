package http

import (
	"context"
	"time"

	"reqcheck/internal/auth"
	"reqcheck/internal/exporter"
	"reqcheck/internal/reconcile"
	"reqcheck/internal/services"
	"reqcheck/internal/table"
)

// ReportService generates and exports reports.
type ReportService interface {
	Generate(ctx context.Context, req services.GenerateRequest) (*reconcile.Result, error)
	Export(ctx context.Context, joined *table.Table, format exporter.Format) (*exporter.Artifact, error)
}

// SessionManager is the session store used by the handlers.
type SessionManager interface {
	Create() auth.Session
	Get(id string) (auth.Session, error)
	Delete(id string)
	UpdatePreferences(id string, prefs auth.Preferences) (auth.Session, error)
	SetReport(id string, report *auth.StoredReport) error
	TTL() time.Duration
}

// PasswordChecker verifies the shared access password.
type PasswordChecker interface {
	Check(client, password string) error
}

// LoginRecorder counts login attempts by result.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, result string)
}
