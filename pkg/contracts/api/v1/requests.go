// Package api contains the request and response bodies of the reqcheck HTTP API.
package api

import (
	"time"

	"reqcheck/pkg/contracts/domain"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=256"`
}

// PreferencesRequest is the body of PUT /api/session/preferences.
type PreferencesRequest struct {
	ExportFormat string `json:"export_format" validate:"required,oneof=xlsx csv"`
	ShowDebug    *bool  `json:"show_debug" validate:"required"`
}

// ExportRequest holds the query parameters of the export download.
type ExportRequest struct {
	Format string `query:"format" validate:"omitempty,oneof=xlsx csv"`
}

// SessionResponse describes the caller's session.
type SessionResponse struct {
	ID           string    `json:"id"`
	ExpiresAt    time.Time `json:"expires_at"`
	ExportFormat string    `json:"export_format"`
	ShowDebug    bool      `json:"show_debug"`
	HasReport    bool      `json:"has_report"`
}

// ReportResponse wraps a report together with the joined rows.
type ReportResponse struct {
	*domain.Report
	Rows [][]string `json:"rows"`
}
