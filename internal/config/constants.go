package config

import "time"

// Application constants
const (
	AppName   = "reqcheck"
	AppVendor = "Serviço de Graduação"

	DefaultPort           = 8080
	DefaultRequestTimeout = 2 * time.Minute

	// Access gate
	DefaultSessionTTL     = 8 * time.Hour
	DefaultSessionCookie  = "reqcheck_session"
	DefaultLoginRate      = 0.2 // one attempt every five seconds
	DefaultLoginBurst     = 5
	DefaultMaxUploadBytes = 32 << 20

	// Report
	DefaultTopCourses      = 5
	DefaultMaxColumnWidth  = 50
	DefaultSheetName       = "Relatorio"
	DefaultFilePrefix      = "relatorio_historico_completo_"
	DefaultExportCacheSize = 16

	// API Endpoints
	APIBasePath     = "/api"
	HealthEndpoint  = "/api/health"
	MetricsEndpoint = "/metrics"
)
