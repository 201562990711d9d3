// Package http implements the HTTP handlers of the reqcheck API. Handlers are
// thin: they decode and validate the request, call a service and render the
// result, leaving every failure to the central apierrors.ErrorHandler so all
// errors leave the server as RFC 7807 problem details.
//
// # Routes
//
//	POST /api/auth/login               AuthHandler.Login
//	POST /api/auth/logout              AuthHandler.Logout
//	GET  /api/session                  SessionHandler.Get
//	PUT  /api/session/preferences      SessionHandler.UpdatePreferences
//	POST /api/reports                  ReportHandler.Create
//	GET  /api/reports/latest/export    ReportHandler.Export
//	GET  /api/health, /api/health/live HealthHandler
//	GET  /api/version                  HealthHandler.Version
//
// Session and report routes expect middleware.SessionGuard in front of them;
// the handlers read the session with middleware.SessionFromContext.
package http
