// Package config loads the reqcheck configuration.
//
// # Configuration Sources
//
// Values are resolved in the following order, later sources winning:
//
//	1. Default() values
//	2. A YAML file: $REQCHECK_CONFIG, reqcheck.yaml or configs/reqcheck.yaml
//	3. Environment variables with the REQCHECK_ prefix
//
// # Environment Variables
//
// Variables follow the struct layout, for example:
//
//	REQCHECK_SERVER_PORT=8080
//	REQCHECK_SECURITY_PASSWORD_HASH='$2a$10$...'
//	REQCHECK_SECURITY_SESSION_TTL=8h
//	REQCHECK_LOGGING_LEVEL=debug
//	REQCHECK_REPORT_EXPORT_FORMAT=csv
//	REQCHECK_REPORT_PERIOD_ORDER=lexicographic
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags and
// reports the first offending field.
package config
