package constants

// Context keys shared between middleware and handlers
const (
	ContextKeyUserID       = "user_id"
	ContextKeyOrganization = "organization"
	ContextKeyTeamMember   = "team_member"
)

// Session
const (
	SessionCookieName = "rota_session"
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Rostering defaults
const (
	// DefaultRegularHoursThreshold is the daily regular-hours cap applied when an
	// organization has not configured its own.
	DefaultRegularHoursThreshold = 8.0

	// MaxReportingLineDepth bounds the upward walk over management-chain edges so a
	// malformed (cyclic) chain cannot recurse forever.
	MaxReportingLineDepth = 16
)
