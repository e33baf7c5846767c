package clients

import "github.com/zeebo/errs"

// Error classes shared by every provider client and the pipeline built on top of them.
var (
	// NetworkError covers timeouts, connection failures and non-2xx responses
	NetworkError = errs.Class("network")
	// ParseError covers malformed HTML/JSON/RSS and missing expected fields
	ParseError = errs.Class("parse")
	// ValidationError is raised when a standings table breaks a schema invariant
	ValidationError = errs.Class("validation")
	// RateLimitExceeded is local: the limiter gave up waiting for a token
	RateLimitExceeded = errs.Class("rate limit exceeded")
)
