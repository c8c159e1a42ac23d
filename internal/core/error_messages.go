// Error codes reference
//
// Errors shown to site visitors and CLI users carry a short code so that a
// reported problem can be traced back to its cause:
//
// # Sheet URL Errors (URL001-URL099)
//
//	URL001 - Missing sheet: No Site sheet URL or ID was given
//	         Action: Set SITE_SHEET_URL or siteSheetCsv in the site config file
//	         Patterns: "sheet url or id is required", "no site sheet configured"
//
//	URL002 - Placeholder sheet: The sample placeholder ID is still configured
//	         Action: Replace SET_YOUR_SITE_SHEET_ID_HERE with your sheet ID or URL
//	         Patterns: "set_your_site_sheet_id_here"
//
//	URL003 - Invalid sheet: The sheet reference is not a recognised URL or ID
//	         Action: Paste the sheet's browser URL or its bare ID
//	         Patterns: "invalid sheet url"
//
// # Fetch Errors (FETCH001-FETCH099)
//
//	FETCH001 - Fetch failed: The spreadsheet export answered with an error status
//	           Action: Check the sheet is shared or published to the web
//	           Patterns: "csv fetch failed ("
//
//	FETCH002 - Too large: The sheet export exceeds the configured size limit
//	           Action: Raise FETCH_MAX_BODY_SIZE or trim the sheet
//	           Patterns: "response body too large"
//
//	FETCH003 - Unreachable: The spreadsheet service could not be reached in time
//	           Action: Check the network connection and try again
//	           Patterns: "deadline exceeded", "timeout", "no such host",
//	                     "connection refused", "csv fetch failed"
//
// # Site Sheet Errors (SITE001-SITE099)
//
//	SITE001 - No pages sheet: The Site sheet does not point at a Pages sheet
//	          Action: Add a webpages_csv_url column to the Site sheet
//	          Patterns: "webpages_csv_url"
//
//	SITE002 - Not loaded: The site has not been loaded yet
//	          Action: Wait for the first load to finish and reload the page
//	          Patterns: "site not loaded"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again later
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgMissingSheet = UserMessage{
		Message: "No Site sheet is configured",
		Action:  "Set SITE_SHEET_URL or siteSheetCsv in the site config file",
		Code:    "URL001",
	}
	msgUnreachable = UserMessage{
		Message: "The spreadsheet service could not be reached",
		Action:  "Check the network connection and try again",
		Code:    "FETCH003",
	}
)

// errorPatterns maps technical error patterns (lower case) to user messages.
// Order matters: specific before general.
var errorPatterns = []errorPattern{
	// Sheet URL errors
	{pattern: "sheet url or id is required", msg: msgMissingSheet},
	{pattern: "no site sheet configured", msg: msgMissingSheet},
	{
		pattern: "set_your_site_sheet_id_here",
		msg: UserMessage{
			Message: "The sample sheet ID is still configured",
			Action:  "Replace SET_YOUR_SITE_SHEET_ID_HERE with your sheet ID or URL",
			Code:    "URL002",
		},
	},
	{
		pattern: "invalid sheet url",
		msg: UserMessage{
			Message: "The sheet reference is not a valid URL or ID",
			Action:  "Paste the sheet's browser URL or its bare ID",
			Code:    "URL003",
		},
	},

	// Fetch errors
	{
		pattern: "response body too large",
		msg: UserMessage{
			Message: "The sheet is larger than the configured limit",
			Action:  "Raise FETCH_MAX_BODY_SIZE or trim the sheet",
			Code:    "FETCH002",
		},
	},
	{
		pattern: "csv fetch failed (",
		msg: UserMessage{
			Message: "The spreadsheet export could not be downloaded",
			Action:  "Check the sheet is shared or published to the web",
			Code:    "FETCH001",
		},
	},
	{pattern: "deadline exceeded", msg: msgUnreachable},
	{pattern: "timeout", msg: msgUnreachable},
	{pattern: "no such host", msg: msgUnreachable},
	{pattern: "connection refused", msg: msgUnreachable},
	{pattern: "csv fetch failed", msg: msgUnreachable},

	// Site sheet errors
	{
		pattern: "webpages_csv_url",
		msg: UserMessage{
			Message: "The Site sheet does not point at a Pages sheet",
			Action:  "Add a webpages_csv_url column to the Site sheet",
			Code:    "SITE001",
		},
	},
	{
		pattern: "site not loaded",
		msg: UserMessage{
			Message: "The site is still loading",
			Action:  "Wait a moment and reload the page",
			Code:    "SITE002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again later",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or the ERR000 fallback.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
