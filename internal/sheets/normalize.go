// Package sheets locates and downloads spreadsheet CSV exports.
package sheets

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// PlaceholderSheetID is the value shipped in sample configuration files.
const PlaceholderSheetID = "SET_YOUR_SITE_SHEET_ID_HERE"

// Normalization errors.
var (
	ErrSheetURLRequired    = errors.New("sheet URL or ID is required")
	ErrPlaceholderSheetURL = errors.New(`config error: replace "` + PlaceholderSheetID + `" in your config with your Google Sheet ID or URL`)
	ErrInvalidSheetURL     = errors.New("invalid sheet URL or ID format")
)

var (
	spreadsheetPathRe = regexp.MustCompile(`/spreadsheets/d/(?:e/)?([a-zA-Z0-9\-_]+)`)
	shortPathRe       = regexp.MustCompile(`/d/(?:e/)?([a-zA-Z0-9\-_]+)`)
	bareIDRe          = regexp.MustCompile(`^[a-zA-Z0-9\-_]+$`)
)

// NormalizeURL turns a user-supplied sheet reference into a CSV export URL.
//
// Accepted shapes:
//   - published or gviz CSV URLs (containing "output=csv" or "gviz/tq"), returned as-is
//   - https://docs.google.com/spreadsheets/d/<id>/edit and similar
//   - https://docs.google.com/spreadsheets/d/e/<id>/pub...
//   - any URL with a /d/<id> path segment
//   - a bare ID made of letters, digits, dashes and underscores
func NormalizeURL(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrSheetURLRequired
	}

	if strings.Contains(trimmed, PlaceholderSheetID) {
		return "", ErrPlaceholderSheetURL
	}

	if strings.Contains(trimmed, "output=csv") || strings.Contains(trimmed, "gviz/tq") {
		return trimmed, nil
	}

	if id := extractSheetID(trimmed); id != "" {
		return ExportURL(id), nil
	}

	return "", fmt.Errorf("%w: %s", ErrInvalidSheetURL, input)
}

// ExportURL builds the CSV export URL for a spreadsheet ID.
func ExportURL(id string) string {
	return "https://docs.google.com/spreadsheets/d/" + id + "/gviz/tq?tqx=out:csv&sheet=Sheet1"
}

func extractSheetID(s string) string {
	if m := spreadsheetPathRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if m := shortPathRe.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if bareIDRe.MatchString(s) {
		return s
	}
	return ""
}
