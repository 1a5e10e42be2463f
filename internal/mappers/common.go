// Package mappers turns normalized export items into the persisted
// document shapes. Mapping is pure: no store access, no side effects.
package mappers

import (
	"strings"
	"time"

	"github.com/bauldemodadev/bauldemoda-sub000/internal/domain"
)

// wpDateLayout is the timestamp format of the legacy export
// (local time, no zone).
const wpDateLayout = "2006-01-02 15:04:05"

// mapStatus maps the source status. Only the exact string "publish"
// publishes; everything else, including "Publish", stays draft.
func mapStatus(s string) string {
	if s == domain.StatusPublish {
		return domain.StatusPublish
	}
	return domain.StatusDraft
}

// parseDate parses a source date string. Unparseable or missing dates
// get the current time; a document never carries a zero date.
func parseDate(s string) time.Time {
	v := strings.TrimSpace(s)
	if v != "" {
		if t, err := time.ParseInLocation(wpDateLayout, v, time.Local); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Now()
}

// mapTitle applies the title fallback chain: structured title, then the
// "title" meta field, then a literal placeholder.
func mapTitle(structured, metaTitle string) string {
	if v := strings.TrimSpace(structured); v != "" {
		return v
	}
	if v := strings.TrimSpace(metaTitle); v != "" {
		return v
	}
	return "Untitled"
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
