package models

import (
	"strings"
	"time"
)

var subscriptionDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// SubscriptionActive reports whether a tenant subscription grants access.
// A status of "approved" or "active" counts as active; the end date is only
// checked when present. An end date that fails to parse resolves to active.
func SubscriptionActive(status, endDate string, now time.Time) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "approved", "active":
	default:
		return false
	}

	endDate = strings.TrimSpace(endDate)
	if endDate == "" {
		return true
	}

	for _, layout := range subscriptionDateLayouts {
		if end, err := time.Parse(layout, endDate); err == nil {
			return now.Before(end)
		}
	}
	return true
}
