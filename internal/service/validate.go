package service

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxDescriptionLength = 500

var clockPattern = regexp.MustCompile(`(?i)^([0-1]?[0-9]|2[0-3]):[0-5][0-9](\s?(AM|PM))?$`)

// ValidClock accepts "HH:MM" (24h) and "HH:MM AM/PM".
func ValidClock(value string) bool {
	return clockPattern.MatchString(strings.TrimSpace(value))
}

// ValidDate accepts calendar dates and RFC 3339 timestamps.
func ValidDate(value string) bool {
	value = strings.TrimSpace(value)
	for _, layout := range []string{time.DateOnly, time.RFC3339, time.RFC3339Nano} {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

// canonicalID accepts any form uuid.Parse does (upper case, braces, urn
// prefix) and returns the lowercase hyphenated form stores key on.
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

// canonicalIDs rewrites ids in place. Callers validate first.
func canonicalIDs(ids []string) []string {
	for i, id := range ids {
		if canonical, ok := canonicalID(id); ok {
			ids[i] = canonical
		}
	}
	return ids
}

func validateDate(value string, details []string) []string {
	switch {
	case strings.TrimSpace(value) == "":
		return append(details, "date is required")
	case !ValidDate(value):
		return append(details, "please provide a valid date")
	}
	return details
}

func validateClock(value string, details []string) []string {
	switch {
	case strings.TrimSpace(value) == "":
		return append(details, "time is required")
	case !ValidClock(value):
		return append(details, "please provide a valid time format (HH:MM or HH:MM AM/PM)")
	}
	return details
}

func validateDescription(value string, details []string) []string {
	switch {
	case strings.TrimSpace(value) == "":
		return append(details, "description is required")
	case len([]rune(value)) > maxDescriptionLength:
		return append(details, "description cannot exceed 500 characters")
	}
	return details
}

func validateParticipants(ids []string, details []string) []string {
	for _, id := range ids {
		if _, ok := canonicalID(id); !ok {
			return append(details, "participants must be valid user IDs")
		}
	}
	return details
}
