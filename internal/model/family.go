package model

import (
	"strings"
	"unicode"
)

// Family is a model class with its own weekly sub-limit.
type Family string

// Model families.
const (
	Opus   Family = "opus"
	Sonnet Family = "sonnet"
	Haiku  Family = "haiku"
)

// DetectFamily classifies a model id or name by substring. Unknown models
// count as Opus.
func DetectFamily(id string) Family {
	lower := strings.ToLower(id)
	switch {
	case strings.Contains(lower, "haiku"):
		return Haiku
	case strings.Contains(lower, "sonnet"):
		return Sonnet
	default:
		return Opus
	}
}

// Initial returns the one-letter abbreviation used in the weekly breakdown.
func (f Family) Initial() string {
	if f == "" {
		return "?"
	}
	return strings.ToUpper(string(f)[:1])
}

// ModelLabel returns the short display label for a model: the display name
// when present, else "Opus 4.6" style derived from the id.
func ModelLabel(id, displayName string) string {
	if displayName = strings.TrimSpace(displayName); displayName != "" {
		return displayName
	}
	if id == "" {
		return ""
	}

	fam := DetectFamily(id)
	var version []string
	for _, part := range strings.Split(strings.ToLower(id), "-") {
		if part == "" || !isDigits(part) || len(part) >= 8 {
			continue
		}
		version = append(version, part)
	}
	if len(version) > 2 {
		version = version[:2]
	}

	name := strings.ToUpper(string(fam)[:1]) + string(fam)[1:]
	if len(version) == 0 {
		return name
	}
	return name + " " + strings.Join(version, ".")
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
