package logger

import (
	"fmt"
	"strings"
)

var categoryNames = map[Category]string{
	CategoryDashboard: "DASHBOARD",
	CategoryOrders:    "ORDERS",
	CategoryUtils:     "UTILS",
	CategoryDevice:    "DEVICE",
}

// Categories returns every category in declaration order
func Categories() []Category {
	return []Category{CategoryDashboard, CategoryOrders, CategoryUtils, CategoryDevice}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CATEGORY(%d)", int(c))
}

// ParseCategory resolves a category name, ignoring case
func ParseCategory(s string) (Category, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories() {
		if c.String() == want {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category: %q", s)
}

// Severities returns every severity from least to most important
func Severities() []Severity {
	return []Severity{SeverityVerbose, SeverityDebug, SeverityInfo, SeverityWarn, SeverityError}
}

func (s Severity) String() string {
	switch s {
	case SeverityVerbose:
		return "VERBOSE"
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	}
	return fmt.Sprintf("SEVERITY(%d)", int(s))
}

// ParseSeverity resolves a severity name, ignoring case. "warning" is
// accepted for WARN.
func ParseSeverity(s string) (Severity, error) {
	want := strings.ToUpper(strings.TrimSpace(s))
	if want == "WARNING" {
		return SeverityWarn, nil
	}
	for _, sev := range Severities() {
		if sev.String() == want {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity: %q", s)
}

// fallbackColor is used for severities outside Severities(), which Log
// accepts and stores like any other.
const fallbackColor = "black"

// SeverityColor returns the markup colour for a severity.
func SeverityColor(s Severity) string {
	if c, ok := severityColor(s); ok {
		return c
	}
	return fallbackColor
}

// severityColor must have a case for every severity; levels_test walks
// Severities() to enforce it.
func severityColor(s Severity) (string, bool) {
	switch s {
	case SeverityVerbose:
		return "grey", true
	case SeverityDebug:
		return "teal", true
	case SeverityInfo:
		return "black", true
	case SeverityWarn:
		return "purple", true
	case SeverityError:
		return "red", true
	}
	return "", false
}
