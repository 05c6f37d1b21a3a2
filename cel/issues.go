package cel

import (
	"fmt"

	"github.com/panyam/celcheck/ast"
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Severity mirrors spec §4.7's four-level classification. Only Error
// severity blocks CheckedAst production (spec §8 invariant 2).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInformation
	SeverityDeprecation
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInformation:
		return "information"
	case SeverityDeprecation:
		return "deprecation"
	default:
		return "unknown"
	}
}

// Issue is one diagnostic attached to a source location, grounded on the
// teacher's loader/errors.go ErrorCollector entries and loader/infer.go's
// InferenceError (pos + message pairing).
type Issue struct {
	Severity Severity
	Location ast.Location
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Location.LineColStr(), i.Severity, i.Message)
}

// IssueCollector accumulates Issues in resolver-visit order (spec §5),
// the same append-only accumulation the teacher's ErrorCollector uses
// instead of returning on first error.
type IssueCollector struct {
	issues []Issue
}

func NewIssueCollector() *IssueCollector {
	return &IssueCollector{}
}

func (c *IssueCollector) Errorf(loc ast.Location, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: SeverityError, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (c *IssueCollector) Warnf(loc ast.Location, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: SeverityWarning, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (c *IssueCollector) Infof(loc ast.Location, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: SeverityInformation, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (c *IssueCollector) Deprecatedf(loc ast.Location, format string, args ...any) {
	c.issues = append(c.issues, Issue{Severity: SeverityDeprecation, Location: loc, Message: fmt.Sprintf(format, args...)})
}

func (c *IssueCollector) HasErrors() bool {
	for _, i := range c.issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func (c *IssueCollector) Issues() []Issue {
	return c.issues
}

var summaryPrinter = message.NewPrinter(language.English)

func init() {
	message.Set(language.English, "%d error(s)",
		plural.Selectf(1, "%d",
			plural.One, "1 error",
			plural.Other, "%d errors",
		),
	)
	message.Set(language.English, "%d warning(s)",
		plural.Selectf(1, "%d",
			plural.One, "1 warning",
			plural.Other, "%d warnings",
		),
	)
}

// Summary renders a human-readable, correctly pluralized count of errors
// and warnings among issues — the CLI's report line.
func Summary(issues []Issue) string {
	errs, warns := 0, 0
	for _, i := range issues {
		switch i.Severity {
		case SeverityError:
			errs++
		case SeverityWarning:
			warns++
		}
	}
	return summaryPrinter.Sprintf("%d error(s)", errs) + ", " + summaryPrinter.Sprintf("%d warning(s)", warns)
}
