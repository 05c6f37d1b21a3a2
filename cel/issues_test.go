package cel

import (
	"testing"

	"github.com/panyam/celcheck/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCollectorAccumulatesInOrder(t *testing.T) {
	c := NewIssueCollector()
	c.Errorf(ast.Location{Line: 1, Column: 1}, "undeclared reference to '%s'", "x")
	c.Warnf(ast.Location{Line: 2, Column: 3}, "unsupported map key type")

	require.Len(t, c.Issues(), 2)
	assert.Equal(t, SeverityError, c.Issues()[0].Severity)
	assert.Equal(t, "undeclared reference to 'x'", c.Issues()[0].Message)
	assert.Equal(t, SeverityWarning, c.Issues()[1].Severity)
}

func TestIssueCollectorHasErrors(t *testing.T) {
	c := NewIssueCollector()
	assert.False(t, c.HasErrors())
	c.Warnf(ast.Location{}, "just a warning")
	assert.False(t, c.HasErrors())
	c.Errorf(ast.Location{}, "boom")
	assert.True(t, c.HasErrors())
}

func TestIssueString(t *testing.T) {
	i := Issue{Severity: SeverityError, Location: ast.Location{Line: 4, Column: 2}, Message: "bad"}
	assert.Equal(t, "4:2: error: bad", i.String())
}

func TestSummaryPluralization(t *testing.T) {
	assert.Equal(t, "1 error, 1 warning", Summary([]Issue{
		{Severity: SeverityError},
		{Severity: SeverityWarning},
	}))
	assert.Equal(t, "2 errors, 0 warnings", Summary([]Issue{
		{Severity: SeverityError},
		{Severity: SeverityError},
	}))
	assert.Equal(t, "0 errors, 0 warnings", Summary(nil))
}
