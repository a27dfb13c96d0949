package display

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	logged []error
}

func (l *recordingLogger) LogError(err error) {
	l.logged = append(l.logged, err)
}

func TestToDisplayString_FirefoxOverride(t *testing.T) {
	n := NewNormalizer(&recordingLogger{})

	err := errors.New("InvalidStateError: A mutation operation was attempted on a database that did not allow mutations.")
	got := n.ToDisplayString(err)

	assert.Equal(t, `Could not access the database. If you are using Firefox, this can be caused by deleting history with "Browsing & download history" checked or by always-on private browsing; disable those settings and try again.`, got)
}

func TestToDisplayString_NoMatchPassesThrough(t *testing.T) {
	n := NewNormalizer(&recordingLogger{})

	err := errors.New("term bank 3: row 17: expression is not a string")
	assert.Equal(t, err.Error(), n.ToDisplayString(err))
}

func TestToDisplayString_FirstMatchWins(t *testing.T) {
	n := NewNormalizer(&recordingLogger{})
	n.overrides = []Override{
		{Match: "alpha", Replacement: "first"},
		{Match: "alpha beta", Replacement: "second"},
	}

	assert.Equal(t, "first", n.ToDisplayString(errors.New("alpha beta gamma")))
}

func TestRender_GroupsAndCounts(t *testing.T) {
	logger := &recordingLogger{}
	n := NewNormalizer(logger)

	e1a := errors.New("bad entry")
	e1b := errors.New("bad entry")
	e2 := errors.New("missing reading")

	lines := n.Render([]error{e1a, e1b, e2})

	require.Len(t, lines, 2)
	assert.Equal(t, Line{Text: "bad entry", Count: 2}, lines[0])
	assert.Equal(t, Line{Text: "missing reading", Count: 1}, lines[1])

	// Every occurrence logged independently of grouping
	assert.Len(t, logger.logged, 3)
}

func TestRender_GroupsByDisplayStringAfterOverride(t *testing.T) {
	logger := &recordingLogger{}
	n := NewNormalizer(logger)

	// Distinct raw errors that rewrite to the same display string
	e1 := errors.New("A mutation operation was attempted on a database that did not allow mutations.")
	e2 := fmt.Errorf("wrapped: %w", e1)

	lines := n.Render([]error{e1, e2})

	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Count)
	assert.Len(t, logger.logged, 2)
}

func TestRender_Empty(t *testing.T) {
	n := NewNormalizer(&recordingLogger{})
	assert.Empty(t, n.Render(nil))
}
