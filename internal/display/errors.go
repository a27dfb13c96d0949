// Package display turns raw operation failures into user-facing
// error panels: known environment failures are rewritten to
// actionable messages and repeated failures are grouped with counts.
package display

import (
	"log"
	"strings"
)

// Override rewrites an error whose string contains Match. The table
// is scanned in order and the first match wins. Classification is by
// literal substring on purpose: the underlying drivers expose no
// structured codes for these conditions, so the matched strings are
// version-sensitive.
type Override struct {
	Match       string
	Replacement string
}

var defaultOverrides = []Override{
	{
		Match:       "operation was attempted on a database that did not allow mutations",
		Replacement: `Could not access the database. If you are using Firefox, this can be caused by deleting history with "Browsing & download history" checked or by always-on private browsing; disable those settings and try again.`,
	},
	{
		Match:       "quota",
		Replacement: "Storage quota exceeded. Free up disk space or remove unused dictionaries, then try again.",
	},
	{
		Match:       "database is locked",
		Replacement: "The dictionary database is locked by another process. Close other running instances and try again.",
	},
	{
		Match:       "attempt to write a readonly database",
		Replacement: "The dictionary database file is read-only. Fix the file permissions and try again.",
	},
	{
		Match:       "file is not a database",
		Replacement: "The dictionary database file is corrupt. Purge the database and re-import your dictionaries.",
	},
}

// Logger receives every error exactly once per occurrence,
// independently of display grouping. Fire-and-forget.
type Logger interface {
	LogError(err error)
}

// StdLogger writes diagnostics through the standard library logger.
type StdLogger struct{}

func (StdLogger) LogError(err error) {
	log.Printf("[ERROR] %v", err)
}

// Line is one rendered error group. Count is the number of
// occurrences; renderers emphasize the "(n)" suffix when Count > 1.
type Line struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Normalizer formats collected operation failures for display.
type Normalizer struct {
	overrides []Override
	logger    Logger
}

func NewNormalizer(logger Logger) *Normalizer {
	if logger == nil {
		logger = StdLogger{}
	}
	return &Normalizer{overrides: defaultOverrides, logger: logger}
}

// ToDisplayString maps an error to its user-facing string. Overrides
// are consulted in table order; a non-matching error passes through
// unchanged.
func (n *Normalizer) ToDisplayString(err error) string {
	message := err.Error()
	for _, override := range n.overrides {
		if strings.Contains(message, override.Match) {
			return override.Replacement
		}
	}
	return message
}

// Render logs every error, then groups them by display string. First
// occurrence order is preserved; duplicates accumulate a count.
func (n *Normalizer) Render(errs []error) []Line {
	for _, err := range errs {
		n.logger.LogError(err)
	}

	var lines []Line
	index := make(map[string]int)
	for _, err := range errs {
		text := n.ToDisplayString(err)
		if i, ok := index[text]; ok {
			lines[i].Count++
			continue
		}
		index[text] = len(lines)
		lines = append(lines, Line{Text: text, Count: 1})
	}
	return lines
}
