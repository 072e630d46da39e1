package query

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

// ErrInterpretation marks a failure to turn the raw query into a structured
// one, usually malformed LLM output. Callers recover with Fallback.
var ErrInterpretation = errors.New("query interpretation failed")

// StructuredQuery is the requirement set extracted from a free-text job query.
// Any field may be empty; scorers skip the dimensions they have no signal for.
type StructuredQuery struct {
	Role                string   `json:"role,omitempty"`
	RequiredSkills      []string `json:"required_skills,omitempty"`
	RequiredTestTypes   []string `json:"required_test_types,omitempty"`
	JobLevel            string   `json:"job_level,omitempty"`
	KeyRequirements     []string `json:"key_requirements,omitempty"`
	SearchQuery         string   `json:"search_query,omitempty"`
	DurationHintMinutes int      `json:"duration_hint_minutes,omitempty"`

	// Raw is the original query text, carried along so scorers can fall
	// back to it when the structured fields are empty.
	Raw string `json:"-"`
}

// Interpreter turns free text into a structured requirement set.
type Interpreter interface {
	Interpret(ctx context.Context, raw string) (*StructuredQuery, error)
}

// FallbackRole is the synthetic role carried by a Fallback query. It marks
// the role as uninterpreted rather than required; scorers treat it as absent.
const FallbackRole = "Unknown"

// Fallback returns the documented degraded query used when interpretation
// fails: both knowledge and personality assessments are considered relevant
// and the raw text doubles as the search query.
func Fallback(raw string) *StructuredQuery {
	return &StructuredQuery{
		Role:              FallbackRole,
		RequiredTestTypes: []string{"K", "P"},
		SearchQuery:       raw,
		Raw:               raw,
	}
}

var durationHintPatterns = []struct {
	re      *regexp.Regexp
	minutes int
}{
	{regexp.MustCompile(`(\d+)\s*(?:mins?|minutes?)`), 1},
	{regexp.MustCompile(`(\d+)\s*(?:hrs?|hours?)`), 60},
	{regexp.MustCompile(`(\d+)\s*h\b`), 60},
}

// ExtractDurationHint scans the raw query for a time budget such as
// "40 minutes" or "1 hour" and returns it in minutes, 0 when absent.
func ExtractDurationHint(raw string) int {
	lower := strings.ToLower(raw)
	for _, p := range durationHintPatterns {
		if m := p.re.FindStringSubmatch(lower); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n * p.minutes
		}
	}
	return 0
}
