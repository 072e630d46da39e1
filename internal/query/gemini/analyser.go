package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/ChiragAJain/shl-recommender/internal/query"
	"github.com/ChiragAJain/shl-recommender/internal/utils"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Analyser extracts a structured requirement set from a free-text job query
// using a Gemini model.
type Analyser struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

func NewAnalyser(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Analyser {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Analyser{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Interpret implements query.Interpreter. Generation or parse failures wrap
// query.ErrInterpretation so the caller can recover with query.Fallback.
func (a *Analyser) Interpret(ctx context.Context, raw string) (*query.StructuredQuery, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty query", query.ErrInterpretation)
	}

	prompt := buildPrompt(raw)

	a.logger.Debug("gemini query analysis request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("query_preview", utils.TruncateForLog(raw, a.maxLogLen)),
	)

	response, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", query.ErrInterpretation, err)
	}

	a.logger.Debug("gemini query analysis response",
		zap.Int("response_length", utf8.RuneCountInString(response)),
		zap.String("response_preview", utils.TruncateForLog(response, a.maxLogLen)),
	)

	sq, err := parseResponse(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", query.ErrInterpretation, err)
	}

	sq.Raw = raw
	if sq.SearchQuery == "" {
		sq.SearchQuery = raw
	}

	return sq, nil
}

func buildPrompt(rawQuery string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job Query: \"{{QUERY}}\"\n\nJSON:"
	}
	return strings.ReplaceAll(template, "{{QUERY}}", rawQuery)
}

func parseResponse(raw string) (*query.StructuredQuery, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &query.StructuredQuery{
		Role:              coerceString(data["role"]),
		RequiredSkills:    coerceStringSlice(data["required_skills"]),
		RequiredTestTypes: normalizeTestTypes(coerceStringSlice(data["required_test_types"])),
		JobLevel:          coerceString(data["job_level"]),
		KeyRequirements:   coerceStringSlice(data["key_requirements"]),
		SearchQuery:       coerceString(data["search_query"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func normalizeTestTypes(types []string) []string {
	normalized := make([]string, 0, len(types))
	seen := make(map[string]struct{}, len(types))
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		normalized = append(normalized, t)
	}
	return normalized
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		s := strings.TrimSpace(val)
		if strings.EqualFold(s, "null") {
			return ""
		}
		return s
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

func coerceStringSlice(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, entry := range val {
			if s := coerceString(entry); s != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return val
	case string:
		// Some responses collapse a list into a comma-separated string.
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
