package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// itemRecord mirrors one entry of the scraped assessments dataset. The scraper
// emits Yes/No flags and free-text durations, so records are converted before
// they enter the snapshot.
type itemRecord struct {
	URL             string   `json:"url"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	AdaptiveSupport string   `json:"adaptive_support"`
	RemoteSupport   string   `json:"remote_support"`
	Duration        string   `json:"duration"`
	TestType        []string `json:"test_type"`
	TestTypes       []string `json:"test_types"`
	Skills          []string `json:"skills"`
	JobLevel        string   `json:"job_level"`
	Category        string   `json:"category"`
}

func (r *itemRecord) toItem() *Item {
	types := r.TestTypes
	if len(types) == 0 {
		types = r.TestType
	}

	normalized := make([]string, 0, len(types))
	for _, t := range types {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			normalized = append(normalized, t)
		}
	}

	return &Item{
		ID:              IDFromURL(r.URL),
		Name:            strings.TrimSpace(r.Name),
		Description:     strings.TrimSpace(r.Description),
		TestTypes:       normalized,
		Skills:          r.Skills,
		JobLevels:       SplitJobLevels(r.JobLevel),
		DurationMinutes: ParseDuration(r.Duration),
		AdaptiveSupport: yesNo(r.AdaptiveSupport),
		RemoteSupport:   yesNo(r.RemoteSupport),
		Category:        strings.TrimSpace(r.Category),
		URL:             strings.TrimSpace(r.URL),
	}
}

func yesNo(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}

// SplitJobLevels breaks a dataset job level string such as
// "Entry-Level, Graduate, Manager" into individual tags.
func SplitJobLevels(s string) []string {
	parts := strings.Split(s, ",")
	levels := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			levels = append(levels, p)
		}
	}
	return levels
}

// FileProvider loads the catalogue from a local JSON dataset.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) ListItems(_ context.Context) ([]*Item, error) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("reading catalogue dataset %q: %w", p.Path, err)
	}

	var records []*itemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing catalogue dataset %q: %w", p.Path, err)
	}

	items := make([]*Item, 0, len(records))
	for _, r := range records {
		items = append(items, r.toItem())
	}

	return items, nil
}
