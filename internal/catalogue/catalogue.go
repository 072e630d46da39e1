package catalogue

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Test type codes used by the SHL product catalogue.
const (
	TypeKnowledge    = "K" // Knowledge & Skills
	TypePersonality  = "P" // Personality & Behaviour
	TypeAptitude     = "A" // Ability & Aptitude
	TypeBiodata      = "B" // Biodata & Situational Judgement
	TypeCompetencies = "C" // Competencies
	TypeSimulations  = "S" // Simulations
	TypeDevelopment  = "D" // Development & 360
	TypeExercises    = "E" // Assessment Exercises
)

// Item is a single recommendable assessment. Items are loaded once at startup
// and never mutated afterwards, so they are safe to share across concurrent
// ranking calls.
type Item struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description,omitempty"`
	TestTypes       []string `json:"test_types,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	JobLevels       []string `json:"job_levels,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	AdaptiveSupport bool     `json:"adaptive_support,omitempty"`
	RemoteSupport   bool     `json:"remote_support,omitempty"`
	Category        string   `json:"category,omitempty"`
	URL             string   `json:"url,omitempty"`
}

// HasTestType reports whether the item carries the provided test type code.
func (i *Item) HasTestType(code string) bool {
	for _, t := range i.TestTypes {
		if strings.EqualFold(t, code) {
			return true
		}
	}
	return false
}

// Provider supplies the catalogue items at startup. The snapshot built from
// the returned items is assumed static for the process lifetime.
type Provider interface {
	ListItems(ctx context.Context) ([]*Item, error)
}

// Catalogue is a read-only snapshot of assessments.
type Catalogue struct {
	items []*Item
	byID  map[string]*Item
}

// New builds a snapshot from the provided items. Items without an id get a
// stable one derived from their source URL, falling back to their position.
// Items are kept in ascending id order so ranking tie-breaks are reproducible
// across loads.
func New(items []*Item) *Catalogue {
	byID := make(map[string]*Item, len(items))
	kept := make([]*Item, 0, len(items))

	for idx, item := range items {
		if item == nil {
			continue
		}
		if item.ID == "" {
			item.ID = IDFromURL(item.URL)
		}
		if item.ID == "" {
			item.ID = fmt.Sprintf("assessment-%04d", idx)
		}
		if _, ok := byID[item.ID]; ok {
			continue
		}
		byID[item.ID] = item
		kept = append(kept, item)
	}

	sort.Slice(kept, func(a, b int) bool { return kept[a].ID < kept[b].ID })

	return &Catalogue{items: kept, byID: byID}
}

// Items returns the snapshot contents. Callers must not mutate the result.
func (c *Catalogue) Items() []*Item {
	return c.items
}

func (c *Catalogue) Len() int {
	return len(c.items)
}

func (c *Catalogue) FindByID(id string) *Item {
	return c.byID[id]
}

// DumpToTmpFile writes the snapshot to a temporary JSON file and returns its name.
func (c *Catalogue) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "catalogue_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// IDFromURL derives a stable item id from the assessment's catalogue URL,
// using the last non-empty path segment.
func IDFromURL(rawURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(rawURL), "/")
	if trimmed == "" {
		return ""
	}
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		trimmed = trimmed[idx+1:]
	}
	return strings.ToLower(trimmed)
}
