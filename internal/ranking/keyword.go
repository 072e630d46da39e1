package ranking

import (
	"strings"
	"unicode"

	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
	"github.com/ChiragAJain/shl-recommender/internal/query"
)

// stopwords excluded from keyword comparison. Mirrors the corpus the
// catalogue descriptions were indexed with.
var stopwords = map[string]struct{}{}

func init() {
	list := []string{
		"a", "an", "the", "is", "are", "was", "were", "be", "been",
		"being", "have", "has", "had", "do", "does", "did", "will",
		"would", "should", "could", "may", "might", "must", "can",
		"of", "at", "by", "for", "with", "about", "against", "between",
		"into", "through", "during", "before", "after", "above", "below",
		"to", "from", "up", "down", "in", "out", "on", "off", "over",
		"under", "again", "further", "then", "once", "here", "there",
		"when", "where", "why", "how", "all", "both", "each", "few",
		"more", "most", "other", "some", "such", "no", "nor", "not",
		"only", "own", "same", "so", "than", "too", "very", "i", "me",
		"my", "we", "our", "you", "your", "he", "him", "his", "she",
		"her", "it", "its", "they", "them", "their", "what", "which",
		"who", "whom", "this", "that", "these", "those", "am", "if",
		"or", "as", "until", "while", "but", "because", "and",
	}
	for _, w := range list {
		stopwords[w] = struct{}{}
	}
}

// DefaultSynonyms is the skill synonym expansion table. Expansion widens the
// query token set so e.g. "teamwork" also matches items declaring
// "collaboration".
func DefaultSynonyms() map[string][]string {
	return map[string][]string{
		"python":        {"python", "py", "python3"},
		"java":          {"java", "j2ee", "spring"},
		"javascript":    {"javascript", "js", "node", "nodejs", "react", "angular", "vue"},
		"sql":           {"sql", "mysql", "postgresql", "database", "db"},
		"data":          {"data", "analytics", "analysis"},
		"excel":         {"excel", "spreadsheet"},
		"communication": {"communication", "verbal", "written", "presentation"},
		"leadership":    {"leadership", "management", "manager", "lead"},
		"teamwork":      {"teamwork", "collaboration", "team", "collaborative"},
	}
}

// skillVocabulary marks raw-query tokens as skill-like: programming languages
// and frameworks plus common soft skills. Taken from the catalogue's own skill
// taxonomy.
var skillVocabulary = map[string]struct{}{}

func init() {
	list := []string{
		"java", "python", "javascript", "sql", "go", "r", "c++", "c#", "php", "ruby",
		"swift", "kotlin", "golang", "rust", "typescript", "scala", "matlab",
		"perl", "shell", "bash", "powershell", "html", "css", "react",
		"angular", "vue", "node", "django", "flask", "spring", "hibernate",
		"excel", "tableau", "communication", "leadership", "teamwork",
		"collaboration", "interpersonal", "analytical", "creative",
		"adaptability", "flexibility", "cultural", "personality",
		"behavioral", "emotional", "sales", "negotiation",
	}
	for _, w := range list {
		skillVocabulary[w] = struct{}{}
	}
}

// KeywordScorer computes the lexical overlap signal between the structured
// requirements and an item's declared skills, name, and description.
//
// Matching is exact normalized-token equality on word boundaries: the query
// token "java" never matches the item token "javascript". The score is
// recall-oriented, |query ∩ item| / |query|.
type KeywordScorer struct {
	// Synonyms expands query skill tokens when non-nil. The baseline
	// scorer requires exact token equality only.
	Synonyms map[string][]string
}

func NewKeywordScorer(synonyms map[string][]string) *KeywordScorer {
	return &KeywordScorer{Synonyms: synonyms}
}

// Score is a pure function of its inputs, returning a value in [0,1].
func (s *KeywordScorer) Score(q *query.StructuredQuery, item *catalogue.Item) float64 {
	queryTokens := s.queryTokens(q)
	if len(queryTokens) == 0 {
		return 0
	}

	itemTokens := itemTokens(item)

	matched := 0
	for token := range queryTokens {
		if _, ok := itemTokens[token]; ok {
			matched++
		}
	}

	return float64(matched) / float64(len(queryTokens))
}

func (s *KeywordScorer) queryTokens(q *query.StructuredQuery) map[string]struct{} {
	tokens := make(map[string]struct{})

	for _, skill := range q.RequiredSkills {
		for _, token := range Tokenize(skill) {
			tokens[token] = struct{}{}
			for _, syn := range s.Synonyms[token] {
				tokens[syn] = struct{}{}
			}
		}
	}

	// The fallback role is synthetic, not an interpreted requirement; it
	// must not mask the raw-text path below.
	if q.Role != query.FallbackRole {
		addTokens(tokens, q.Role)
	}

	// Skill-like tokens detected in the raw text; full raw text only when
	// interpretation produced no structured fields at all, so ranking can
	// still operate in degraded mode.
	if len(tokens) == 0 {
		addTokens(tokens, q.Raw)
	} else {
		for _, token := range Tokenize(q.Raw) {
			if _, ok := skillVocabulary[token]; ok {
				tokens[token] = struct{}{}
			}
		}
	}

	return tokens
}

func itemTokens(item *catalogue.Item) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, skill := range item.Skills {
		addTokens(tokens, skill)
	}
	addTokens(tokens, item.Name)
	addTokens(tokens, item.Description)
	return tokens
}

func addTokens(set map[string]struct{}, text string) {
	for _, token := range Tokenize(text) {
		set[token] = struct{}{}
	}
}

// shortSkillTokens are real skill names short enough that the length filter
// in Tokenize would otherwise drop them.
var shortSkillTokens = map[string]struct{}{
	"go": {}, "r": {}, "c": {}, "ai": {}, "bi": {}, "qa": {},
}

// Tokenize lowercases the text and splits it on non-alphanumeric boundaries,
// keeping '+' and '#' so language names like c++ and c# survive. Stopwords
// and tokens shorter than three characters are dropped, except for the
// symbol-bearing language names and the short skill names ("go", "r", ...).
func Tokenize(text string) []string {
	lower := strings.ToLower(text)

	raw := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})

	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if _, ok := stopwords[t]; ok {
			continue
		}
		if len(t) <= 2 && !strings.ContainsAny(t, "+#") {
			if _, ok := shortSkillTokens[t]; !ok {
				continue
			}
		}
		tokens = append(tokens, t)
	}
	return tokens
}
