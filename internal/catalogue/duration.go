package catalogue

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	hourPattern   = regexp.MustCompile(`(\d+)\s*(?:hrs?|hours?)`)
	minutePattern = regexp.MustCompile(`(\d+)\s*(?:mins?|minutes?)`)
	barePattern   = regexp.MustCompile(`^\s*(\d+)\s*$`)
)

// ParseDuration converts a free-text duration such as "45 minutes" or
// "1 hour 30 minutes" into minutes. A bare number is treated as minutes,
// matching the source dataset. Returns 0 when no duration can be extracted.
func ParseDuration(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	if m := barePattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}

	total := 0
	if m := hourPattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n * 60
	}
	if m := minutePattern.FindStringSubmatch(s); m != nil {
		n, _ := strconv.Atoi(m[1])
		total += n
	}

	return total
}
