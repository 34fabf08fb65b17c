package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// numberWordAlt matches spoken numbers: compound tens ("forty five",
// "forty-five"), teens, and units. Spoken and digit forms parse identically.
const numberWordAlt = `(?:twenty|thirty|forty|fifty|sixty|seventy|eighty|ninety)(?:[ -](?:one|two|three|four|five|six|seven|eight|nine))?|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|seventeen|eighteen|nineteen|one|two|three|four|five|six|seven|eight|nine`

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16,
	"seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
	"thirty": 30, "forty": 40, "fifty": 50, "sixty": 60, "seventy": 70,
	"eighty": 80, "ninety": 90,
}

type durationPattern struct {
	re      *regexp.Regexp
	resolve func(m []string) (int, bool)
}

// Duration phrases: hour idioms first, then value-plus-unit. Position first,
// table order as tiebreak, like the date and time tables.
var durationPatterns = []durationPattern{
	{
		re:      regexp.MustCompile(`\b(?:for\s+)?an?\s+hour\s+and\s+a\s+half\b`),
		resolve: func([]string) (int, bool) { return 90, true },
	},
	{
		re:      regexp.MustCompile(`\b(?:for\s+)?(?:one|1)\s+and\s+a\s+half\s+hours?\b`),
		resolve: func([]string) (int, bool) { return 90, true },
	},
	{
		re:      regexp.MustCompile(`\b(?:for\s+)?half\s+an?\s+hour\b`),
		resolve: func([]string) (int, bool) { return 30, true },
	},
	{
		re:      regexp.MustCompile(`\b(?:for\s+)?an\s+hour\b`),
		resolve: func([]string) (int, bool) { return 60, true },
	},
	{
		re: regexp.MustCompile(`\b(?:for\s+)?(` + numberWordAlt + `|\d{1,3})[ -]?(hours?|hrs?|minutes?|mins?)\b`),
		resolve: func(m []string) (int, bool) {
			value, ok := parseCount(m[1])
			if !ok {
				return 0, false
			}
			if strings.HasPrefix(m[2], "h") {
				value *= 60
			}
			return value, true
		},
	},
}

// span marks a half-open byte range claimed by another field's match.
type span struct {
	start int
	end   int
}

func (s span) overlaps(start, end int) bool {
	return start < s.end && end > s.start
}

// matchDuration finds the leftmost duration phrase outside the excluded
// ranges, so "in two hours" stays a start time rather than a duration.
func matchDuration(text string, excluded []span) (int, bool) {
	minutes := 0
	pos := 0
	found := false
	for _, p := range durationPatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if overlapsAny(idx[0], idx[1], excluded) {
				continue
			}
			if found && idx[0] >= pos {
				break
			}
			value, ok := p.resolve(submatchText(text, idx))
			if !ok || value <= 0 {
				continue
			}
			minutes = value
			pos = idx[0]
			found = true
			break
		}
	}
	return minutes, found
}

func overlapsAny(start, end int, excluded []span) bool {
	for _, s := range excluded {
		if s.overlaps(start, end) {
			return true
		}
	}
	return false
}

func submatchText(text string, idx []int) []string {
	m := make([]string, len(idx)/2)
	for i := range m {
		if idx[2*i] >= 0 {
			m[i] = text[idx[2*i]:idx[2*i+1]]
		}
	}
	return m
}

func stripDurationPhrases(span string) string {
	for _, p := range durationPatterns {
		span = p.re.ReplaceAllString(span, " ")
	}
	return whitespaceRE.ReplaceAllString(span, " ")
}

func parseCount(text string) (int, bool) {
	if n, err := strconv.Atoi(text); err == nil {
		return n, n > 0
	}
	total := 0
	for _, part := range strings.Fields(strings.ReplaceAll(text, "-", " ")) {
		value, ok := numberWords[part]
		if !ok {
			return 0, false
		}
		total += value
	}
	return total, total > 0
}
