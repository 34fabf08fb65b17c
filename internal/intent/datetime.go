package intent

import (
	"regexp"
	"strconv"
	"time"

	"github.com/chirag-gupta7/Voice-Assistant-AI/internal/domain"
)

// rollKind decides how a matched date advances when it lands in the past.
type rollKind int

const (
	rollNone rollKind = iota
	rollDay
	rollWeek
	rollYear
)

// dateMatch is a recognized date phrase resolved against the parse clock.
// withTime marks phrases that pin the clock as well ("in two hours").
type dateMatch struct {
	pos      int
	length   int
	year     int
	month    time.Month
	day      int
	roll     rollKind
	withTime bool
	hour     int
	minute   int
}

// timeMatch is a recognized time-of-day phrase. rangeMinutes is set when the
// phrase was a range ("from 12 to 1:30pm").
type timeMatch struct {
	pos          int
	length       int
	hour         int
	minute       int
	rangeMinutes int
}

type datePattern struct {
	re      *regexp.Regexp
	resolve func(m []string, now time.Time) (dateMatch, bool)
}

type timePattern struct {
	re      *regexp.Regexp
	resolve func(m []string) (timeMatch, bool)
}

const (
	monthAlt   = `january|february|march|april|may|june|july|august|september|october|november|december`
	weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday`
)

var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var weekdays = map[string]time.Weekday{
	"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
	"sunday": time.Sunday,
}

// Date phrases in priority order: absolute calendar forms, weekday forms,
// then relative forms. Matches compete on position; the table order breaks
// ties, so conflicting phrases resolve left to right.
var datePatterns = []datePattern{
	{
		re: regexp.MustCompile(`\b(?:on\s+)?(` + monthAlt + `)\s+(\d{1,2})(?:st|nd|rd|th)?\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			day, err := strconv.Atoi(m[2])
			if err != nil || day < 1 || day > 31 {
				return dateMatch{}, false
			}
			return dateMatch{year: now.Year(), month: months[m[1]], day: day, roll: rollYear}, true
		},
	},
	{
		re: regexp.MustCompile(`\b(?:on\s+)?(?:the\s+)?(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlt + `)\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			day, err := strconv.Atoi(m[1])
			if err != nil || day < 1 || day > 31 {
				return dateMatch{}, false
			}
			return dateMatch{year: now.Year(), month: months[m[2]], day: day, roll: rollYear}, true
		},
	},
	{
		re: regexp.MustCompile(`\bnext\s+(` + weekdayAlt + `)\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return resolveWeekday(m[1], true, now), true
		},
	},
	{
		re: regexp.MustCompile(`\b(?:on\s+)?(` + weekdayAlt + `)\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return resolveWeekday(m[1], false, now), true
		},
	},
	{
		re: regexp.MustCompile(`\b(?:the\s+)?day\s+after\s+tomorrow\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return dateOn(now.AddDate(0, 0, 2), rollNone), true
		},
	},
	{
		re: regexp.MustCompile(`\btomorrow\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return dateOn(now.AddDate(0, 0, 1), rollNone), true
		},
	},
	{
		re: regexp.MustCompile(`\btoday\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return dateOn(now, rollDay), true
		},
	},
	{
		re: regexp.MustCompile(`\bnext\s+week\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return dateOn(now.AddDate(0, 0, 7), rollNone), true
		},
	},
	{
		re: regexp.MustCompile(`\bnext\s+month\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			return dateOn(now.AddDate(0, 1, 0), rollNone), true
		},
	},
	{
		re: regexp.MustCompile(`\bthis\s+weekend\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			days := (int(time.Saturday) - int(now.Weekday()) + 7) % 7
			return dateOn(now.AddDate(0, 0, days), rollNone), true
		},
	},
	{
		re: regexp.MustCompile(`\bin\s+(` + numberWordAlt + `|\d{1,3})\s+days?\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			n, ok := parseCount(m[1])
			if !ok {
				return dateMatch{}, false
			}
			return dateOn(now.AddDate(0, 0, n), rollNone), true
		},
	},
	{
		re: regexp.MustCompile(`\bin\s+(` + numberWordAlt + `|\d{1,3})\s+hours?\b`),
		resolve: func(m []string, now time.Time) (dateMatch, bool) {
			n, ok := parseCount(m[1])
			if !ok {
				return dateMatch{}, false
			}
			at := now.Add(time.Duration(n) * time.Hour)
			match := dateOn(at, rollNone)
			match.withTime = true
			match.hour = at.Hour()
			match.minute = at.Minute()
			return match, true
		},
	},
}

// Time phrases in priority order: ranges, "at" forms, clock forms. Same
// position-first, table-order-tiebreak competition as dates.
var timePatterns = []timePattern{
	{
		re:      regexp.MustCompile(`\b(from\s+)?(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:to|until|till|-)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`),
		resolve: resolveTimeRange,
	},
	{
		re: regexp.MustCompile(`\bat\s+(?:(\d{1,2}):(\d{2})(?:\s*(am|pm))?|(\d{1,2})\s*(am|pm))\b`),
		resolve: func(m []string) (timeMatch, bool) {
			if m[1] != "" {
				return resolveClock(m[1], m[2], m[3])
			}
			return resolveClock(m[4], "", m[5])
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2}):(\d{2})\s*(am|pm)\b`),
		resolve: func(m []string) (timeMatch, bool) {
			return resolveClock(m[1], m[2], m[3])
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2})\s*(am|pm)\b`),
		resolve: func(m []string) (timeMatch, bool) {
			return resolveClock(m[1], "", m[2])
		},
	},
	{
		re: regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`),
		resolve: func(m []string) (timeMatch, bool) {
			return resolveClock(m[1], m[2], "")
		},
	},
}

func matchDate(text string, now time.Time) (dateMatch, bool) {
	var best dateMatch
	found := false
	for _, p := range datePatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if found && idx[0] >= best.pos {
				break
			}
			match, ok := p.resolve(submatchText(text, idx), now)
			if !ok {
				continue
			}
			match.pos = idx[0]
			match.length = idx[1] - idx[0]
			best = match
			found = true
			break
		}
	}
	return best, found
}

func matchTime(text string) (timeMatch, bool) {
	var best timeMatch
	found := false
	for _, p := range timePatterns {
		for _, idx := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if found && idx[0] >= best.pos {
				break
			}
			match, ok := p.resolve(submatchText(text, idx))
			if !ok {
				continue
			}
			match.pos = idx[0]
			match.length = idx[1] - idx[0]
			best = match
			found = true
			break
		}
	}
	return best, found
}

// combineMatches assembles the start time and confidence from the two field
// passes. A time with no date lands on its nearest future occurrence; a date
// with no time lands on midnight of that day.
func combineMatches(d dateMatch, dateOK bool, t timeMatch, timeOK bool, now time.Time) (*time.Time, domain.Confidence) {
	loc := now.Location()
	switch {
	case dateOK && timeOK:
		start := time.Date(d.year, d.month, d.day, t.hour, t.minute, 0, 0, loc)
		if !start.After(now) {
			start = rollStep(start, d.roll)
		}
		return &start, domain.ConfidenceExplicit
	case dateOK && d.withTime:
		start := time.Date(d.year, d.month, d.day, d.hour, d.minute, 0, 0, loc)
		return &start, domain.ConfidenceExplicit
	case dateOK:
		start := time.Date(d.year, d.month, d.day, 0, 0, 0, 0, loc)
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
		if start.Before(dayStart) {
			start = rollStep(start, d.roll)
		}
		return &start, domain.ConfidenceInferred
	case timeOK:
		start := time.Date(now.Year(), now.Month(), now.Day(), t.hour, t.minute, 0, 0, loc)
		if !start.After(now) {
			start = start.AddDate(0, 0, 1)
		}
		return &start, domain.ConfidenceInferred
	default:
		return nil, domain.ConfidenceFallback
	}
}

func rollStep(start time.Time, roll rollKind) time.Time {
	switch roll {
	case rollDay:
		return start.AddDate(0, 0, 1)
	case rollWeek:
		return start.AddDate(0, 0, 7)
	case rollYear:
		return start.AddDate(1, 0, 0)
	default:
		return start
	}
}

func resolveWeekday(name string, next bool, now time.Time) dateMatch {
	days := (int(weekdays[name]) - int(now.Weekday()) + 7) % 7
	if next && days == 0 {
		days = 7
	}
	return dateOn(now.AddDate(0, 0, days), rollWeek)
}

func dateOn(t time.Time, roll rollKind) dateMatch {
	return dateMatch{year: t.Year(), month: t.Month(), day: t.Day(), roll: roll}
}

func resolveClock(hourText, minuteText, meridiem string) (timeMatch, bool) {
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return timeMatch{}, false
	}
	minute := 0
	if minuteText != "" {
		minute, err = strconv.Atoi(minuteText)
		if err != nil || minute > 59 {
			return timeMatch{}, false
		}
	}
	if meridiem != "" {
		if hour < 1 || hour > 12 {
			return timeMatch{}, false
		}
		hour = to24Hour(hour, meridiem)
	} else if hour > 23 {
		return timeMatch{}, false
	}
	return timeMatch{hour: hour, minute: minute}, true
}

// resolveTimeRange handles "from 12 to 1:30pm" style phrases, inferring a
// missing meridiem from the other end so the span stays positive. The span
// becomes the intent duration when no explicit duration phrase matched.
func resolveTimeRange(m []string) (timeMatch, bool) {
	hasFrom := m[1] != ""
	startMer, endMer := m[4], m[7]
	if !hasFrom && startMer == "" && endMer == "" {
		return timeMatch{}, false
	}

	startH, err1 := strconv.Atoi(m[2])
	endH, err2 := strconv.Atoi(m[5])
	if err1 != nil || err2 != nil {
		return timeMatch{}, false
	}
	startM, endM := 0, 0
	if m[3] != "" {
		if startM, err1 = strconv.Atoi(m[3]); err1 != nil || startM > 59 {
			return timeMatch{}, false
		}
	}
	if m[6] != "" {
		if endM, err2 = strconv.Atoi(m[6]); err2 != nil || endM > 59 {
			return timeMatch{}, false
		}
	}
	if badRangeHour(startH, startMer) || badRangeHour(endH, endMer) {
		return timeMatch{}, false
	}

	switch {
	case startMer == "" && endMer != "":
		startMer = endMer
		if minutesOfDay(startH, startM, startMer) >= minutesOfDay(endH, endM, endMer) {
			startMer = oppositeMeridiem(endMer)
		}
	case endMer == "" && startMer != "":
		endMer = startMer
		if minutesOfDay(endH, endM, endMer) <= minutesOfDay(startH, startM, startMer) {
			endMer = oppositeMeridiem(startMer)
		}
	}

	start := minutesOfDay(startH, startM, startMer)
	end := minutesOfDay(endH, endM, endMer)
	if end <= start && startMer == "" && endMer == "" {
		end += 12 * 60
	}
	span := end - start
	if span <= 0 || span > 12*60 {
		return timeMatch{}, false
	}
	return timeMatch{hour: start / 60, minute: start % 60, rangeMinutes: span}, true
}

func badRangeHour(hour int, meridiem string) bool {
	if meridiem != "" {
		return hour < 1 || hour > 12
	}
	return hour > 23
}

func minutesOfDay(hour, minute int, meridiem string) int {
	if meridiem != "" {
		hour = to24Hour(hour, meridiem)
	}
	return hour*60 + minute
}

func to24Hour(hour int, meridiem string) int {
	if meridiem == "pm" && hour != 12 {
		return hour + 12
	}
	if meridiem == "am" && hour == 12 {
		return 0
	}
	return hour
}

func oppositeMeridiem(meridiem string) string {
	if meridiem == "am" {
		return "pm"
	}
	return "am"
}
