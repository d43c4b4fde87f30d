// Package heuristic turns free-text search phrases into a ParsedIntent using
// a fixed sequence of pattern stages. It performs no I/O.
package heuristic

import (
	"math"
	"strconv"
	"strings"

	"nightbite/internal/model"
)

const minutesPerDay = 24 * 60

// Extract parses raw text into a structured intent.
//
// Each stage consumes what it matched from a lowercased working copy, so later
// and broader stages never see the same characters twice. Stage order is
// location, time phrases, clock times, budget, proximity, residual terms.
func Extract(raw string) model.ParsedIntent {
	intent := model.NewParsedIntent()
	text := strings.ToLower(raw)
	if strings.TrimSpace(text) == "" {
		return intent
	}

	text = extractLocations(text, &intent)
	text = extractTimePhrases(text, &intent)
	text = extractClockTime(text, &intent)
	text = extractBudget(text, &intent)
	text = extractProximity(text, &intent)

	for _, token := range strings.Fields(text) {
		term := Sanitize(token)
		if term == "" || stopwords[term] {
			continue
		}
		intent.Terms = append(intent.Terms, term)
	}

	return intent
}

func extractLocations(text string, intent *model.ParsedIntent) string {
	for i, re := range locationPatterns {
		if !re.MatchString(text) {
			continue
		}
		intent.LocationTerms = append(intent.LocationTerms, LocationKeywords[i])
		text = re.ReplaceAllString(text, " ")
	}
	return text
}

// extractTimePhrases keeps the latest time mentioned
func extractTimePhrases(text string, intent *model.ParsedIntent) string {
	best := -1
	for _, phrase := range timePhrases {
		for _, re := range phrase.patterns {
			if !re.MatchString(text) {
				continue
			}
			if phrase.minutes > best {
				best = phrase.minutes
			}
			text = re.ReplaceAllString(text, " ")
		}
	}
	if best >= 0 {
		intent.TargetMinutes = model.IntPtr(best)
	}
	return text
}

// extractClockTime applies the last explicit clock time, overriding any time
// phrase. Bare numbers tagged as money are left for the budget stage.
func extractClockTime(text string, intent *model.ParsedIntent) string {
	matches := clockPattern.FindAllStringSubmatchIndex(text, -1)

	var consumed [][2]int
	last := -1
	for _, m := range matches {
		hour, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			continue
		}
		minute := 0
		hasMinutes := m[4] >= 0
		if hasMinutes {
			minute, _ = strconv.Atoi(text[m[4]:m[5]])
		}
		meridiem := ""
		if m[6] >= 0 {
			meridiem = text[m[6]:m[7]]
		}

		if hour > 24 || minute > 59 {
			continue
		}
		if !hasMinutes && meridiem == "" && currencyTagged(text, m[0], m[1]) {
			continue
		}

		consumed = append(consumed, [2]int{m[0], m[1]})
		last = toMinutes(hour, minute, meridiem)
	}

	if last < 0 {
		return text
	}
	intent.TargetMinutes = model.IntPtr(last)

	for i := len(consumed) - 1; i >= 0; i-- {
		text = text[:consumed[i][0]] + " " + text[consumed[i][1]:]
	}
	return text
}

func currencyTagged(text string, start, end int) bool {
	return currencyBefore.MatchString(text[:start]) || currencyAfter.MatchString(text[end:])
}

func toMinutes(hour, minute int, meridiem string) int {
	switch {
	case meridiem == "pm":
		hour = hour%12 + 12
	case meridiem == "am" && hour == 12:
		hour = 0
	}
	if hour == 24 {
		hour = 0
	}
	return ClampMinutes(float64(hour*60 + minute))
}

// extractBudget keeps the tightest cap implied anywhere in the text
func extractBudget(text string, intent *model.ParsedIntent) string {
	var candidates []int

	for _, m := range underPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseYen(m[1], m[2] != ""); ok {
			candidates = append(candidates, v)
		}
	}
	text = underPattern.ReplaceAllString(text, " ")

	for _, m := range yenSignPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseYen(m[1], m[2] != ""); ok {
			candidates = append(candidates, v)
		}
	}
	text = yenSignPattern.ReplaceAllString(text, " ")

	for _, m := range yenWordPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseYen(m[1], false); ok {
			candidates = append(candidates, v)
		}
	}
	text = yenWordPattern.ReplaceAllString(text, " ")

	for _, m := range thousandPattern.FindAllStringSubmatch(text, -1) {
		if v, ok := parseYen(m[1], true); ok {
			candidates = append(candidates, v)
		}
	}
	text = thousandPattern.ReplaceAllString(text, " ")

	for _, hint := range budgetHints {
		for _, re := range hint.patterns {
			if !re.MatchString(text) {
				continue
			}
			candidates = append(candidates, hint.yen)
			text = re.ReplaceAllString(text, " ")
		}
	}

	if len(candidates) == 0 {
		return text
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c < best {
			best = c
		}
	}
	intent.MaxBudgetYen = model.IntPtr(best)
	return text
}

// parseYen rejects amounts that are negative or fractional. Amounts beyond
// the int32 range are capped by ClampBudget.
func parseYen(raw string, thousands bool) (int, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if thousands {
		v *= 1000
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) {
		return 0, false
	}
	return ClampBudget(v), true
}

func extractProximity(text string, intent *model.ParsedIntent) string {
	for _, re := range proximityPatterns {
		if !re.MatchString(text) {
			continue
		}
		intent.WantsNearby = true
		text = re.ReplaceAllString(text, " ")
	}
	return text
}

// ClampMinutes rounds v and clamps it into [0, 1440)
func ClampMinutes(v float64) int {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v >= minutesPerDay {
		return minutesPerDay - 1
	}
	return int(v)
}

// ClampBudget rounds v and clamps it into [0, MaxInt32]
func ClampBudget(v float64) int {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}
