package heuristic

import (
	"regexp"
	"strings"
)

// LocationKeywords is the closed vocabulary of neighborhoods and cities the
// extractor recognizes. Matches are reported in this order.
var LocationKeywords = []string{
	"shibuya", "shinjuku", "ginza", "roppongi", "harajuku", "ikebukuro",
	"akihabara", "asakusa", "ebisu", "nakameguro", "meguro", "shimokitazawa",
	"ueno", "omotesando", "aoyama", "daikanyama", "kichijoji", "koenji",
	"tsukiji", "nihonbashi", "marunouchi", "shinbashi", "yurakucho", "kanda",
	"akasaka", "azabu", "sangenjaya", "tokyo", "yokohama", "kamakura",
	"osaka", "namba", "umeda", "kyoto", "kobe", "nagoya", "fukuoka",
	"sapporo", "okinawa",
}

// timePhrase maps a group of phrases to minutes past midnight
type timePhrase struct {
	minutes  int
	patterns []*regexp.Regexp
}

var timePhrases = []timePhrase{
	{minutes: 23 * 60, patterns: compileWords("late night", "late-night", "midnight")},
	{minutes: 11 * 60, patterns: compileWords("brunch")},
	{minutes: 8 * 60, patterns: compileWords("breakfast", "morning")},
	{minutes: 12 * 60, patterns: compileWords("lunch", "midday")},
	{minutes: 19 * 60, patterns: compileWords("dinner", "evening")},
}

// budgetHint maps a group of price words to an implied yen cap
type budgetHint struct {
	yen      int
	patterns []*regexp.Regexp
}

var budgetHints = []budgetHint{
	{yen: 1000, patterns: compileWords("cheap", "affordable", "low-cost", "low cost", "inexpensive", "budget")},
	{yen: 3000, patterns: compileWords("mid-range", "mid range", "midrange", "moderate", "casual")},
}

var proximityPatterns = compileWords("near me", "nearby", "close by", "around me")

var locationPatterns = compileWords(LocationKeywords...)

// number accepts thousands separators and an optional decimal part
const number = `(\d[\d,]*(?:\.\d+)?)`

var (
	// H, HH, H:MM, HH:MM with an optional meridiem
	clockPattern = regexp.MustCompile(`\b(\d{1,2})(?::(\d{2}))?(?:\s*(am|pm))?\b`)

	// a bare number is money, not a clock time, when it sits next to one of these
	currencyBefore = regexp.MustCompile(`(?:[¥￥$]|\d[.,]|\b(?:under|below|less\s+than))\s*$`)
	currencyAfter  = regexp.MustCompile(`^(?:\s*(?:yen\b|円|k\b)|[.,]\d)`)

	underPattern    = regexp.MustCompile(`\b(?:under|below|less\s+than)\s*[¥￥]?\s*` + number + `(?:\s*(k)\b)?(?:\s*(?:yen\b|円))?`)
	yenSignPattern  = regexp.MustCompile(`[¥￥]\s*` + number + `(?:\s*(k)\b)?`)
	yenWordPattern  = regexp.MustCompile(`\b` + number + `\s*(?:yen\b|円)`)
	thousandPattern = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*k\b`)
)

var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true,
	"in": true, "at": true, "on": true, "for": true, "of": true, "to": true,
	"with": true, "from": true, "by": true, "near": true, "around": true,
	"me": true, "my": true, "i": true, "we": true, "us": true, "some": true,
	"any": true, "is": true, "are": true, "that": true, "this": true,
	"where": true, "what": true, "place": true, "places": true, "spot": true,
	"spots": true, "best": true, "good": true, "great": true, "open": true,
	"find": true, "show": true, "want": true, "looking": true, "under": true,
	"below": true, "less": true, "than": true, "plan": true, "plans": true,
	"yen": true, "円": true,
}

// compileWords builds whole-word, whitespace-tolerant patterns for phrases
func compileWords(phrases ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(phrases))
	for _, phrase := range phrases {
		parts := strings.Fields(phrase)
		for i, part := range parts {
			parts[i] = regexp.QuoteMeta(part)
		}
		patterns = append(patterns, regexp.MustCompile(`\b`+strings.Join(parts, `\s+`)+`\b`))
	}
	return patterns
}
