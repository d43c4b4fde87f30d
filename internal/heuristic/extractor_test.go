package heuristic

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nightbite/internal/model"
)

func intent(terms, locations []string, minutes, budget *int, nearby bool) model.ParsedIntent {
	if terms == nil {
		terms = []string{}
	}
	if locations == nil {
		locations = []string{}
	}
	return model.ParsedIntent{
		Terms:         terms,
		LocationTerms: locations,
		TargetMinutes: minutes,
		MaxBudgetYen:  budget,
		WantsNearby:   nearby,
	}
}

var ptr = model.IntPtr

func TestExtract_Scenarios(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  model.ParsedIntent
	}{
		{
			name:  "late night ramen in shibuya",
			input: "late night ramen in shibuya",
			want:  intent([]string{"ramen"}, []string{"shibuya"}, ptr(1380), nil, false),
		},
		{
			name:  "cheap izakaya near me",
			input: "cheap izakaya near me",
			want:  intent([]string{"izakaya"}, nil, nil, ptr(1000), true),
		},
		{
			name:  "empty",
			input: "",
			want:  intent(nil, nil, nil, nil, false),
		},
		{
			name:  "whitespace only",
			input: " \t\n ",
			want:  intent(nil, nil, nil, nil, false),
		},
		{
			name:  "yen sign dinner in ginza",
			input: "¥3000 dinner in ginza",
			want:  intent(nil, []string{"ginza"}, ptr(1140), ptr(3000), false),
		},
		{
			name:  "full query",
			input: "late night ramen under 2000 yen near me in shibuya",
			want:  intent([]string{"ramen"}, []string{"shibuya"}, ptr(1380), ptr(2000), true),
		},
		{
			name:  "uppercase input",
			input: "Late Night RAMEN in Shibuya",
			want:  intent([]string{"ramen"}, []string{"shibuya"}, ptr(1380), nil, false),
		},
		{
			name:  "duplicates are kept",
			input: "ramen ramen",
			want:  intent([]string{"ramen", "ramen"}, nil, nil, nil, false),
		},
		{
			name:  "quotes and wildcards stripped",
			input: `"spicy" ramen*`,
			want:  intent([]string{"spicy", "ramen"}, nil, nil, nil, false),
		},
		{
			name:  "locations reported in vocabulary order",
			input: "ramen in meguro or nakameguro",
			want:  intent([]string{"ramen"}, []string{"nakameguro", "meguro"}, nil, nil, false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.input))
		})
	}
}

func TestExtract_TimeOfDay(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{"latest phrase wins", "brunch and dinner plans", ptr(19 * 60)},
		{"breakfast", "breakfast spots", ptr(8 * 60)},
		{"midday", "midday soba", ptr(12 * 60)},
		{"midnight beats evening", "evening or midnight bar", ptr(23 * 60)},
		{"pm clock", "sushi at 7pm", ptr(19 * 60)},
		{"clock with minutes", "ramen 8:45", ptr(8*60 + 45)},
		{"clock overrides phrase", "dinner at 6:30", ptr(6*60 + 30)},
		{"last clock wins", "lunch, 9am or 8:15pm", ptr(20*60 + 15)},
		{"12am is midnight", "drinks 12am", ptr(0)},
		{"12:30am", "drinks 12:30am", ptr(30)},
		{"12pm is noon", "curry 12pm", ptr(12 * 60)},
		{"hour 24 wraps", "ramen 24:00", ptr(0)},
		{"hour out of range ignored", "ramen 30", nil},
		{"minutes out of range ignored", "ramen 10:75", nil},
		{"no time signal", "tonkatsu", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.input).TargetMinutes)
		})
	}
}

func TestExtract_TimePhraseTermsConsumed(t *testing.T) {
	got := Extract("brunch and dinner plans")
	assert.Empty(t, got.Terms)
	assert.Equal(t, ptr(1140), got.TargetMinutes)
}

func TestExtract_Budget(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *int
	}{
		{"minimum across candidates", "cheap but mid-range place under 5000 yen", ptr(1000)},
		{"under", "ramen under 1500", ptr(1500)},
		{"below with yen", "below 2500 yen", ptr(2500)},
		{"less than", "less than 800 円", ptr(800)},
		{"yen sign", "¥1200 lunch", ptr(1200)},
		{"fullwidth yen sign", "￥1200 lunch", ptr(1200)},
		{"yen word", "gyoza 900 yen", ptr(900)},
		{"yen kanji", "gyoza 900円", ptr(900)},
		{"k suffix", "2k izakaya", ptr(2000)},
		{"fractional k suffix", "1.5k yakitori", ptr(1500)},
		{"under with k", "under 5k", ptr(5000)},
		{"thousands separator", "2,000 yen gyoza", ptr(2000)},
		{"mid-range hint", "moderate sushi", ptr(3000)},
		{"tightest explicit amount", "under 3000 yen or ¥2500", ptr(2500)},
		{"fractional yen rejected", "¥999.5 bento", nil},
		{"no budget signal", "ramen", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.input).MaxBudgetYen)
		})
	}
}

// Bare 1-2 digit numbers are clock times unless they are tagged as money.
// Currency context wins over the clock stage.
func TestExtract_ClockVersusCurrencyPrecedence(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantMinutes *int
		wantBudget  *int
		wantTerms   []string
	}{
		{"under protects small amount", "ramen under 20 yen", nil, ptr(20), []string{"ramen"}},
		{"yen suffix protects", "udon 15 yen", nil, ptr(15), []string{"udon"}},
		{"yen sign protects", "¥20 snacks", nil, ptr(20), []string{"snacks"}},
		{"kanji suffix protects", "tea 12円", nil, ptr(12), []string{"tea"}},
		{"four digit amount never a clock", "under 2000 yen", nil, ptr(2000), []string{}},
		{"decimal k never a clock", "1.5k yakitori", nil, ptr(1500), []string{"yakitori"}},
		{"thousands separator never a clock", "1,500 yen", nil, ptr(1500), []string{}},
		{"bare number is a clock hour", "izakaya at 9", ptr(9 * 60), nil, []string{"izakaya"}},
		{"meridiem is always a clock", "under 9pm", ptr(21 * 60), nil, []string{}},
		{"clock and budget together", "ramen at 10pm under 1000 yen", ptr(22 * 60), ptr(1000), []string{"ramen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.input)
			assert.Equal(t, tt.wantMinutes, got.TargetMinutes, "targetMinutes")
			assert.Equal(t, tt.wantBudget, got.MaxBudgetYen, "maxBudgetYen")
			assert.Equal(t, tt.wantTerms, got.Terms, "terms")
		})
	}
}

func TestExtract_Proximity(t *testing.T) {
	for _, input := range []string{"ramen near me", "nearby ramen", "ramen close by", "ramen around me"} {
		t.Run(input, func(t *testing.T) {
			got := Extract(input)
			assert.True(t, got.WantsNearby)
			assert.Equal(t, []string{"ramen"}, got.Terms)
		})
	}

	assert.False(t, Extract("ramen near shibuya station").WantsNearby)
}

func TestExtract_Totality(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"\xff\xfe\xfd",
		"🍜🍜🍜 ラーメン",
		"　全角スペース　",
		"¥",
		"¥¥¥ k k yen 円",
		"under",
		"12: :30 ::",
		strings.Repeat("9", 500),
		strings.Repeat("under 9 ", 200),
		"24pm 99:99 -500 yen",
		"¥99999999999999999999999",
		"\x00\x01 ramen ‮",
	}

	for _, input := range inputs {
		t.Run("", func(t *testing.T) {
			var got model.ParsedIntent
			assert.NotPanics(t, func() { got = Extract(input) })
			assert.NotNil(t, got.Terms)
			assert.NotNil(t, got.LocationTerms)
			if got.TargetMinutes != nil {
				assert.GreaterOrEqual(t, *got.TargetMinutes, 0)
				assert.Less(t, *got.TargetMinutes, 1440)
			}
			if got.MaxBudgetYen != nil {
				assert.GreaterOrEqual(t, *got.MaxBudgetYen, 0)
				assert.LessOrEqual(t, *got.MaxBudgetYen, math.MaxInt32)
			}
			for _, term := range got.Terms {
				assert.NotEmpty(t, term)
				assert.False(t, stopwords[term], "stopword %q leaked", term)
			}
		})
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ramen", "ramen"},
		{"  *Ramen!! ", "ramen"},
		{`"izakaya"`, "izakaya"},
		{"mid-range", "mid-range"},
		{"%%", ""},
		{"'", ""},
		{"“shibuya”", "shibuya"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), tt.in)
	}
}

func TestClampMinutes(t *testing.T) {
	assert.Equal(t, 0, ClampMinutes(-5))
	assert.Equal(t, 1439, ClampMinutes(1440))
	assert.Equal(t, 1439, ClampMinutes(1e12))
	assert.Equal(t, 601, ClampMinutes(600.6))
}

func TestClampBudget(t *testing.T) {
	assert.Equal(t, 0, ClampBudget(-5))
	assert.Equal(t, 1000, ClampBudget(999.6))
	assert.Equal(t, math.MaxInt32, ClampBudget(math.MaxInt32))
	assert.Equal(t, math.MaxInt32, ClampBudget(5e9))
}

func TestExtract_HugeBudgetIsCapped(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"under amount", "under 5000000000 yen ramen"},
		{"yen sign", "¥9,999,999,999 omakase"},
		{"k suffix", "sushi under 9000000k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.input)
			require.NotNil(t, got.MaxBudgetYen)
			assert.Equal(t, math.MaxInt32, *got.MaxBudgetYen)
		})
	}
}
