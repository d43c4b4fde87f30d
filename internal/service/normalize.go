package service

import (
	"encoding/json"
	"math"

	"nightbite/internal/heuristic"
	"nightbite/internal/model"
)

// NormalizeIntent validates an untyped model answer. It returns false when v
// is not a JSON object; every field is otherwise coerced, never trusted.
func NormalizeIntent(v any) (model.ParsedIntent, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return model.ParsedIntent{}, false
	}

	intent := model.NewParsedIntent()
	intent.Terms = normalizeTerms(obj["terms"])
	intent.LocationTerms = normalizeTerms(obj["locationTerms"])

	if minutes, ok := finiteNumber(obj["targetMinutes"]); ok {
		intent.TargetMinutes = model.IntPtr(heuristic.ClampMinutes(minutes))
	}
	if budget, ok := finiteNumber(obj["maxBudgetYen"]); ok {
		intent.MaxBudgetYen = model.IntPtr(heuristic.ClampBudget(budget))
	}
	intent.WantsNearby = truthy(obj["wantsNearby"])

	return intent, true
}

func normalizeTerms(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	terms := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if term := heuristic.Sanitize(s); term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

func finiteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// truthy mirrors JSON-ish truthiness: false, 0, NaN, "" and null are false
func truthy(v any) bool {
	switch b := v.(type) {
	case nil:
		return false
	case bool:
		return b
	case float64:
		return b != 0 && !math.IsNaN(b)
	case int:
		return b != 0
	case json.Number:
		f, err := b.Float64()
		return err != nil || f != 0
	case string:
		return b != ""
	default:
		return true
	}
}
