package filters

import (
	"sort"
	"strings"
	"time"

	"github.com/omnisearch/backend/internal/cache"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/utils"
)

// Engine applies user-selected filters and proposes new ones from the
// result distribution. Filters are pure predicates: results are never
// mutated, and independent filters commute.
type Engine struct {
	suggestionCache *cache.TTL
}

func NewEngine(suggestionCache *cache.TTL) *Engine {
	return &Engine{suggestionCache: suggestionCache}
}

// Apply keeps a result iff it passes every active filter. Inactive
// filters, unknown types, and unknown operators are no-ops.
func (e *Engine) Apply(results []models.RankedResult, filters []models.SearchFilter) []models.RankedResult {
	active := make([]models.SearchFilter, 0, len(filters))
	for _, f := range filters {
		if f.Active {
			active = append(active, f)
		}
	}
	if len(active) == 0 {
		return results
	}

	out := make([]models.RankedResult, 0, len(results))
	for _, r := range results {
		pass := true
		for _, f := range active {
			if !matches(r.CanonicalResult, f) {
				pass = false
				break
			}
		}
		if pass {
			out = append(out, r)
		}
	}
	return out
}

func matches(res models.CanonicalResult, f models.SearchFilter) bool {
	switch f.Type {
	case models.FilterDateRange:
		return matchDateRange(res.CreatedAt, f.Value)
	case models.FilterFileType:
		return matchString(fileTypeOf(res), f)
	case models.FilterAuthor:
		return matchAuthor(res.Author, f)
	case models.FilterIntegration:
		return matchString(res.Source, f) || matchString(res.IntegrationType, f)
	case models.FilterTags:
		return matchTags(res.Tags, f)
	case models.FilterSize:
		return matchSize(res.Size, f)
	case models.FilterVisibility:
		return strings.EqualFold(res.Visibility, asString(f.Value))
	case models.FilterContentType:
		return matchString(res.ContentType, f)
	default:
		// Unknown filter types never reject.
		return true
	}
}

func fileTypeOf(res models.CanonicalResult) string {
	if res.Metadata != nil {
		if ft, ok := res.Metadata["fileType"].(string); ok && ft != "" {
			return ft
		}
	}
	return res.ContentType
}

func matchDateRange(createdAt time.Time, value interface{}) bool {
	bounds, ok := value.(map[string]interface{})
	if !ok {
		return true
	}

	if from, ok := parseTime(bounds["from"]); ok && createdAt.Before(from) {
		return false
	}
	if to, ok := parseTime(bounds["to"]); ok && createdAt.After(to) {
		return false
	}
	return true
}

func parseTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func matchString(actual string, f models.SearchFilter) bool {
	switch f.Operator {
	case models.OpEquals:
		return strings.EqualFold(actual, asString(f.Value))
	case models.OpContains:
		return strings.Contains(strings.ToLower(actual), strings.ToLower(asString(f.Value)))
	case models.OpIn:
		return inList(actual, asStringSlice(f.Value))
	case models.OpNotIn:
		return !inList(actual, asStringSlice(f.Value))
	default:
		return true
	}
}

func matchAuthor(author string, f models.SearchFilter) bool {
	switch f.Operator {
	case models.OpEquals:
		return strings.EqualFold(author, asString(f.Value))
	case models.OpIn:
		return inList(author, asStringSlice(f.Value))
	default:
		// Author filtering is a substring match by default.
		return strings.Contains(strings.ToLower(author), strings.ToLower(asString(f.Value)))
	}
}

func matchTags(tags []string, f models.SearchFilter) bool {
	wanted := asStringSlice(f.Value)
	if len(wanted) == 0 {
		return true
	}

	switch f.Operator {
	case models.OpIn:
		// Any wanted tag present.
		for _, w := range wanted {
			if inList(w, tags) {
				return true
			}
		}
		return false
	case models.OpNotIn:
		for _, w := range wanted {
			if inList(w, tags) {
				return false
			}
		}
		return true
	default:
		// equals/contains: every wanted tag present.
		for _, w := range wanted {
			if !inList(w, tags) {
				return false
			}
		}
		return true
	}
}

func matchSize(size int64, f models.SearchFilter) bool {
	switch f.Operator {
	case models.OpGreaterThan:
		threshold, ok := asFloat(f.Value)
		return !ok || float64(size) > threshold
	case models.OpLessThan:
		threshold, ok := asFloat(f.Value)
		return !ok || float64(size) < threshold
	case models.OpBetween:
		bounds := asFloatSlice(f.Value)
		if len(bounds) != 2 {
			return true
		}
		return float64(size) >= bounds[0] && float64(size) <= bounds[1]
	case models.OpEquals:
		exact, ok := asFloat(f.Value)
		return !ok || float64(size) == exact
	default:
		return true
	}
}

func inList(needle string, haystack []string) bool {
	for _, h := range haystack {
		if strings.EqualFold(needle, h) {
			return true
		}
	}
	return false
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v interface{}) []string {
	switch vv := v.(type) {
	case []string:
		return vv
	case []interface{}:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{vv}
	}
	return nil
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func asFloatSlice(v interface{}) []float64 {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		if n, ok := asFloat(item); ok {
			out = append(out, n)
		}
	}
	return out
}

// Suggest analyzes the result distribution and proposes filters when a
// dimension is skewed or broad. Suggestions are advisory and sorted by
// descending confidence; they are never auto-applied.
func (e *Engine) Suggest(query string, results []models.RankedResult) []models.FilterSuggestion {
	if len(results) == 0 {
		return nil
	}

	cacheKey := suggestionKey(query, results)
	if e.suggestionCache != nil {
		if cached, ok := e.suggestionCache.Get(cacheKey); ok {
			if suggestions, ok := cached.([]models.FilterSuggestion); ok {
				return suggestions
			}
		}
	}

	var suggestions []models.FilterSuggestion
	total := float64(len(results))

	if ft, count := dominant(results, func(r models.RankedResult) string { return fileTypeOf(r.CanonicalResult) }); count >= 2 {
		if share := float64(count) / total; share >= 0.4 {
			suggestions = append(suggestions, models.FilterSuggestion{
				Filter: models.SearchFilter{
					Type:     models.FilterFileType,
					Operator: models.OpEquals,
					Value:    ft,
				},
				Label:      "Only " + ft + " results",
				Confidence: share,
			})
		}
	}

	if source, count := dominant(results, func(r models.RankedResult) string { return r.Source }); count >= 2 {
		if share := float64(count) / total; share >= 0.5 && share < 1.0 {
			suggestions = append(suggestions, models.FilterSuggestion{
				Filter: models.SearchFilter{
					Type:     models.FilterIntegration,
					Operator: models.OpEquals,
					Value:    source,
				},
				Label:      "Only results from " + source,
				Confidence: share * 0.9,
			})
		}
	}

	if author, count := dominant(results, func(r models.RankedResult) string { return r.Author }); author != "" && count >= 2 {
		if share := float64(count) / total; share >= 0.3 {
			suggestions = append(suggestions, models.FilterSuggestion{
				Filter: models.SearchFilter{
					Type:     models.FilterAuthor,
					Operator: models.OpEquals,
					Value:    author,
				},
				Label:      "Only results by " + author,
				Confidence: share * 0.8,
			})
		}
	}

	if spansOverAYear(results) {
		suggestions = append(suggestions, models.FilterSuggestion{
			Filter: models.SearchFilter{
				Type:     models.FilterDateRange,
				Operator: models.OpBetween,
				Value: map[string]interface{}{
					"from": time.Now().AddDate(0, -1, 0).Format(time.RFC3339),
				},
			},
			Label:      "Only the last month",
			Confidence: 0.6,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})

	if e.suggestionCache != nil {
		e.suggestionCache.Set(cacheKey, suggestions)
	}

	return suggestions
}

func dominant(results []models.RankedResult, key func(models.RankedResult) string) (string, int) {
	counts := make(map[string]int)
	for _, r := range results {
		if k := key(r); k != "" {
			counts[k]++
		}
	}

	best, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < best) {
			best, bestCount = k, c
		}
	}
	return best, bestCount
}

func spansOverAYear(results []models.RankedResult) bool {
	var oldest, newest time.Time
	for _, r := range results {
		if r.CreatedAt.IsZero() {
			continue
		}
		if oldest.IsZero() || r.CreatedAt.Before(oldest) {
			oldest = r.CreatedAt
		}
		if newest.IsZero() || r.CreatedAt.After(newest) {
			newest = r.CreatedAt
		}
	}
	if oldest.IsZero() || newest.IsZero() {
		return false
	}
	return newest.Sub(oldest) > 365*24*time.Hour
}

func suggestionKey(query string, results []models.RankedResult) string {
	var b strings.Builder
	b.WriteString(query)
	for _, r := range results {
		b.WriteByte('|')
		b.WriteString(r.ID)
	}
	return utils.HashString(b.String())
}
