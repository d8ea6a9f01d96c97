package rank

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/omnisearch/backend/internal/llm"
	"github.com/omnisearch/backend/internal/models"
	"github.com/omnisearch/backend/pkg/logger"
)

// Scorer is the external ranking service boundary. *llm.Client
// satisfies it.
type Scorer interface {
	ScoreResults(ctx context.Context, query string, candidates []llm.RankCandidate) ([]llm.RankScore, error)
}

// Ranker orders canonical results by relevance. The primary path asks
// the ranking service; when that fails or returns garbage, a
// deterministic recency-and-term-overlap heuristic keeps the ordering
// total. Count in equals count out in both paths.
type Ranker struct {
	scorer Scorer
	now    func() time.Time
}

func New(scorer Scorer) *Ranker {
	return &Ranker{scorer: scorer, now: time.Now}
}

// NewWithClock allows a fixed clock for reproducible heuristic scores.
func NewWithClock(scorer Scorer, now func() time.Time) *Ranker {
	return &Ranker{scorer: scorer, now: now}
}

func (r *Ranker) Rank(ctx context.Context, query models.ProcessedQuery, results []models.CanonicalResult) []models.RankedResult {
	if len(results) == 0 {
		return []models.RankedResult{}
	}

	ranked, err := r.rankWithService(ctx, query, results)
	if err != nil {
		logger.Warn("Ranking service unavailable, using heuristic order", zap.Error(err))
		ranked = r.rankHeuristic(query, results)
	}

	// Stable sort keeps transformer order for equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RelevanceScore > ranked[j].RelevanceScore
	})

	return ranked
}

func (r *Ranker) rankWithService(ctx context.Context, query models.ProcessedQuery, results []models.CanonicalResult) ([]models.RankedResult, error) {
	if r.scorer == nil {
		return nil, errNoScorer
	}

	candidates := make([]llm.RankCandidate, 0, len(results))
	for _, res := range results {
		snippet := res.Content
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		candidates = append(candidates, llm.RankCandidate{
			ID:      res.ID,
			Title:   res.Title,
			Snippet: snippet,
			Source:  res.Source,
		})
	}

	scores, err := r.scorer.ScoreResults(ctx, query.Processed, candidates)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]llm.RankScore, len(scores))
	for _, s := range scores {
		byID[s.ID] = s
	}

	ranked := make([]models.RankedResult, 0, len(results))
	for _, res := range results {
		score, ok := byID[res.ID]
		if !ok {
			// The service skipped this result; score it heuristically so
			// nothing is dropped.
			ranked = append(ranked, models.RankedResult{
				CanonicalResult: res,
				RelevanceScore:  r.heuristicScore(query, res),
				RankingReason:   "heuristic score (not ranked by service)",
			})
			continue
		}
		ranked = append(ranked, models.RankedResult{
			CanonicalResult: res,
			RelevanceScore:  clamp(score.Score),
			RankingReason:   score.Reason,
		})
	}

	return ranked, nil
}

func (r *Ranker) rankHeuristic(query models.ProcessedQuery, results []models.CanonicalResult) []models.RankedResult {
	ranked := make([]models.RankedResult, 0, len(results))
	for _, res := range results {
		ranked = append(ranked, models.RankedResult{
			CanonicalResult: res,
			RelevanceScore:  r.heuristicScore(query, res),
			RankingReason:   "heuristic: recency and term overlap",
		})
	}
	return ranked
}

// heuristicScore blends term overlap with the query (60%) and recency
// (40%). Deterministic for a fixed clock.
func (r *Ranker) heuristicScore(query models.ProcessedQuery, res models.CanonicalResult) float64 {
	terms := queryTerms(query.Processed)

	overlap := 0.0
	if len(terms) > 0 {
		haystack := strings.ToLower(res.Title + " " + res.Content)
		matched := 0
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				matched++
			}
		}
		overlap = float64(matched) / float64(len(terms))
	}

	recency := 0.0
	if !res.CreatedAt.IsZero() {
		ageDays := r.now().Sub(res.CreatedAt).Hours() / 24
		if ageDays < 0 {
			ageDays = 0
		}
		// Half-life of roughly 30 days.
		recency = math.Exp(-ageDays / 43)
	}

	return clamp(0.6*overlap + 0.4*recency)
}

// queryTerms tokenizes the query, dropping punctuation and one-letter
// tokens. Falls back to whitespace splitting when tokenization fails.
func queryTerms(query string) []string {
	doc, err := prose.NewDocument(query, prose.WithExtraction(false), prose.WithTagging(false))
	if err != nil {
		return fieldsLower(query)
	}

	var terms []string
	for _, tok := range doc.Tokens() {
		t := strings.ToLower(tok.Text)
		if len(t) < 2 || !hasLetterOrDigit(t) {
			continue
		}
		terms = append(terms, t)
	}
	if len(terms) == 0 {
		return fieldsLower(query)
	}
	return terms
}

func fieldsLower(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return true
		}
	}
	return false
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

type noScorerError struct{}

func (noScorerError) Error() string { return "no ranking service configured" }

var errNoScorer = noScorerError{}
