package novelty

import (
	"sort"

	"github.com/umputun/newsmith/pkg/domain"
)

const minRelatedScore = 0.05

// Related returns up to k articles most similar to current by title tokens.
// The current article is excluded, ties keep archive order, and scores <= 0.05 are dropped.
func Related(current domain.Article, articles []domain.Article, k int) []domain.Article {
	type scored struct {
		score   float64
		article domain.Article
	}

	curTokens := Tokens(current.Title)
	candidates := make([]scored, 0, len(articles))
	for _, a := range articles {
		if a.ID == current.ID {
			continue
		}
		candidates = append(candidates, scored{score: Jaccard(curTokens, Tokens(a.Title)), article: a})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })

	res := []domain.Article{}
	for _, c := range candidates {
		if len(res) >= k {
			break
		}
		if c.score <= minRelatedScore {
			break // sorted, nothing better follows
		}
		res = append(res, c.article)
	}
	return res
}
