package ranking

import (
	"github.com/ChiragAJain/shl-recommender/internal/catalogue"
)

// BalanceTestTypes keeps technical and behavioural assessments both
// represented when the query asks for knowledge (K) and personality (P) test
// types: the best K-typed and P-typed results are interleaved, deduplicated,
// backfilled with the remainder, and re-sorted by final score before
// truncation. When the query does not want both types the ranking is returned
// truncated but otherwise untouched.
func BalanceTestTypes(results []*Result, wantTypes []string, nResults int) []*Result {
	wantsK, wantsP := false, false
	for _, t := range wantTypes {
		switch t {
		case catalogue.TypeKnowledge:
			wantsK = true
		case catalogue.TypePersonality:
			wantsP = true
		}
	}

	if !wantsK || !wantsP {
		return truncate(results, nResults)
	}

	var bestK, bestP, other []*Result
	for _, res := range results {
		isK := res.Item.HasTestType(catalogue.TypeKnowledge)
		isP := res.Item.HasTestType(catalogue.TypePersonality)
		if isK {
			bestK = append(bestK, res)
		}
		if isP {
			bestP = append(bestP, res)
		}
		if !isK && !isP {
			other = append(other, res)
		}
	}

	seen := make(map[string]struct{}, nResults)
	balanced := make([]*Result, 0, nResults)

	add := func(res *Result) {
		if len(balanced) >= nResults {
			return
		}
		if _, ok := seen[res.Item.ID]; ok {
			return
		}
		seen[res.Item.ID] = struct{}{}
		balanced = append(balanced, res)
	}

	longest := len(bestK)
	if len(bestP) > longest {
		longest = len(bestP)
	}
	for i := 0; i < longest; i++ {
		if i < len(bestK) {
			add(bestK[i])
		}
		if i < len(bestP) {
			add(bestP[i])
		}
	}
	for _, res := range other {
		add(res)
	}

	SortResults(balanced)
	for rank, res := range balanced {
		res.Rank = rank + 1
	}

	return balanced
}

func truncate(results []*Result, nResults int) []*Result {
	if nResults < len(results) {
		results = results[:nResults]
	}
	for rank, res := range results {
		res.Rank = rank + 1
	}
	return results
}
