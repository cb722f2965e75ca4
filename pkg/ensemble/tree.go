package ensemble

import (
	"math"
	"math/rand/v2"
	"slices"
)

type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	// proba is only set on leaves.
	proba []float64
}

func (n *node) leaf() bool { return n.proba != nil }

func (n *node) predict(row []float64) []float64 {
	cur := n
	for !cur.leaf() {
		if row[cur.feature] <= cur.threshold {
			cur = cur.left
		} else {
			cur = cur.right
		}
	}

	return cur.proba
}

// treeBuilder grows one CART classification tree.
type treeBuilder struct {
	x           [][]float64
	y           []int
	classes     int
	maxDepth    int
	minSplit    int
	maxFeatures int
	rng         *rand.Rand
}

func (b *treeBuilder) counts(rows []int) []int {
	counts := make([]int, b.classes)
	for _, row := range rows {
		counts[b.y[row]]++
	}

	return counts
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}

	sum := 0.0

	for _, c := range counts {
		sum += float64(c) * float64(c)
	}

	return 1 - sum/(float64(total)*float64(total))
}

func (b *treeBuilder) newLeaf(counts []int, total int) *node {
	proba := make([]float64, len(counts))
	for i, c := range counts {
		proba[i] = float64(c) / float64(total)
	}

	return &node{proba: proba}
}

func (b *treeBuilder) build(rows []int, depth int) *node {
	counts := b.counts(rows)
	impurity := gini(counts, len(rows))

	if impurity == 0 || len(rows) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return b.newLeaf(counts, len(rows))
	}

	feature, threshold, ok := b.bestSplit(rows, counts, impurity)
	if !ok {
		return b.newLeaf(counts, len(rows))
	}

	left := make([]int, 0, len(rows))
	right := make([]int, 0, len(rows))

	for _, row := range rows {
		if b.x[row][feature] <= threshold {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit returns the split of a random subset of features that lowers the weighted Gini
// impurity the most.
func (b *treeBuilder) bestSplit(rows []int, counts []int, impurity float64) (int, float64, bool) {
	nFeatures := len(b.x[0])
	candidates := b.rng.Perm(nFeatures)[:b.maxFeatures]

	bestFeature, bestThreshold, bestScore := -1, 0.0, impurity
	sorted := slices.Clone(rows)
	left := make([]int, b.classes)
	right := make([]int, b.classes)
	total := len(rows)

	for _, feature := range candidates {
		slices.SortStableFunc(sorted, func(i, j int) int {
			switch a, c := b.x[i][feature], b.x[j][feature]; {
			case a < c:
				return -1
			case a > c:
				return 1
			default:
				return 0
			}
		})

		clear(left)
		copy(right, counts)

		for i := range total - 1 {
			label := b.y[sorted[i]]
			left[label]++
			right[label]--

			cur, next := b.x[sorted[i]][feature], b.x[sorted[i+1]][feature]
			if cur == next {
				continue
			}

			nLeft, nRight := i+1, total-i-1
			score := (float64(nLeft)*gini(left, nLeft) + float64(nRight)*gini(right, nRight)) / float64(total)

			if score < bestScore-1e-12 {
				bestFeature, bestThreshold, bestScore = feature, cur+(next-cur)/2, score
			}
		}
	}

	if bestFeature < 0 || math.IsNaN(bestThreshold) {
		return 0, 0, false
	}

	return bestFeature, bestThreshold, true
}
