package shots

// Transitions returns the ascending indices of edges whose similarity is
// strictly below threshold.
func Transitions(edges []Edge, threshold float64) []int {
	var out []int
	for i, e := range edges {
		if e.Similarity < threshold {
			out = append(out, i)
		}
	}
	return out
}

// Boundaries picks one representative frame per shot: the midpoint
// floor((a+b)/2) of every pair of consecutive transitions a, b. M transitions
// give M-1 boundaries; the spans before the first and after the last
// transition are not shots.
func Boundaries(edges []Edge, threshold float64) []int {
	transitions := Transitions(edges, threshold)
	if len(transitions) < 2 {
		return []int{}
	}
	out := make([]int, 0, len(transitions)-1)
	for k := 0; k+1 < len(transitions); k++ {
		out = append(out, (transitions[k]+transitions[k+1])/2)
	}
	return out
}
