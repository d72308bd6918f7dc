package conversion

import "spvlower/internal/ir"

// RewritePattern rewrites one operation kind into target form. Match
// failure (false, nil) is not an error: the driver keeps trying other
// patterns and only fails when an illegal op attracts none.
type RewritePattern interface {
	// Kind is the root operation kind the pattern anchors on.
	Kind() ir.OpKind
	// MatchAndRewrite inspects op and, when it matches, performs the
	// rewrite through rw. It must leave the module untouched when it
	// declines.
	MatchAndRewrite(op *ir.Op, rw *Rewriter) (bool, error)
}

// PatternSet indexes rewrite patterns by root kind so that trying
// patterns against a node never scans unrelated rules.
type PatternSet struct {
	byKind map[ir.OpKind][]RewritePattern
}

// NewPatternSet returns an empty set.
func NewPatternSet() *PatternSet {
	return &PatternSet{byKind: make(map[ir.OpKind][]RewritePattern)}
}

// Add registers patterns.
func (ps *PatternSet) Add(patterns ...RewritePattern) {
	for _, p := range patterns {
		ps.byKind[p.Kind()] = append(ps.byKind[p.Kind()], p)
	}
}

// For returns the candidate patterns for an operation kind.
func (ps *PatternSet) For(kind ir.OpKind) []RewritePattern {
	return ps.byKind[kind]
}

// Len reports the total number of registered patterns.
func (ps *PatternSet) Len() int {
	n := 0
	for _, list := range ps.byKind {
		n += len(list)
	}
	return n
}
