package utils

import "golang.org/x/text/cases"

// FoldKey returns the case-folded form of s, for comparing agent and metric
// names without regard to letter case. A Caser keeps state, so each call
// gets its own.
func FoldKey(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under case folding.
func EqualFold(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}
