package scan

// Substitution replaces the half-open span [Start, End) of the buffer a
// pass ran over with Text.
type Substitution struct {
	Start int
	End   int
	Text  string
	// Line is the line the replaced command started on.
	Line int
}

// Len returns the number of source bytes replaced.
func (s Substitution) Len() int {
	return s.End - s.Start
}

// Ordered reports whether subs are sorted by Start and pairwise disjoint.
func Ordered(subs []Substitution) bool {
	prevEnd := 0
	for _, s := range subs {
		if s.Start < prevEnd || s.End < s.Start {
			return false
		}
		prevEnd = s.End
	}
	return true
}
