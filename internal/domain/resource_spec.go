package domain

// ResourceSpec declares one quantitative resource a Command body
// consumes for the duration of its execution. LowerBound and Priority
// are accepted for compatibility with older plans but ignored by the
// arbiter, which only ever grants or denies against UpperBound.
type ResourceSpec struct {
	Name                 string
	UpperBound           float64
	LowerBound           float64 // accepted, ignored
	Priority             int     // accepted, ignored
	ReleaseAtTermination bool
}
