package canon

import (
	"cmp"
	"fmt"
)

// Result is the outcome of a three-way comparison.
type Result int8

const (
	LessThan Result = iota - 1
	Equal
	GreaterThan
)

func (r Result) String() string {
	switch r {
	case LessThan:
		return "LessThan"
	case Equal:
		return "Equal"
	case GreaterThan:
		return "GreaterThan"
	}
	return fmt.Sprintf("Result(%d)", int8(r))
}

// Int returns -1, 0 or 1, the convention of slices.SortFunc and friends.
func (r Result) Int() int { return int(r) }

// Reverse swaps LessThan and GreaterThan.
func (r Result) Reverse() Result { return -r }

func compareOrdered[T cmp.Ordered](a, b T) Result { return Result(cmp.Compare(a, b)) }

// compareBool orders false before true.
func compareBool(a, b bool) Result {
	switch {
	case a == b:
		return Equal
	case !a:
		return LessThan
	default:
		return GreaterThan
	}
}

// InvariantError reports a bug in the comparator or one of its
// collaborators. It is raised with panic: a wrong ordering could let a
// caller drop a bounds check that is still needed.
type InvariantError struct {
	Rule   string
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("canon: invariant violated in %s: %s", e.Rule, e.Detail)
}

func invariant(rule, format string, args ...any) *InvariantError {
	return &InvariantError{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}
