package argconfig

import (
	"fmt"
	"strconv"
)

type nargsKind int

const (
	nargsOne nargsKind = iota
	nargsOptional
	nargsAny
	nargsSome
	nargsExact
)

// NArgs describes how many values an option takes.
// Anything other than NArgsOne and NArgsOptional yields a []any value.
type NArgs struct {
	kind nargsKind
	n    int
}

var (
	// NArgsOne takes a single value (default).
	NArgsOne = NArgs{kind: nargsOne}
	// NArgsOptional takes zero or one value; only meaningful for positionals.
	NArgsOptional = NArgs{kind: nargsOptional}
	// NArgsAny takes zero or more values.
	NArgsAny = NArgs{kind: nargsAny}
	// NArgsSome takes one or more values.
	NArgsSome = NArgs{kind: nargsSome}
)

// NArgsExactly takes exactly n values.
func NArgsExactly(n int) NArgs {
	return NArgs{kind: nargsExact, n: n}
}

// IsList reports whether the resolved value is a list.
func (a NArgs) IsList() bool {
	return a.kind == nargsAny || a.kind == nargsSome || a.kind == nargsExact
}

// allowsEmpty reports whether a positional with this arity may be left out.
func (a NArgs) allowsEmpty() bool {
	return a.kind == nargsOptional || a.kind == nargsAny
}

func (a NArgs) String() string {
	switch a.kind {
	case nargsOptional:
		return "?"
	case nargsAny:
		return "*"
	case nargsSome:
		return "+"
	case nargsExact:
		return strconv.Itoa(a.n)
	default:
		return "1"
	}
}

// checkCount validates the number of values supplied for a list option.
func (a NArgs) checkCount(count int) error {
	switch a.kind {
	case nargsSome:
		if count == 0 {
			return fmt.Errorf("expected at least one value")
		}
	case nargsExact:
		if count != a.n {
			return fmt.Errorf("expected exactly %d values, got %d", a.n, count)
		}
	}
	return nil
}
