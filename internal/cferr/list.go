package cferr

import (
	"fmt"
	"strings"
)

// List is an error that holds every problem found at once, like all mistakes in a region file.
//
// errors.Is and errors.As look at What and all of Children.
type List struct {
	// What is the kind of this list, like ErrInvalidConfig.
	What error

	Children []error
}

// Error implements error interface.
// Each child is written on its own indented line.
func (l List) Error() string {
	var b strings.Builder
	b.WriteString(l.What.Error())
	b.WriteString(":")

	for _, e := range l.Children {
		for _, s := range strings.Split(e.Error(), "\n") {
			b.WriteString("\n  ")
			b.WriteString(s)
		}
	}

	return b.String()
}

// Unwrap returns What followed by Children.
func (l List) Unwrap() []error {
	errs := make([]error, 0, len(l.Children)+1)
	errs = append(errs, l.What)
	return append(errs, l.Children...)
}

// ListBuilder collects errors for a List.
type ListBuilder struct {
	What     error
	Children []error
}

// Push appends errors as children.
// Nil errors are ignored, so the result of a check function can be pushed as-is.
func (lb *ListBuilder) Push(errs ...error) {
	for _, err := range errs {
		if err != nil {
			lb.Children = append(lb.Children, err)
		}
	}
}

// Pushf pushes a child made by fmt.Errorf.
func (lb *ListBuilder) Pushf(format string, values ...interface{}) {
	lb.Push(fmt.Errorf(format, values...))
}

// Build returns a List, or nil if nothing was pushed.
func (lb *ListBuilder) Build() error {
	if len(lb.Children) == 0 {
		return nil
	}

	return List{
		What:     lb.What,
		Children: lb.Children,
	}
}
