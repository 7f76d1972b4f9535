package main

import (
	"fmt"
	"unicode/utf8"
)

// runeValue is a pflag.Value for a single-character flag.
type runeValue struct{ r *rune }

func newRuneValue(r *rune) *runeValue { return &runeValue{r: r} }

func (v *runeValue) String() string {
	if v.r == nil || *v.r == 0 {
		return ""
	}
	if *v.r == '\t' {
		return `\t`
	}
	return string(*v.r)
}

func (v *runeValue) Set(s string) error {
	if s == `\t` {
		*v.r = '\t'
		return nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return fmt.Errorf("expected a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	*v.r = r
	return nil
}

func (v *runeValue) Type() string { return "char" }
