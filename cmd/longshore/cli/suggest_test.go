// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"ship", "", 4},
		{"", "probe", 5},
		{"ship", "ship", 0},
		{"shpi", "ship", 2},
		{"prob", "probe", 1},
		{"verison", "version", 2},
		{"endpiont", "endpoint", 2},
		{"kitten", "sitting", 3},
	}
	for _, c := range cases {
		if got := levenshtein(c.a, c.b); got != c.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestLevenshteinSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"ship", "probe"},
		{"batch-size", "batch-interval"},
		{"a", "abcdef"},
	}
	for _, pair := range pairs {
		forward := levenshtein(pair[0], pair[1])
		backward := levenshtein(pair[1], pair[0])
		if forward != backward {
			t.Errorf("levenshtein(%q, %q) = %d but reversed = %d", pair[0], pair[1], forward, backward)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "ship"},
		{Name: "probe"},
		{Name: "version"},
	}

	cases := []struct {
		input string
		want  string
	}{
		{"shpi", "ship"},
		{"prove", "probe"},
		{"verison", "version"},
		{"zzzzzzzz", ""},
	}
	for _, c := range cases {
		if got := suggestCommand(c.input, commands); got != c.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	makeFlags := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("ship", pflag.ContinueOnError)
		flagSet.String("endpoint", "", "")
		flagSet.Int("batch-size", 20, "")
		flagSet.Bool("verbose", false, "")
		return flagSet
	}

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"--endpiont", "x"}, "--endpoint"},
		{[]string{"--batch-sze=5"}, "--batch-size"},
		{[]string{"--verbos"}, "--verbose"},
		{[]string{"--endpoint", "x"}, ""}, // defined, nothing to suggest
		{[]string{"--qqqqqqqq"}, ""},
		{[]string{"positional"}, ""},
	}
	for _, c := range cases {
		if got := suggestFlag(c.args, makeFlags()); got != c.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", c.args, got, c.want)
		}
	}
}
