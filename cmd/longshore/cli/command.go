// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a node in the CLI tree: either a group that dispatches to
// Subcommands or a leaf with a Run function.
type Command struct {
	// Name is what the user types to select this command.
	Name string

	// Summary is the one-liner printed beside Name in the parent's
	// command listing.
	Summary string

	// Description is the long-form help text. Help falls back to
	// Summary when it is empty.
	Description string

	// Usage overrides the synthesized usage line.
	Usage string

	// Examples are printed at the end of the help text.
	Examples []Example

	// Flags builds the command's flag set. Nil means the command
	// takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands makes this command a group. Dispatch matches the
	// first positional argument against their names.
	Subcommands []*Command

	// Run is the leaf behavior, given the positional arguments left
	// after flag parsing.
	Run func(args []string) error

	// parent links the dispatch chain so help can print the full
	// command path.
	parent *Command
}

// Example is one worked command line in the help text.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute resolves args against the command tree: help flags print
// help, a matching first argument descends into that subcommand, and
// otherwise flags are parsed and Run is invoked.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && wantsHelp(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 {
		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			return c.dispatch(args[0], args[1:])
		}
		if c.Run == nil {
			c.PrintHelp(os.Stderr)
			if len(args) > 0 {
				return fmt.Errorf("subcommand required (got flag %q)", args[0])
			}
			return fmt.Errorf("subcommand required")
		}
	}

	if c.Flags != nil {
		rest, err := c.parseFlags(args)
		if err != nil {
			return err
		}
		args = rest
	}

	if c.Run == nil {
		c.PrintHelp(os.Stderr)
		return fmt.Errorf("no action defined for %q", c.path())
	}
	return c.Run(args)
}

// dispatch descends into the subcommand named name, or reports the
// closest match when nothing matches.
func (c *Command) dispatch(name string, rest []string) error {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub.Execute(rest)
		}
	}
	if match := suggestCommand(name, c.Subcommands); match != "" {
		return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, match, c.path())
	}
	return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.", name, c.path())
}

// parseFlags runs the pflag parse with the library's own error output
// silenced; parse errors come back decorated with a typo suggestion
// and a pointer to --help.
func (c *Command) parseFlags(args []string) ([]string, error) {
	flagSet := c.Flags()
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		if strings.Contains(err.Error(), "unknown flag") {
			if match := suggestFlag(args, flagSet); match != "" {
				return nil, fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
					err, match, c.path())
			}
		}
		return nil, fmt.Errorf("%s\n\nRun '%s --help' for usage.", err, c.path())
	}
	return flagSet.Args(), nil
}

// PrintHelp renders the command's help text: description, usage,
// subcommand table, flag defaults, and examples.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.path()

	switch {
	case c.Description != "":
		fmt.Fprintf(w, "%s\n\n", c.Description)
	case c.Summary != "":
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	usage := c.Usage
	if usage == "" {
		if len(c.Subcommands) > 0 {
			usage = name + " <command> [flags]"
		} else {
			usage = name + " [flags]"
		}
	}
	fmt.Fprintf(w, "Usage:\n  %s\n", usage)

	if len(c.Subcommands) > 0 {
		fmt.Fprint(w, "\nCommands:\n")
		table := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(table, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		table.Flush()
	}

	if c.Flags != nil {
		flagSet := c.Flags()
		var defaults strings.Builder
		flagSet.SetOutput(&defaults)
		flagSet.PrintDefaults()
		if defaults.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", defaults.String())
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprint(w, "\nExamples:\n")
		for i, example := range c.Examples {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// path is the space-joined command chain from the root, e.g.
// "longshore ship".
func (c *Command) path() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.path() + " " + c.Name
}

func wantsHelp(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
