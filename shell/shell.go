// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shell implements a terminal console handler for user defined
// commands.
package shell

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/tabwriter"
)

// Cmd represents a registered terminal command.
type Cmd struct {
	// Name is the command name.
	Name string

	// Args defines the number of command arguments, meant to be in a
	// comma separated list.
	Args int

	// Pattern defines the command syntax and arguments.
	Pattern *regexp.Regexp

	// Syntax defines the Help() command syntax field.
	Syntax string

	// Help defines the Help() command description field.
	Help string

	// Fn defines the command handler.
	Fn func(iface *Interface, arg []string) (res string, err error)
}

var cmds = make(map[string]*Cmd)

// Add registers a terminal interface command.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Help returns a formatted string with instructions for all registered
// commands.
func Help() string {
	var help []string

	for _, cmd := range cmds {
		help = append(help, fmt.Sprintf("%s %s\t# %s", cmd.Name, cmd.Syntax, cmd.Help))
	}

	sort.Strings(help)

	b := new(strings.Builder)
	w := tabwriter.NewWriter(b, 16, 8, 0, ' ', tabwriter.TabIndent)

	fmt.Fprint(w, strings.Join(help, "\n"))
	w.Flush()

	return b.String()
}

// match resolves a command line against the registered commands.
func match(line string) (cmd *Cmd, arg []string) {
	for _, c := range cmds {
		if c.Pattern == nil {
			if c.Name == line {
				return c, nil
			}

			continue
		}

		if m := c.Pattern.FindStringSubmatch(line); len(m) > 0 && len(m)-1 == c.Args {
			return c, m[1:]
		}
	}

	return
}
