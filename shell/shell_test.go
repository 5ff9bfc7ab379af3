// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"regexp"
	"strings"
	"testing"
)

func TestMatch(t *testing.T) {
	Add(Cmd{
		Name: "plain",
		Help: "plain command",
		Fn: func(_ *Interface, _ []string) (string, error) {
			return "", nil
		},
	})

	Add(Cmd{
		Name:    "peek",
		Args:    2,
		Pattern: regexp.MustCompile(`^peek ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex offset> <size>",
		Help:    "peek memory",
		Fn: func(_ *Interface, arg []string) (string, error) {
			return strings.Join(arg, ","), nil
		},
	})

	if cmd, _ := match("plain"); cmd == nil || cmd.Name != "plain" {
		t.Fatal("could not match plain command")
	}

	cmd, arg := match("peek 80000000 16")

	if cmd == nil || cmd.Name != "peek" {
		t.Fatal("could not match pattern command")
	}

	if len(arg) != 2 || arg[0] != "80000000" || arg[1] != "16" {
		t.Fatalf("unexpected arguments %v", arg)
	}

	if cmd, _ := match("peek nothex 16"); cmd != nil {
		t.Fatal("invalid arguments matched")
	}

	if cmd, _ := match("missing"); cmd != nil {
		t.Fatal("unknown command matched")
	}

	if !strings.Contains(Help(), "peek memory") {
		t.Fatal("help does not list registered commands")
	}
}
