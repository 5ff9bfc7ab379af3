// Copyright (c) The crimson authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package boot

// handoff state referenced from handoff.s, the old stack may no longer be
// addressed once the switch happens.
var (
	handoffCtx   *Context
	handoffEntry func(*Context)
)

// defined in handoff.s
func stackJump(top uint64)

// Handoff switches execution to the kernel stack selected in the boot
// context and transfers control to entry. It must be called only after a
// successful boot services exit and it does not return: if entry returns the
// CPU is halted.
func Handoff(ctx *Context, entry func(*Context)) {
	handoffCtx = ctx
	handoffEntry = entry

	stackJump(ctx.Stack.End() &^ 15)
}

// handoffMain runs on the kernel stack.
//
//go:nosplit
func handoffMain() {
	handoffEntry(handoffCtx)
}
