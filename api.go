package main

import "io"

// New builds a calculator VM with an empty stack, register table, and
// program store.  The built-in operation library is registered once
// at package init and shared by every VM.
func New(opts ...VMOption) *VM {
	vm := &VM{
		regs:  make(map[string]float64),
		progs: make(map[string]*program),
	}
	defaultOptions.apply(vm)
	VMOptions(opts...).apply(vm)
	return vm
}

// WithOutput directs SHOW, MEM and PROG display output to w.
func WithOutput(w io.Writer) VMOption { return withOutput(w) }

// WithLogf enables execution trace logging.
func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }

// WithCallDepth bounds GSB nesting; exceeding it traps with
// CallStackOverflow.
func WithCallDepth(limit int) VMOption { return withCallDepth(limit) }

// WithFixed sets the display decimal places used by RND and the
// interactive stack display.
func WithFixed(places int) VMOption { return withFixed(places) }

// WithPause installs the display collaborator's PSE hook.
func WithPause(pause func()) VMOption { return withPause(pause) }

// WithStatFunc installs the statistics collaborator invoked by STAT
// with the top two stack values (which STAT leaves in place).
func WithStatFunc(stat func(x, y float64) error) VMOption { return withStatFunc(stat) }

// WithStrictLabels rejects duplicate LBL definitions at load time
// instead of the default last-wins overwrite.
func WithStrictLabels(strict bool) VMOption { return withStrictLabels(strict) }
