package main

import "io"

type VMOption interface{ apply(vm *VM) }

type optionList []VMOption

func (opts optionList) apply(vm *VM) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(vm)
		}
	}
}

// VMOptions combines options into one.
func VMOptions(opts ...VMOption) VMOption { return optionList(opts) }

var defaultOptions = VMOptions(
	withOutput(io.Discard),
	withCallDepth(defaultCallDepth),
	withFixed(4),
)

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

func withOutput(w io.Writer) VMOption {
	return optFunc(func(vm *VM) { vm.out = w })
}

func withLogfn(logfn func(mess string, args ...interface{})) VMOption {
	return optFunc(func(vm *VM) { vm.logfn = logfn })
}

func withCallDepth(limit int) VMOption {
	return optFunc(func(vm *VM) {
		if limit > 0 {
			vm.maxDepth = limit
		}
	})
}

func withFixed(places int) VMOption {
	return optFunc(func(vm *VM) {
		if places < 0 {
			places = -places
		}
		vm.places = places
	})
}

func withPause(pause func()) VMOption {
	return optFunc(func(vm *VM) { vm.pause = pause })
}

func withStatFunc(stat func(x, y float64) error) VMOption {
	return optFunc(func(vm *VM) { vm.stat = stat })
}

func withStrictLabels(strict bool) VMOption {
	return optFunc(func(vm *VM) { vm.strictLabels = strict })
}
