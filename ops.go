package main

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
)

// builtin is one entry in the operation library: a mnemonic, the
// stack depth it requires, and the function that runs it.  The table
// is closed; unknown mnemonics never reach dispatch.
type builtin struct {
	name  string
	arity int
	fn    func(vm *VM)
}

func trap(errno Errno, op, detail string) {
	panic(&Error{Errno: errno, Op: op, Detail: detail})
}

// finish validates an operation result before it lands on the stack.
// NaN and infinities out of finite operands mean the operation left
// its domain.
func finish(op string, v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		trap(DomainError, op, "result undefined")
	}
	return v
}

// The op constructors compute before they commit: a trap mid-compute
// must leave the stack exactly as it was, so operands are read in
// place and only replaced once the result is known good.

func unaryOp(name string, f func(vm *VM, x float64) float64) *builtin {
	return &builtin{name: name, arity: 1, fn: func(vm *VM) {
		i := len(vm.stack) - 1
		vm.stack[i] = finish(name, f(vm, vm.stack[i]))
	}}
}

// binaryOp reads x (top) and y (second) and replaces both with y OP x.
func binaryOp(name string, f func(vm *VM, y, x float64) float64) *builtin {
	return &builtin{name: name, arity: 2, fn: func(vm *VM) {
		i := len(vm.stack) - 1
		v := finish(name, f(vm, vm.stack[i-1], vm.stack[i]))
		vm.stack = vm.stack[:i]
		vm.stack[i-1] = v
	}}
}

func constOp(name string, f func(vm *VM) float64) *builtin {
	return &builtin{name: name, fn: func(vm *VM) {
		vm.stack.push(f(vm))
	}}
}

// exactInt truncates v to an integer, trapping when v is outside the
// range where float64 still represents integers exactly.
func exactInt(op string, v float64) int64 {
	t := math.Trunc(v)
	if math.IsNaN(t) || math.Abs(t) > 1<<53 {
		trap(DomainError, op, "integer overflow")
	}
	return int64(t)
}

func factorial(op string, v float64) float64 {
	n := exactInt(op, v)
	if n < 0 {
		trap(DomainError, op, "factorial of a negative value")
	}
	if n > 170 {
		trap(DomainError, op, "factorial overflow")
	}
	r := 1.0
	for i := int64(2); i <= n; i++ {
		r *= float64(i)
	}
	return r
}

var builtins map[string]*builtin

func register(ops ...*builtin) {
	for _, op := range ops {
		builtins[strings.ToLower(op.name)] = op
	}
}

func init() {
	builtins = make(map[string]*builtin)

	// binary arithmetic: y OP x, where x is the top of the stack
	register(
		binaryOp("+", func(_ *VM, y, x float64) float64 { return y + x }),
		binaryOp("-", func(_ *VM, y, x float64) float64 { return y - x }),
		binaryOp("*", func(_ *VM, y, x float64) float64 { return y * x }),
		binaryOp("/", func(_ *VM, y, x float64) float64 {
			if x == 0 {
				trap(DivisionByZero, "/", "")
			}
			return y / x
		}),
		binaryOp("^", func(_ *VM, y, x float64) float64 { return math.Pow(y, x) }),
		binaryOp("xroot", func(_ *VM, y, x float64) float64 {
			if x == 0 {
				trap(DivisionByZero, "xroot", "zeroth root")
			}
			return math.Pow(y, 1/x)
		}),
		binaryOp("gcd", func(_ *VM, y, x float64) float64 {
			a, b := exactInt("gcd", y), exactInt("gcd", x)
			if a == 0 && b == 0 {
				trap(DomainError, "gcd", "gcd(0, 0) is undefined")
			}
			if a < 0 {
				a = -a
			}
			if b < 0 {
				b = -b
			}
			for b != 0 {
				a, b = b, a%b
			}
			return float64(a)
		}),
		binaryOp("atan2", func(vm *VM, y, x float64) float64 {
			return vm.fromRadians(math.Atan2(y, x))
		}),
		binaryOp("hyp", func(_ *VM, y, x float64) float64 { return math.Hypot(x, y) }),
		binaryOp("cnr", func(_ *VM, y, x float64) float64 {
			return factorial("cnr", y) / (factorial("cnr", x) * factorial("cnr", y-x))
		}),
		binaryOp("pnr", func(_ *VM, y, x float64) float64 {
			return factorial("pnr", y) / factorial("pnr", y-x)
		}),
	)

	// % and %c keep y on the stack so it can feed the next
	// computation; that is how the HP-15C does it.
	register(
		&builtin{name: "%", arity: 2, fn: func(vm *VM) {
			i := len(vm.stack) - 1
			x, y := vm.stack[i], vm.stack[i-1]
			vm.stack[i] = finish("%", x/100*y)
		}},
		&builtin{name: "%c", arity: 2, fn: func(vm *VM) {
			i := len(vm.stack) - 1
			x, y := vm.stack[i], vm.stack[i-1]
			if y == 0 {
				trap(DivisionByZero, "%c", "")
			}
			vm.stack[i] = finish("%c", (x/y-1)*100)
		}},
		// cs copies the sign of y onto x, keeping y
		&builtin{name: "cs", arity: 2, fn: func(vm *VM) {
			i := len(vm.stack) - 1
			vm.stack[i] = math.Copysign(vm.stack[i], vm.stack[i-1])
		}},
	)

	// coordinate conversions produce two results: r>p replaces the
	// rectangular pair y, x with the polar pair angle, magnitude, and
	// p>r inverts it.  The angle honors the angular mode.
	register(
		&builtin{name: "r>p", arity: 2, fn: func(vm *VM) {
			i := len(vm.stack) - 1
			x, y := vm.stack[i], vm.stack[i-1]
			ang := finish("r>p", vm.fromRadians(math.Atan2(y, x)))
			mag := finish("r>p", math.Hypot(x, y))
			vm.stack[i-1], vm.stack[i] = ang, mag
		}},
		&builtin{name: "p>r", arity: 2, fn: func(vm *VM) {
			i := len(vm.stack) - 1
			mag, ang := vm.stack[i], vm.toRadians(vm.stack[i-1])
			yc := finish("p>r", mag*math.Sin(ang))
			xc := finish("p>r", mag*math.Cos(ang))
			vm.stack[i-1], vm.stack[i] = yc, xc
		}},
	)

	// unary arithmetic
	register(
		unaryOp("chs", func(_ *VM, x float64) float64 { return -x }),
		unaryOp("abs", func(_ *VM, x float64) float64 { return math.Abs(x) }),
		unaryOp("sq", func(_ *VM, x float64) float64 { return x * x }),
		unaryOp("sqrt", func(_ *VM, x float64) float64 {
			if x < 0 {
				trap(DomainError, "sqrt", "square root of a negative value")
			}
			return math.Sqrt(x)
		}),
		unaryOp("inv", func(_ *VM, x float64) float64 {
			if x == 0 {
				trap(DivisionByZero, "inv", "")
			}
			return 1 / x
		}),
		unaryOp("ln", func(_ *VM, x float64) float64 {
			if x <= 0 {
				trap(DomainError, "ln", "log of a non-positive value")
			}
			return math.Log(x)
		}),
		unaryOp("log", func(_ *VM, x float64) float64 {
			if x <= 0 {
				trap(DomainError, "log", "log of a non-positive value")
			}
			return math.Log10(x)
		}),
		unaryOp("exp", func(_ *VM, x float64) float64 { return math.Exp(x) }),
		unaryOp("tx", func(_ *VM, x float64) float64 { return math.Pow(10, x) }),
		unaryOp("ceil", func(_ *VM, x float64) float64 { return math.Ceil(x) }),
		unaryOp("floor", func(_ *VM, x float64) float64 { return math.Floor(x) }),
		unaryOp("int", func(_ *VM, x float64) float64 {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				trap(DomainError, "int", "integer overflow")
			}
			return math.Trunc(x)
		}),
		unaryOp("frac", func(_ *VM, x float64) float64 { return x - math.Trunc(x) }),
		unaryOp("rnd", func(vm *VM, x float64) float64 {
			p := math.Pow(10, float64(vm.places))
			return math.Round(x*p) / p
		}),
		unaryOp("!", func(_ *VM, x float64) float64 { return factorial("!", x) }),
		unaryOp("gamma", func(_ *VM, x float64) float64 { return math.Gamma(x) }),
	)

	// trigonometry, honoring the angular mode
	register(
		unaryOp("sin", func(vm *VM, x float64) float64 { return math.Sin(vm.toRadians(x)) }),
		unaryOp("cos", func(vm *VM, x float64) float64 { return math.Cos(vm.toRadians(x)) }),
		unaryOp("tan", func(vm *VM, x float64) float64 { return math.Tan(vm.toRadians(x)) }),
		unaryOp("asin", func(vm *VM, x float64) float64 {
			if x < -1 || x > 1 {
				trap(DomainError, "asin", "argument outside [-1, 1]")
			}
			return vm.fromRadians(math.Asin(x))
		}),
		unaryOp("acos", func(vm *VM, x float64) float64 {
			if x < -1 || x > 1 {
				trap(DomainError, "acos", "argument outside [-1, 1]")
			}
			return vm.fromRadians(math.Acos(x))
		}),
		unaryOp("atan", func(vm *VM, x float64) float64 { return vm.fromRadians(math.Atan(x)) }),
		unaryOp("sinh", func(_ *VM, x float64) float64 { return math.Sinh(x) }),
		unaryOp("cosh", func(_ *VM, x float64) float64 { return math.Cosh(x) }),
		unaryOp("tanh", func(_ *VM, x float64) float64 { return math.Tanh(x) }),
		unaryOp("asinh", func(_ *VM, x float64) float64 { return math.Asinh(x) }),
		unaryOp("acosh", func(_ *VM, x float64) float64 {
			if x < 1 {
				trap(DomainError, "acosh", "argument below 1")
			}
			return math.Acosh(x)
		}),
		unaryOp("atanh", func(_ *VM, x float64) float64 {
			if x <= -1 || x >= 1 {
				trap(DomainError, "atanh", "argument outside (-1, 1)")
			}
			return math.Atanh(x)
		}),
	)

	// unit conversions
	register(
		unaryOp("in", func(_ *VM, x float64) float64 { return x / 2.54 }),
		unaryOp("cm", func(_ *VM, x float64) float64 { return x * 2.54 }),
		unaryOp("gal", func(_ *VM, x float64) float64 {
			return math.Pow(math.Cbrt(x*1000)/2.54, 3) / 231
		}),
		unaryOp("ltr", func(_ *VM, x float64) float64 { return x * 231 * 2.54 * 2.54 * 2.54 / 1000 }),
		unaryOp("lbs", func(_ *VM, x float64) float64 { return x * 2.204622622 }),
		unaryOp("kg", func(_ *VM, x float64) float64 { return x / 2.204622622 }),
		unaryOp("c>f", func(_ *VM, x float64) float64 { return x*9/5 + 32 }),
		unaryOp("f>c", func(_ *VM, x float64) float64 { return (x - 32) * 5 / 9 }),
		unaryOp("dh", func(_ *VM, x float64) float64 {
			h := math.Trunc(x)
			m := math.Trunc((x - h) * 100)
			s := round4((x - h - m/100) * 10000)
			return h + m/60 + s/3600
		}),
		unaryOp("hms", func(_ *VM, x float64) float64 {
			h := math.Trunc(x)
			m := math.Trunc(math.Mod(x*60, 60))
			s := round4(math.Mod(x*3600, 60))
			return h + m/100 + s/10000
		}),
	)

	// constants
	register(
		constOp("pi", func(_ *VM) float64 { return math.Pi }),
		constOp("tau", func(_ *VM) float64 { return 2 * math.Pi }),
		constOp("rand", func(_ *VM) float64 { return rand.Float64() }),
	)

	// ratio replaces x with the exact integer fraction num/den it
	// represents, numerator second and denominator on top.
	register(
		&builtin{name: "ratio", arity: 1, fn: func(vm *VM) {
			i := len(vm.stack) - 1
			num, den := integerRatio("ratio", vm.stack[i])
			vm.stack[i] = num
			vm.stack.push(den)
		}},
	)

	// stack manipulation
	register(
		&builtin{name: "dup", arity: 1, fn: func(vm *VM) {
			vm.stack.push(vm.stack.peek())
		}},
		&builtin{name: "swap", arity: 2, fn: func(vm *VM) {
			x, y := vm.stack.pop(), vm.stack.pop()
			vm.stack.push(x)
			vm.stack.push(y)
		}},
		&builtin{name: "ru", fn: func(vm *VM) { vm.stack.rollUp() }},
		&builtin{name: "rd", fn: func(vm *VM) { vm.stack.rollDown() }},
		&builtin{name: "del", arity: 1, fn: func(vm *VM) { vm.stack.pop() }},
		&builtin{name: "cls", fn: func(vm *VM) { vm.stack.clear() }},
		&builtin{name: "nop", fn: func(vm *VM) {}},
	)

	// mode, display, and session commands
	register(
		&builtin{name: "deg", fn: func(vm *VM) { vm.mode = degrees }},
		&builtin{name: "rad", fn: func(vm *VM) { vm.mode = radians }},
		&builtin{name: "show", arity: 1, fn: func(vm *VM) {
			fmt.Fprintf(vm.out, "x: %s%s\n", formatFull(vm.stack.peek()), vm.modeSuffix())
		}},
		&builtin{name: "pse", fn: func(vm *VM) {
			if vm.pause != nil {
				vm.pause()
			}
		}},
		&builtin{name: "mem", fn: func(vm *VM) {
			vmDumper{vm: vm, out: vm.out}.dumpRegisters()
		}},
		&builtin{name: "prog", fn: func(vm *VM) {
			vmDumper{vm: vm, out: vm.out}.dumpPrograms()
		}},
		&builtin{name: "clrg", fn: func(vm *VM) {
			clear(vm.regs)
		}},
		&builtin{name: "stat", arity: 2, fn: func(vm *VM) {
			if vm.stat == nil {
				trap(DomainError, "stat", "no statistics collaborator configured")
			}
			x := vm.stack[len(vm.stack)-1]
			y := vm.stack[len(vm.stack)-2]
			if err := vm.stat(x, y); err != nil {
				panic(fmt.Errorf("stat: %w", err))
			}
		}},
	)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// integerRatio decomposes v into the reduced integer fraction num/den
// with v == num/den exactly.  Doubling the mantissa until it is whole
// stops at an odd numerator, so no further reduction is needed.
func integerRatio(op string, v float64) (num, den float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		trap(DomainError, op, "no integer ratio")
	}
	frac, exp := math.Frexp(v)
	for frac != math.Trunc(frac) {
		frac *= 2
		exp--
	}
	num, den = frac, 1
	for ; exp > 0; exp-- {
		num *= 2
	}
	for ; exp < 0; exp++ {
		den *= 2
	}
	return finish(op, num), finish(op, den)
}
