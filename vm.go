package main

import (
	"context"
	"errors"
	"io"
	"math"

	"github.com/Battleship-Potemkin-Village/RPN-Calculator/internal/panicerr"
)

const defaultCallDepth = 256

type angleMode int

const (
	radians angleMode = iota
	degrees
)

// frame is one saved resumption point for GSB/RTN: the program to
// resume and the instruction index to resume at.
type frame struct {
	prog *program
	idx  int
}

// VM is the calculator virtual machine: a numeric stack, a register
// table, a program store, and the state the execution engine carries
// between instructions.  It is single-threaded; nothing here locks.
type VM struct {
	stack  stack
	regs   map[string]float64
	progs  map[string]*program
	frames []frame

	mode   angleMode
	places int // display decimals for RND and the dumper

	maxDepth     int
	strictLabels bool

	out   io.Writer
	pause func()
	stat  func(x, y float64) error
	logfn func(mess string, args ...interface{})
}

func (vm *VM) logf(mess string, args ...interface{}) {
	if vm.logfn != nil {
		vm.logfn(mess, args...)
	}
}

func (vm *VM) haltif(err error) {
	if err != nil {
		panic(err)
	}
}

func (vm *VM) toRadians(x float64) float64 {
	if vm.mode == degrees {
		return x * math.Pi / 180
	}
	return x
}

func (vm *VM) fromRadians(x float64) float64 {
	if vm.mode == degrees {
		return x * 180 / math.Pi
	}
	return x
}

func (vm *VM) modeSuffix() string {
	if vm.mode == degrees {
		return "  DEG"
	}
	return ""
}

func (vm *VM) pushFrame(p *program, idx int) {
	if len(vm.frames) >= vm.maxDepth {
		panic(&Error{Errno: CallStackOverflow, Op: "gsb", Name: p.name})
	}
	vm.frames = append(vm.frames, frame{prog: p, idx: idx})
}

func (vm *VM) popFrame() (*program, int) {
	if len(vm.frames) == 0 {
		return nil, 0
	}
	f := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	return f.prog, f.idx
}

func (vm *VM) lookupProgram(name, op string) *program {
	p, ok := vm.progs[name]
	if !ok {
		panic(&Error{Errno: UnknownLabel, Op: op, Name: name})
	}
	return p
}

func (vm *VM) storeOp(in instr) {
	switch in.store {
	case storeSto:
		vm.stack.need(1, "sto")
		vm.regs[in.name] = vm.stack.peek()
	case storeRcl:
		v, ok := vm.regs[in.name]
		if !ok {
			panic(&Error{Errno: UnknownRegister, Op: "rcl", Name: in.name})
		}
		vm.stack.push(v)
	case storeDel:
		if _, ok := vm.regs[in.name]; !ok {
			panic(&Error{Errno: UnknownRegister, Op: "del", Name: in.name})
		}
		delete(vm.regs, in.name)
	}
}

func (vm *VM) evalTest(t *testPred) bool {
	if t.binary {
		vm.stack.need(2, t.name)
		x, y := vm.stack.pop(), vm.stack.pop()
		return t.pred(x, y)
	}
	vm.stack.need(1, t.name)
	return t.pred(vm.stack.pop(), 0)
}

// exec is the fetch-decode-execute loop.  The program counter is a
// (program, index) pair; tests skip by advancing the index an extra
// step, jumps replace the pair, and GSB/RTN move it through the frame
// stack.  Falling off the textual end of a sequence behaves like RTN.
func (vm *VM) exec(ctx context.Context, p *program) {
	cur, pc := p, 0
	for steps := 0; ; {
		if steps++; steps&1023 == 0 {
			vm.haltif(ctx.Err())
		}
		if pc >= len(cur.code) {
			if cur, pc = vm.popFrame(); cur == nil {
				return
			}
			continue
		}
		in := cur.code[pc]
		if vm.logfn != nil {
			vm.logf("exec %s[%d] %v -- f:%d s:%v", cur.name, pc, in, len(vm.frames), vm.stack)
		}
		pc++
		switch in.kind {
		case instPush:
			vm.stack.push(in.val)
		case instOp:
			vm.stack.need(in.op.arity, in.op.name)
			in.op.fn(vm)
		case instStore:
			vm.storeOp(in)
		case instFix:
			vm.places = int(in.val)
		case instTest:
			if !vm.evalTest(in.test) {
				pc++ // skip the next instruction
			}
		case instJump:
			tgt := vm.lookupProgram(in.name, jumpNames[in.jump])
			if in.jump == jumpGosub {
				vm.pushFrame(cur, pc)
			}
			cur, pc = tgt, 0
		case instExec:
			cur, pc = vm.lookupProgram(in.name, "exc"), 0
		case instReturn:
			if cur, pc = vm.popFrame(); cur == nil {
				return
			}
		case instLabel:
			// marker only
		}
	}
}

// runTopLevel executes p as a fresh top-level invocation, recovering
// traps into typed errors.  The stack and register table keep
// whatever state they had at the point of failure; there is no
// rollback.
func (vm *VM) runTopLevel(ctx context.Context, name string, p *program) error {
	err := panicerr.Recover(name, func() error {
		vm.frames = vm.frames[:0]
		vm.exec(ctx, p)
		return nil
	})
	return demote(err)
}

// demote strips the panic wrapper from calculator traps and context
// cancellation, leaving the wrapper (and its captured stack) only
// around genuine panics.
func demote(err error) error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.Canceled) {
		return context.Canceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return context.DeadlineExceeded
	}
	return err
}

// RunProgram executes the stored program under label as a top-level
// invocation, returning when it reaches a top-level RTN, exhausts its
// instruction sequence, or traps.
func (vm *VM) RunProgram(ctx context.Context, label string) error {
	p, ok := vm.progs[label]
	if !ok {
		return &Error{Errno: UnknownLabel, Op: "exc", Name: label}
	}
	return vm.runTopLevel(ctx, "program "+label, p)
}

// EvalLine parses one interactive command line and executes it
// against the current stack and registers.
func (vm *VM) EvalLine(ctx context.Context, line string) error {
	code, err := parseLine(line)
	if err != nil {
		return err
	}
	if len(code) == 0 {
		return nil
	}
	return vm.runTopLevel(ctx, "command line", &program{code: code})
}

// ExecuteToken executes a single operation token (with its operand,
// when the operation takes one).
func (vm *VM) ExecuteToken(ctx context.Context, tok string) error {
	return vm.EvalLine(ctx, tok)
}

// LoadPrograms parses program text and installs the resulting program
// store.  A parse error installs nothing.
func (vm *VM) LoadPrograms(r io.Reader) error {
	progs, err := parsePrograms(r, vm.strictLabels)
	if err != nil {
		return err
	}
	vm.progs = progs
	return nil
}
