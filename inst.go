package main

import (
	"fmt"
	"strconv"
	"strings"
)

// instKind tags the instruction variant.  Instructions are immutable
// once parsed; the program store owns them exclusively.
type instKind int

const (
	instPush   instKind = iota // push a numeric literal
	instOp                     // dispatch a built-in operation
	instStore                  // STO/RCL/DEL with a register operand
	instTest                   // conditional skip predicate
	instJump                   // GTO/GSB with a target label
	instReturn                 // RTN
	instLabel                  // label marker, not executed
	instExec                   // EXC, interactive transfer into a program
	instFix                    // FIX with a numeric operand
)

type storeKind int

const (
	storeSto storeKind = iota
	storeRcl
	storeDel
)

var storeNames = [...]string{"sto", "rcl", "del"}

type jumpKind int

const (
	jumpGoto jumpKind = iota
	jumpGosub
)

var jumpNames = [...]string{"gto", "gsb"}

// instr is one parsed instruction.  Only the fields implied by kind
// are meaningful.
type instr struct {
	kind  instKind
	val   float64  // instPush, instFix
	op    *builtin // instOp
	store storeKind
	jump  jumpKind
	test  *testPred // instTest
	name  string    // register name, label name, or jump target
}

func (in instr) String() string {
	switch in.kind {
	case instPush:
		return strconv.FormatFloat(in.val, 'g', -1, 64)
	case instOp:
		return strings.ToUpper(in.op.name)
	case instStore:
		return fmt.Sprintf("%s %s", strings.ToUpper(storeNames[in.store]), in.name)
	case instTest:
		return in.test.name
	case instJump:
		return fmt.Sprintf("%s %s", strings.ToUpper(jumpNames[in.jump]), in.name)
	case instReturn:
		return "RTN"
	case instLabel:
		return fmt.Sprintf("LBL %s", in.name)
	case instExec:
		return fmt.Sprintf("EXC %s", in.name)
	case instFix:
		return fmt.Sprintf("FIX %d", int(in.val))
	}
	return fmt.Sprintf("instr(%d)", int(in.kind))
}

// testPred is one conditional-skip predicate.  Unary predicates
// consume the top value, binary ones consume the top two; a false
// result skips the instruction that follows.
type testPred struct {
	name   string
	binary bool
	pred   func(x, y float64) bool
}

var testPreds = map[string]*testPred{
	"x=0?":  {name: "x=0?", pred: func(x, _ float64) bool { return x == 0 }},
	"x!=0?": {name: "x!=0?", pred: func(x, _ float64) bool { return x != 0 }},
	"x>0?":  {name: "x>0?", pred: func(x, _ float64) bool { return x > 0 }},
	"x<0?":  {name: "x<0?", pred: func(x, _ float64) bool { return x < 0 }},
	"x>=0?": {name: "x>=0?", pred: func(x, _ float64) bool { return x >= 0 }},
	"x<=0?": {name: "x<=0?", pred: func(x, _ float64) bool { return x <= 0 }},
	"x=y?":  {name: "x=y?", binary: true, pred: func(x, y float64) bool { return x == y }},
	"x!=y?": {name: "x!=y?", binary: true, pred: func(x, y float64) bool { return x != y }},
	"x>y?":  {name: "x>y?", binary: true, pred: func(x, y float64) bool { return x > y }},
	"x<y?":  {name: "x<y?", binary: true, pred: func(x, y float64) bool { return x < y }},
	"x>=y?": {name: "x>=y?", binary: true, pred: func(x, y float64) bool { return x >= y }},
	"x<=y?": {name: "x<=y?", binary: true, pred: func(x, y float64) bool { return x <= y }},
}

// program is one labeled instruction sequence in the program store.
type program struct {
	name string
	line int // source line of the LBL, for diagnostics
	code []instr
}
