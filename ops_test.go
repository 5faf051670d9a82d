package main

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalOn(t *testing.T, vm *VM, line string) error {
	t.Helper()
	return vm.EvalLine(context.Background(), line)
}

func eval(t *testing.T, line string) *VM {
	t.Helper()
	vm := New()
	require.NoError(t, evalOn(t, vm, line))
	return vm
}

func evalErr(t *testing.T, line string) error {
	t.Helper()
	vm := New()
	err := evalOn(t, vm, line)
	require.Error(t, err, "expected %q to fail", line)
	return err
}

func top(t *testing.T, vm *VM) float64 {
	t.Helper()
	require.NotEmpty(t, vm.stack, "expected a result on the stack")
	return vm.stack.peek()
}

func TestOps_arithmetic(t *testing.T) {
	for _, tc := range []struct {
		line string
		want float64
	}{
		{"3 4 +", 7},
		{"8 2 -", 6},
		{"6 7 *", 42},
		{"22 7 /", 22.0 / 7},
		{"2 10 ^", 1024},
		{"27 3 XROOT", 3},
		{"12 18 GCD", 6},
		{"-4 6 GCD", 2},
		{"3 4 HYP", 5},
		{"5 2 PNR", 20},
		{"5 2 CNR", 10},
		{"5 CHS", -5},
		{"-5 ABS", 5},
		{"12 SQ", 144},
		{"9 SQRT", 3},
		{"4 INV", 0.25},
		{"1 EXP", math.E},
		{"100 LOG", 2},
		{"2 TX", 100},
		{"3.25 CEIL", 4},
		{"3.75 FLOOR", 3},
		{"-3.75 INT", -3},
		{"3.75 FRAC", 0.75},
		{"5 !", 120},
		{"0 !", 1},
		{"PI", math.Pi},
		{"TAU", 2 * math.Pi},
		{"100 C>F", 212},
		{"32 F>C", 0},
		{"2.54 IN", 1},
		{"1 CM", 2.54},
	} {
		t.Run(tc.line, func(t *testing.T) {
			assert.InDelta(t, tc.want, top(t, eval(t, tc.line)), 1e-9)
		})
	}
}

func TestOps_domainErrors(t *testing.T) {
	for _, tc := range []struct {
		line string
		want error
	}{
		{"1 0 /", DivisionByZero},
		{"0 INV", DivisionByZero},
		{"5 0 XROOT", DivisionByZero},
		{"0 110 %C", DivisionByZero},
		{"0 0 GCD", DomainError},
		{"-1 SQRT", DomainError},
		{"0 LN", DomainError},
		{"-2 LOG", DomainError},
		{"2 ASIN", DomainError},
		{"-2 ACOS", DomainError},
		{"0.5 ACOSH", DomainError},
		{"1 ATANH", DomainError},
		{"-1 !", DomainError},
		{"200 !", DomainError},
		{"1e300 1e300 GCD", DomainError},
	} {
		t.Run(tc.line, func(t *testing.T) {
			err := evalErr(t, tc.line)
			assert.True(t, errors.Is(err, tc.want), "expected %v, got %+v", tc.want, err)
		})
	}
}

func TestOps_percentKeepsY(t *testing.T) {
	vm := eval(t, "200 15 %")
	assert.Equal(t, stack{200, 30}, vm.stack)

	vm = eval(t, "100 110 %C")
	require.Len(t, vm.stack, 2)
	assert.Equal(t, 100.0, vm.stack[0])
	assert.InDelta(t, 10, vm.stack[1], 1e-9)
}

func TestOps_copySign(t *testing.T) {
	vm := eval(t, "-3 5 CS")
	assert.Equal(t, stack{-3, -5}, vm.stack)
}

func TestOps_angularMode(t *testing.T) {
	vm := New()
	require.NoError(t, evalOn(t, vm, "90 SIN"))
	assert.InDelta(t, math.Sin(90), top(t, vm), 1e-12, "radians by default")

	vm = New()
	require.NoError(t, evalOn(t, vm, "DEG 90 SIN"))
	assert.InDelta(t, 1, top(t, vm), 1e-12)

	vm = New()
	require.NoError(t, evalOn(t, vm, "DEG 60 COS"))
	assert.InDelta(t, 0.5, top(t, vm), 1e-12)

	vm = New()
	require.NoError(t, evalOn(t, vm, "DEG 1 ATAN"))
	assert.InDelta(t, 45, top(t, vm), 1e-12)

	vm = New()
	require.NoError(t, evalOn(t, vm, "DEG 1 1 ATAN2 RAD PI 4 / -"))
	assert.InDelta(t, 45-math.Pi/4, top(t, vm), 1e-12, "RAD switches back mid-line")
}

func TestOps_fixAndRnd(t *testing.T) {
	vm := New()
	require.NoError(t, evalOn(t, vm, "FIX 2 PI RND"))
	assert.Equal(t, 3.14, top(t, vm))

	require.NoError(t, evalOn(t, vm, "CLS FIX -3 PI RND"))
	assert.Equal(t, 3.142, top(t, vm), "FIX uses the absolute value")
}

func TestOps_show(t *testing.T) {
	var out strings.Builder
	vm := New(WithOutput(&out))
	require.NoError(t, evalOn(t, vm, "2.5 SHOW"))
	assert.Equal(t, "x: 2.5\n", out.String())
	assert.Equal(t, stack{2.5}, vm.stack, "SHOW must not pop")

	out.Reset()
	require.NoError(t, evalOn(t, vm, "DEG SHOW"))
	assert.Equal(t, "x: 2.5  DEG\n", out.String(), "SHOW reflects the angular mode")
}

func TestOps_pause(t *testing.T) {
	paused := 0
	vm := New(WithPause(func() { paused++ }))
	require.NoError(t, evalOn(t, vm, "1 PSE 2"))
	assert.Equal(t, 1, paused)
	assert.Equal(t, stack{1, 2}, vm.stack, "PSE must not touch the stack")
}

func TestOps_statCollaborator(t *testing.T) {
	var gotX, gotY float64
	vm := New(WithStatFunc(func(x, y float64) error {
		gotX, gotY = x, y
		return nil
	}))
	require.NoError(t, evalOn(t, vm, "3 4 STAT"))
	assert.Equal(t, 4.0, gotX)
	assert.Equal(t, 3.0, gotY)
	assert.Equal(t, stack{3, 4}, vm.stack, "STAT leaves its operands in place")

	err := evalOn(t, New(), "3 4 STAT")
	assert.True(t, errors.Is(err, DomainError), "no collaborator configured: %+v", err)
}

func TestOps_polarRectangular(t *testing.T) {
	vm := eval(t, "3 4 R>P")
	require.Len(t, vm.stack, 2)
	assert.InDelta(t, math.Atan2(3, 4), vm.stack[0], 1e-12, "angle lands in y")
	assert.InDelta(t, 5, vm.stack[1], 1e-12, "magnitude lands in x")

	vm = New()
	require.NoError(t, evalOn(t, vm, "DEG 1 1 R>P"))
	assert.InDelta(t, 45, vm.stack[0], 1e-12, "angle honors the angular mode")

	vm = New()
	require.NoError(t, evalOn(t, vm, "DEG 90 2 P>R"))
	require.Len(t, vm.stack, 2)
	assert.InDelta(t, 2, vm.stack[0], 1e-12, "y coordinate")
	assert.InDelta(t, 0, vm.stack[1], 1e-12, "x coordinate")

	vm = eval(t, "-1.5 2.5 R>P P>R")
	require.Len(t, vm.stack, 2)
	assert.InDelta(t, -1.5, vm.stack[0], 1e-12, "round trip restores y")
	assert.InDelta(t, 2.5, vm.stack[1], 1e-12, "round trip restores x")
}

func TestOps_ratio(t *testing.T) {
	for _, tc := range []struct {
		line     string
		num, den float64
	}{
		{"0.5 RATIO", 1, 2},
		{"3 RATIO", 3, 1},
		{"0 RATIO", 0, 1},
		{"-0.75 RATIO", -3, 4},
		{"0.1 RATIO", 3602879701896397, 36028797018963968},
	} {
		t.Run(tc.line, func(t *testing.T) {
			vm := eval(t, tc.line)
			assert.Equal(t, stack{tc.num, tc.den}, vm.stack)
		})
	}
}

func TestOps_nop(t *testing.T) {
	vm := eval(t, "1 NOP 2")
	assert.Equal(t, stack{1, 2}, vm.stack)
}

func TestOps_overflowIsADomainError(t *testing.T) {
	err := evalErr(t, "1e308 10 *")
	assert.True(t, errors.Is(err, DomainError), "expected DomainError, got %+v", err)
}

func TestOps_memAndProg(t *testing.T) {
	var out strings.Builder
	vm := New(WithOutput(&out))
	require.NoError(t, vm.LoadPrograms(strings.NewReader("LBL twice 2 * RTN")))
	require.NoError(t, evalOn(t, vm, "7 STO A MEM PROG"))
	assert.Contains(t, out.String(), "A: 7")
	assert.Contains(t, out.String(), "LBL twice")
}
