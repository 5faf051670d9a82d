package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// The session snapshot is a small line-based text file: a header, the
// stack contents ordered deepest to top, and the register table as
// name/value pairs.  Values are formatted so that reading them back
// reproduces the exact float64 bits.
const snapshotHeader = "rpncalc snapshot v1"

func formatFull(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSnapshot(w io.Writer, st []float64, regs map[string]float64) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, snapshotHeader)
	fmt.Fprintln(bw, "stack", len(st))
	for _, v := range st {
		fmt.Fprintln(bw, formatFull(v))
	}
	names := make([]string, 0, len(regs))
	for name := range regs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(bw, "regs", len(regs))
	for _, name := range names {
		fmt.Fprintln(bw, name, formatFull(regs[name]))
	}
	return bw.Flush()
}

func readSnapshot(r io.Reader) (st []float64, regs map[string]float64, err error) {
	sc := bufio.NewScanner(r)
	line := func() (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return sc.Text(), nil
	}

	head, err := line()
	if err != nil {
		return nil, nil, err
	}
	if head != snapshotHeader {
		return nil, nil, fmt.Errorf("bad snapshot header %q", head)
	}

	var n int
	rec, err := line()
	if err != nil {
		return nil, nil, err
	}
	if _, err := fmt.Sscanf(rec, "stack %d", &n); err != nil {
		return nil, nil, fmt.Errorf("bad stack record %q", rec)
	}
	st = make([]float64, 0, n)
	for i := 0; i < n; i++ {
		s, err := line()
		if err != nil {
			return nil, nil, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("bad stack value %q", s)
		}
		st = append(st, v)
	}

	rec, err = line()
	if err != nil {
		return nil, nil, err
	}
	if _, err := fmt.Sscanf(rec, "regs %d", &n); err != nil {
		return nil, nil, fmt.Errorf("bad register record %q", rec)
	}
	regs = make(map[string]float64, n)
	for i := 0; i < n; i++ {
		s, err := line()
		if err != nil {
			return nil, nil, err
		}
		var name, val string
		if _, err := fmt.Sscanf(s, "%s %s", &name, &val); err != nil {
			return nil, nil, fmt.Errorf("bad register entry %q", s)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("bad register value %q", s)
		}
		regs[name] = v
	}
	return st, regs, nil
}

// SaveSnapshot persists the stack and register table to path,
// replacing any prior snapshot.  The write is atomic: a temporary
// file in the same directory is renamed over the target, so a failed
// write never corrupts the previous snapshot.
func (vm *VM) SaveSnapshot(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".rpncalc-*")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if err := writeSnapshot(tmp, vm.stack, vm.regs); err != nil {
		tmp.Close()
		return &PersistenceError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

// LoadSnapshot restores the stack and register table from path,
// replacing current state.  The caller decides how fatal failure is;
// at startup it should not be (a missing or corrupt snapshot just
// means a fresh session).
func (vm *VM) LoadSnapshot(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	defer f.Close()

	st, regs, err := readSnapshot(f)
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	vm.stack = st
	vm.regs = regs
	return nil
}
