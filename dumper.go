package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// vmDumper renders VM state for the MEM and PROG commands and for
// failing tests.
type vmDumper struct {
	vm  *VM
	out io.Writer
}

func (d vmDumper) dump() {
	d.dumpStack()
	d.dumpRegisters()
	d.dumpPrograms()
}

// dumpStack labels the top four levels x, y, z and t the way the
// interactive display does, counting any deeper values in bulk.
func (d vmDumper) dumpStack() {
	st := d.vm.stack
	names := [...]string{"x", "y", "z", "t"}
	fmt.Fprintf(d.out, "stack (%d):\n", len(st))
	for i := 0; i < len(st) && i < len(names); i++ {
		fmt.Fprintf(d.out, "  %s: %s\n", names[i], formatFull(st[len(st)-1-i]))
	}
	if n := len(st) - len(names); n > 0 {
		fmt.Fprintf(d.out, "  ... %d more\n", n)
	}
}

func (d vmDumper) dumpRegisters() {
	names := make([]string, 0, len(d.vm.regs))
	for name := range d.vm.regs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(d.out, "registers (%d):\n", len(names))
	for _, name := range names {
		fmt.Fprintf(d.out, "  %s: %s\n", name, formatFull(d.vm.regs[name]))
	}
}

func (d vmDumper) dumpPrograms() {
	names := make([]string, 0, len(d.vm.progs))
	for name := range d.vm.progs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintf(d.out, "programs (%d):\n", len(names))
	for _, name := range names {
		p := d.vm.progs[name]
		var parts []string
		for _, in := range p.code[1:] { // code[0] is the LBL marker
			parts = append(parts, in.String())
		}
		fmt.Fprintf(d.out, "  LBL %s  %s\n", name, strings.Join(parts, " "))
	}
}
