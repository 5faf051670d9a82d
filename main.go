package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Battleship-Potemkin-Village/RPN-Calculator/internal/panicerr"
)

func main() {
	ctx := context.Background()

	var (
		progFile string
		memFile  string
		places   int
		depth    int
		timeout  time.Duration
		trace    bool
		strict   bool
	)
	flag.StringVar(&progFile, "prog", "programs.rpn", "program file to load at startup")
	flag.StringVar(&memFile, "mem", ".rpncalc", "session snapshot file")
	flag.IntVar(&places, "fix", 4, "display decimal places")
	flag.IntVar(&depth, "depth", defaultCallDepth, "GSB call depth limit")
	flag.DurationVar(&timeout, "timeout", 0, "time limit per command line")
	flag.BoolVar(&trace, "trace", false, "enable execution trace logging")
	flag.BoolVar(&strict, "strict-labels", false, "reject duplicate LBL definitions")
	flag.Parse()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	in := bufio.NewScanner(os.Stdin)

	opts := []VMOption{
		WithOutput(os.Stdout),
		WithFixed(places),
		WithCallDepth(depth),
		WithStrictLabels(strict),
	}
	if trace {
		opts = append(opts, WithLogf(log.Printf))
	}
	if interactive {
		opts = append(opts, WithPause(func() {
			fmt.Print("press ENTER to continue ")
			in.Scan()
		}))
	}
	vm := New(opts...)

	if f, err := os.Open(progFile); err == nil {
		err = vm.LoadPrograms(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	} else if !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	// The snapshot is a cache, not a store: failure to restore must
	// never block startup.
	if err := vm.LoadSnapshot(memFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARNING: starting with a fresh session: %v", err)
	}

	for {
		if interactive {
			showStack(vm)
			fmt.Print("> ")
		}
		if !in.Scan() {
			break
		}
		line := in.Text()
		if isQuit(line) {
			break
		}
		if err := evalLine(ctx, vm, line, timeout); err != nil {
			if panicerr.IsPanic(err) {
				fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
			} else {
				fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			}
		}
	}

	if err := vm.SaveSnapshot(memFile); err != nil {
		log.Printf("WARNING: snapshot save failed, retrying: %v", err)
		if err := vm.SaveSnapshot(memFile); err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
	}
}

func evalLine(ctx context.Context, vm *VM, line string, timeout time.Duration) error {
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return vm.EvalLine(ctx, line)
}

func isQuit(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "close":
		return true
	}
	return false
}

func showStack(vm *VM) {
	names := [...]string{"x", "y", "z", "t"}
	for i := len(names) - 1; i >= 1; i-- {
		v := 0.0
		if i < len(vm.stack) {
			v = vm.stack[len(vm.stack)-1-i]
		}
		fmt.Printf("%s: %.*f\n", names[i], vm.places, v)
	}
	x := 0.0
	if len(vm.stack) > 0 {
		x = vm.stack[len(vm.stack)-1]
	}
	fmt.Printf("x: %.*f%s\n", vm.places, x, vm.modeSuffix())
}
