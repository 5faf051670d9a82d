package main

import "fmt"

// List of execution trap kinds.
const (
	StackUnderflow = Errno(iota)
	UnknownRegister
	UnknownLabel
	DivisionByZero
	DomainError
	CallStackOverflow
)

var strError = []string{
	"stack underflow",
	"unknown register",
	"unknown label",
	"division by zero",
	"domain error",
	"call stack overflow",
}

// Errno names the kind of an execution trap.  Errno values are the
// sentinels that callers should errors.Is against.
type Errno int

func (e Errno) Error() string {
	return strError[e]
}

// Error carries the context of an execution trap: what kind of trap,
// which operation raised it, and the register or label name involved,
// if any.
type Error struct {
	Errno  Errno
	Op     string // mnemonic that raised the trap
	Name   string // register or label name, when relevant
	Detail string // extra context, when a name alone doesn't cut it
}

func (e *Error) Error() string {
	msg := e.Errno.Error()
	if e.Name != "" {
		msg += fmt.Sprintf(" %q", e.Name)
	}
	if e.Op != "" {
		msg += fmt.Sprintf(" in %q", e.Op)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Errno }

// ParseError reports malformed program text.  Loading aborts on the
// first one; no part of the offending text is installed.
type ParseError struct {
	Line  int
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse error on line %d at %q: %s", e.Line, e.Token, e.Msg)
	}
	return fmt.Sprintf("parse error on line %d: %s", e.Line, e.Msg)
}

// PersistenceError reports a snapshot that could not be read or
// written.  Recoverable at startup, where a fresh session is an
// acceptable fallback; fatal at quit if the save keeps failing.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
