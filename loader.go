package main

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// token is one whitespace-delimited word of program text, tagged with
// the line it came from so parse errors can name it.
type token struct {
	text string
	line int
}

// stripComment removes everything from the first unescaped '#' to the
// end of the line, and rewrites any escaped '\#' as a literal '#'.
func stripComment(line string) string {
	var sb strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		if c == '\\' && i+1 < len(line) && line[i+1] == '#' {
			sb.WriteByte('#')
			i++
			continue
		}
		if c == '#' {
			break
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// tokenize splits program text on whitespace.  Line breaks carry no
// syntactic meaning beyond terminating comments.
func tokenize(r io.Reader) ([]token, error) {
	var toks []token
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		for _, f := range strings.Fields(stripComment(sc.Text())) {
			toks = append(toks, token{text: f, line: line})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return toks, nil
}

// parseLiteral recognizes numeric literals.  Underscore digit
// grouping is allowed (299_792_458) and stripped before conversion;
// exponent notation (6.674E-11) passes through to strconv.  Returns
// ok=false for tokens that do not even look numeric, so they can be
// tried as mnemonics instead.
func parseLiteral(tok token) (val float64, ok bool, err error) {
	t := tok.text
	c := t[0]
	numeric := c >= '0' && c <= '9' || c == '.'
	if (c == '+' || c == '-') && len(t) > 1 {
		numeric = t[1] >= '0' && t[1] <= '9' || t[1] == '.'
	}
	if !numeric {
		return 0, false, nil
	}
	val, ferr := strconv.ParseFloat(strings.ReplaceAll(t, "_", ""), 64)
	if ferr != nil {
		return 0, true, &ParseError{Line: tok.line, Token: t, Msg: "malformed numeric literal"}
	}
	return val, true, nil
}

// control words are mnemonics with parse-time behavior, outside the
// builtin operation table.
var controlWords = map[string]bool{
	"lbl": true, "gto": true, "gsb": true, "rtn": true,
	"exc": true, "sto": true, "rcl": true, "del": true, "fix": true,
}

// isMnemonic reports whether text names any recognized operation,
// ignoring case.  Used to disambiguate DEL's optional register
// operand: a following token that is itself a mnemonic or a number
// means the DEL was a stack delete.
func isMnemonic(text string) bool {
	low := strings.ToLower(text)
	if controlWords[low] {
		return true
	}
	if _, ok := builtins[low]; ok {
		return true
	}
	_, ok := testPreds[low]
	return ok
}

func looksNumeric(text string) bool {
	_, ok, _ := parseLiteral(token{text: text})
	return ok
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) next() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	tok := p.toks[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

// operand consumes the token after an operand-taking mnemonic,
// verbatim: label and register names are case-sensitive.
func (p *parser) operand(after token) (token, error) {
	tok, ok := p.next()
	if !ok {
		return token{}, &ParseError{Line: after.line, Token: after.text, Msg: "missing operand"}
	}
	return tok, nil
}

func (p *parser) registerOperand(after token) (string, error) {
	tok, err := p.operand(after)
	if err != nil {
		return "", err
	}
	if looksNumeric(tok.text) {
		return "", &ParseError{Line: tok.line, Token: tok.text, Msg: "register name expected"}
	}
	return tok.text, nil
}

// instruction parses one instruction.  inProgram toggles the few
// constructs that differ between stored program text and interactive
// command lines (LBL blocks, EXC).
func (p *parser) instruction(tok token, inProgram bool) (instr, error) {
	if val, ok, err := parseLiteral(tok); ok {
		if err != nil {
			return instr{}, err
		}
		return instr{kind: instPush, val: val}, nil
	}

	low := strings.ToLower(tok.text)
	switch low {
	case "sto", "rcl":
		name, err := p.registerOperand(tok)
		if err != nil {
			return instr{}, err
		}
		kind := storeSto
		if low == "rcl" {
			kind = storeRcl
		}
		return instr{kind: instStore, store: kind, name: name}, nil

	case "del":
		// DEL takes a register operand only when the next token
		// could not be anything else; otherwise it deletes the top
		// of the stack.
		if nxt, ok := p.peek(); ok && !isMnemonic(nxt.text) && !looksNumeric(nxt.text) {
			p.pos++
			return instr{kind: instStore, store: storeDel, name: nxt.text}, nil
		}
		return instr{kind: instOp, op: builtins["del"]}, nil

	case "gto", "gsb":
		target, err := p.operand(tok)
		if err != nil {
			return instr{}, err
		}
		kind := jumpGoto
		if low == "gsb" {
			kind = jumpGosub
		}
		return instr{kind: instJump, jump: kind, name: target.text}, nil

	case "rtn":
		return instr{kind: instReturn}, nil

	case "exc":
		if inProgram {
			return instr{}, &ParseError{Line: tok.line, Token: tok.text,
				Msg: "EXC is interactive only; use GTO or GSB inside a program"}
		}
		target, err := p.operand(tok)
		if err != nil {
			return instr{}, err
		}
		return instr{kind: instExec, name: target.text}, nil

	case "fix":
		arg, err := p.operand(tok)
		if err != nil {
			return instr{}, err
		}
		val, ok, verr := parseLiteral(arg)
		if !ok || verr != nil {
			return instr{}, &ParseError{Line: arg.line, Token: arg.text, Msg: "FIX needs a numeric operand"}
		}
		if val < 0 {
			val = -val
		}
		return instr{kind: instFix, val: float64(int(val))}, nil

	case "lbl":
		return instr{}, &ParseError{Line: tok.line, Token: tok.text,
			Msg: "LBL is only valid in a program file"}
	}

	if t, ok := testPreds[low]; ok {
		return instr{kind: instTest, test: t}, nil
	}
	if op, ok := builtins[low]; ok {
		return instr{kind: instOp, op: op}, nil
	}
	if !inProgram {
		// a bare name on a command line recalls the register of that
		// name; a register named like a mnemonic still needs RCL
		return instr{kind: instStore, store: storeRcl, name: tok.text}, nil
	}
	return instr{}, &ParseError{Line: tok.line, Token: tok.text, Msg: "unknown mnemonic"}
}

// parsePrograms builds a program store from raw program text.  Any
// error aborts the whole load; no partial store is ever returned.
func parsePrograms(r io.Reader, strictLabels bool) (map[string]*program, error) {
	toks, err := tokenize(r)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	progs := make(map[string]*program)

	for {
		tok, ok := p.next()
		if !ok {
			return progs, nil
		}
		if strings.ToLower(tok.text) != "lbl" {
			return nil, &ParseError{Line: tok.line, Token: tok.text, Msg: "expected LBL"}
		}
		name, err := p.operand(tok)
		if err != nil {
			return nil, err
		}
		if _, dup := progs[name.text]; dup && strictLabels {
			return nil, &ParseError{Line: name.line, Token: name.text, Msg: "label already defined"}
		}

		prog := &program{name: name.text, line: name.line}
		prog.code = append(prog.code, instr{kind: instLabel, name: name.text})
		for {
			nxt, ok := p.peek()
			if !ok || strings.ToLower(nxt.text) == "lbl" {
				break
			}
			p.pos++
			in, err := p.instruction(nxt, true)
			if err != nil {
				return nil, err
			}
			prog.code = append(prog.code, in)
		}
		progs[name.text] = prog // last definition wins
	}
}

// parseLine parses one interactive command line into an ad-hoc
// instruction sequence.
func parseLine(line string) ([]instr, error) {
	toks, err := tokenize(strings.NewReader(line))
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	var code []instr
	for {
		tok, ok := p.next()
		if !ok {
			return code, nil
		}
		in, err := p.instruction(tok, false)
		if err != nil {
			return nil, err
		}
		code = append(code, in)
	}
}
