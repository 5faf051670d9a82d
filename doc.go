/* Package main: a programmable RPN calculator.

The calculator is a stack machine in the HP tradition.  Numbers typed
at the prompt land on a stack whose top four levels are conventionally
called x, y, z and t; operators pull their operands from the stack and
push their results back, so "4 22 7 / +" divides 22 by 7 and adds 4.
Binary operators evaluate second-OP-top: "8 2 -" is 6.

Beyond the stack there are named storage registers (STO, RCL, DEL) and
stored programs.  A program file is plain text: '#' starts a comment,
whitespace separates tokens, and each "LBL <name>" opens a labeled
instruction sequence that conceptually ends at the first RTN reached
during execution.  Mnemonics are case-insensitive; label and register
names are not.  Numeric literals may use underscore digit grouping
(299_792_458) and exponent notation (6.674E-11).

Control flow is the classic calculator protocol.  GTO transfers to a
label; GSB calls it, pushing a return frame that RTN pops; a RTN with
no frame ends the invocation.  The only conditional construct is the
test: predicates like x<0? consume their operands and, when false,
skip the single instruction that follows.

DEG and RAD set a process-wide angular mode consumed by the
trigonometric operations and reflected by SHOW.  Between sessions the
stack and register table persist in a small snapshot file, written
atomically at quit and restored, best effort, at startup.
*/
package main
