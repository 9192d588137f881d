package machine

import "github.com/mna/gox/lang/ir"

// callFrame records the caller's state to restore on RET: the pc to
// resume at, the caller's instruction stream and function name, and a
// reference to the caller's own locals frame (so returning pops back to
// it rather than losing it).
type callFrame struct {
	returnPC             int
	returnCode           []ir.Instr
	previousFunctionName string
	previousLocals       map[string]StackValue
}
