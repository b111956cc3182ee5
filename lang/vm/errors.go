package vm

import (
	"fmt"
	"strings"
)

// frameTrace is one line of a captured runtime stack trace: the source line
// active in that frame, and the name of the function running it ("script"
// for the implicit top-level frame).
type frameTrace struct {
	line int
	name string
}

// RuntimeError is what the VM returns when execution fails after a
// successful compile: a message plus the call stack active at the point of
// failure, captured top-frame-first, mirroring the original VM's
// runtimeError, which walks vm.frames from the top down printing one
// "[line N] in <fn>()" per active call.
type RuntimeError struct {
	Message string
	Trace   []frameTrace
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, f := range e.Trace {
		fmt.Fprintf(&b, "\n[line %d] in %s", f.line, f.name)
	}
	return b.String()
}

// runtimeError builds and returns a *RuntimeError capturing the current call
// stack, then resets the VM to an empty stack/frame state — the same
// recovery the original interpreter performs after printing a runtime
// error, so a REPL can keep accepting input on the next turn.
func (vm *VM) runtimeError(format string, args ...any) error {
	err := &RuntimeError{Message: fmt.Sprintf(format, args...)}
	for i := vm.frameCount - 1; i >= 0; i-- {
		frame := &vm.frames[i]
		fn := frame.closure.Function
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		// frame.ip has already moved past the instruction that failed, so
		// the line of the instruction that raised is one slot back.
		line := fn.Chunk.GetLine(frame.ip - 1)
		err.Trace = append(err.Trace, frameTrace{line: line, name: name})
	}
	vm.top = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
	return err
}
