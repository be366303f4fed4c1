package log

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s:%d %s", f.File, f.Line, f.Function)
}

// Callstack returns the caller's stack, skipping the logging package's
// own frames.
func Callstack() []StackFrame {
	var pcs [16]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var stack []StackFrame
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.Function, "internal/log.") {
			stack = append(stack, StackFrame{
				File:     filepath.Base(frame.File),
				Line:     frame.Line,
				Function: filepath.Base(frame.Function),
			})
		}
		if !more || len(stack) >= 8 {
			break
		}
	}
	return stack
}
