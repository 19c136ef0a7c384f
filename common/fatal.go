package common

import (
	"fmt"
	"os"
	"runtime/debug"
)

// PanicHandler is deferred at the top of the process: a panic that escaped every per-request
// recovery terminates the broker with a stack trace rather than leaving it wedged.
func PanicHandler() {
	if r := recover(); r != nil {
		fmt.Printf("Panic caught in broker: %v\n", r)
		debug.PrintStack()
		os.Exit(1)
	}
}
