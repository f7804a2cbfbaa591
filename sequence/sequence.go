// Package sequence runs forward-only step machines and AT command sequences.
package sequence

import (
	"context"
	"time"
)

// StepFunc performs one step. A non-nil error ends the machine.
type StepFunc[S ~int] func(ctx context.Context, step S) error

// Run executes every step from first to last inclusive, in order. Steps never
// repeat and never go backwards. The context is checked before each step, so
// a cancellation takes effect between two steps.
func Run[S ~int](ctx context.Context, first, last S, do StepFunc[S]) error {
	for step := first; step <= last; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := do(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// Commander dispatches a single AT command.
type Commander interface {
	Command(ctx context.Context, cmd string, timeout time.Duration) (string, error)
}

// Processor inspects the outcome of one command of a sequence. Returning
// stop ends the sequence early without error; a non-nil error aborts it.
type Processor func(resp string, err error) (stop bool, perr error)

// Command is one entry of an AT command sequence.
type Command struct {
	Cmd     string
	Timeout time.Duration
	// Process defaults to aborting on any command error.
	Process Processor
}

// RunCommands issues cmds one after another on c until a processor stops the
// sequence, a processor fails, or the list is exhausted.
func RunCommands(ctx context.Context, c Commander, cmds []Command) error {
	for _, cmd := range cmds {
		if err := ctx.Err(); err != nil {
			return err
		}
		resp, err := c.Command(ctx, cmd.Cmd, cmd.Timeout)
		process := cmd.Process
		if process == nil {
			process = abortOnError
		}
		stop, perr := process(resp, err)
		if perr != nil {
			return perr
		}
		if stop {
			return nil
		}
	}
	return nil
}

func abortOnError(_ string, err error) (bool, error) {
	return false, err
}
