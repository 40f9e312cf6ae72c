// Package proc classifies candidates by running the program under test as a
// subprocess and mapping its exit status to a verdict.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/repairlab/testgen/core"
)

// Oracle invokes a command once per candidate. The candidate's string form
// is written to stdin. Exit status 0 is PASSING, a non-zero exit is FAILING,
// and a timeout is UNDEFINED; anything that prevents the process from
// running at all is a fatal error.
type Oracle struct {
	prog    string
	args    []string
	timeout time.Duration
}

// New creates a process oracle for the given command line.
func New(prog string, args []string, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Oracle{prog: prog, args: args, timeout: timeout}
}

func (o *Oracle) Classify(ctx context.Context, c core.Candidate) (core.Verdict, core.Metadata, error) {
	execCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, o.prog, o.args...)
	cmd.Stdin = strings.NewReader(c.String())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	meta := core.Metadata{"stderr": stderr.String()}

	switch {
	case err == nil:
		return core.VerdictPassing, meta, nil
	case ctx.Err() != nil:
		// The run was cancelled from outside; that is not an oracle timeout.
		return core.VerdictUndefined, nil, ctx.Err()
	case execCtx.Err() != nil:
		// The program never finished; the verdict is inconclusive.
		meta["timeout"] = o.timeout.String()
		return core.VerdictUndefined, meta, nil
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			meta["exit_code"] = fmt.Sprintf("%d", exitErr.ExitCode())
			return core.VerdictFailing, meta, nil
		}
		return core.VerdictUndefined, nil, fmt.Errorf("run oracle %s: %w", o.prog, err)
	}
}
