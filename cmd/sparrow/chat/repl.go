package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/papercomputeco/sparrow/pkg/agent"
	"github.com/papercomputeco/sparrow/pkg/cliui"
	"github.com/papercomputeco/sparrow/pkg/tools"
)

const (
	exitWord  = "exit"
	resetWord = "reset"
)

// repl is one interactive session reading lines from in.
type repl struct {
	agent   *agent.Agent
	toolbox *tools.Toolbox

	in  io.Reader
	out io.Writer

	// render post-processes assistant text before it is printed.
	render func(string) string

	// think runs fn while the model is generating.
	think func(fn func())
}

type scanResult struct {
	line string
	err  error
	eof  bool
}

// run prints the greeting and loops until exit, EOF or ctx is canceled.
// Cancellation prints the interrupted farewell and is not an error.
func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, r.agent.Greeting())
	fmt.Fprintln(r.out)

	lines := make(chan scanResult)
	go r.scan(ctx, lines)

	for {
		fmt.Fprint(r.out, cliui.UserPrompt)

		select {
		case <-ctx.Done():
			fmt.Fprintf(r.out, "\n\n%s\n", r.agent.Interrupted())
			return nil

		case res := <-lines:
			if res.eof {
				fmt.Fprintf(r.out, "\n%s\n", r.agent.Farewell())
				if res.err != nil {
					return fmt.Errorf("reading input: %w", res.err)
				}
				return nil
			}

			if quit := r.handle(ctx, res.line); quit {
				return nil
			}

			if ctx.Err() != nil {
				fmt.Fprintf(r.out, "\n%s\n", r.agent.Interrupted())
				return nil
			}
		}
	}
}

// scan feeds lines from r.in until EOF. It stops early once ctx is done.
func (r *repl) scan(ctx context.Context, lines chan<- scanResult) {
	scanner := bufio.NewScanner(r.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case lines <- scanResult{line: scanner.Text()}:
		case <-ctx.Done():
			return
		}
	}

	select {
	case lines <- scanResult{eof: true, err: scanner.Err()}:
	case <-ctx.Done():
	}
}

// handle processes one input line and reports whether the session is over.
func (r *repl) handle(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)

	switch {
	case input == "":
		return false

	case strings.EqualFold(input, exitWord):
		fmt.Fprintf(r.out, "\n%s\n", r.agent.Farewell())
		return true

	case strings.EqualFold(input, resetWord):
		fmt.Fprintln(r.out, r.agent.Reset())
		return false
	}

	if cmd, ok := tools.Parse(input); ok {
		fmt.Fprintf(r.out, "\n%s\n\n", r.toolbox.Dispatch(cmd))
		return false
	}

	fmt.Fprintf(r.out, "\n%s\n\n", r.chat(ctx, input))
	return false
}

func (r *repl) chat(ctx context.Context, input string) string {
	var response string
	generate := func() { response = r.agent.Chat(ctx, input) }

	if r.think != nil {
		r.think(generate)
	} else {
		generate()
	}

	if r.render != nil {
		return r.render(response)
	}
	return response
}
