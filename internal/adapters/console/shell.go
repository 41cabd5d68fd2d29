// Package console exposes the booking core as a line-oriented command shell.
// Every command produces one Result, rendered as a JSON line.
package console

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bookingcore/internal/core"
	"bookingcore/pkg/domain"
)

// Result is the outcome of one command.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func ok(data any) Result { return Result{Success: true, Data: data} }

func fail(message string) Result { return Result{Success: false, Error: message} }

// Shell dispatches command lines to the booking core.
type Shell struct {
	core     *core.Core
	logger   *slog.Logger
	commands map[string]*command
	order    []string
}

// NewShell returns a shell over c. A nil logger uses slog.Default().
func NewShell(c *core.Core, logger *slog.Logger) *Shell {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Shell{core: c, logger: logger, commands: make(map[string]*command)}
	for _, cmd := range s.commandTable() {
		s.commands[cmd.name] = cmd
		s.order = append(s.order, cmd.name)
	}
	return s
}

// Execute runs one command line.
func (s *Shell) Execute(ctx context.Context, line string) Result {
	args, err := Tokenize(line)
	if err != nil {
		return fail(err.Error())
	}
	if len(args) == 0 {
		return fail("empty command")
	}
	cmd, found := s.commands[args[0]]
	if !found {
		return fail(fmt.Sprintf("unknown command %q (try help)", args[0]))
	}
	if res, allowed := s.guard(ctx, cmd); !allowed {
		return res
	}
	data, err := cmd.run(ctx, args[1:])
	if err != nil {
		return s.failure(cmd.name, err)
	}
	return ok(data)
}

// guard applies the authentication and admin requirements of cmd.
func (s *Shell) guard(ctx context.Context, cmd *command) (Result, bool) {
	if cmd.access == accessPublic {
		return Result{}, true
	}
	authenticated, err := s.core.Auth.IsAuthenticated(ctx)
	if err != nil {
		return s.failure(cmd.name, err), false
	}
	if !authenticated {
		msg := cmd.denied
		if msg == "" {
			msg = "You must be logged in"
		}
		return fail(msg), false
	}
	if cmd.access == accessAdmin {
		admin, err := s.core.Auth.IsAdmin(ctx)
		if err != nil {
			return s.failure(cmd.name, err), false
		}
		if !admin {
			return fail("Administrator access required"), false
		}
	}
	return Result{}, true
}

// failure converts err to a Result. Domain errors carry their message;
// anything else is logged.
func (s *Shell) failure(name string, err error) Result {
	var usage *usageError
	if errors.As(err, &usage) {
		return fail(usage.Error())
	}
	if _, isDomain := domain.KindOf(err); !isDomain {
		s.logger.Error("command failed", "command", name, "error", err)
	}
	return fail(err.Error())
}

// Run reads command lines from in and writes one JSON result per line to
// out until EOF, "exit" or "quit". Blank lines and # comments are skipped.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	enc := json.NewEncoder(out)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		if err := enc.Encode(s.Execute(ctx, line)); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}
	return scanner.Err()
}

// Commands lists the command names in help order.
func (s *Shell) Commands() []string {
	return append([]string(nil), s.order...)
}
