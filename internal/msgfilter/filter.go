// Package msgfilter evaluates CEL expressions against log records.
//
// Variables available to an expression:
//
//	id            int     record id
//	sender        string
//	receiver      string
//	content       string
//	created_at_s  int     creation time, Unix seconds
//	delivered     bool
//	now_s         int     evaluation time, Unix seconds
//
// An empty expression matches every record.
package msgfilter

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/nareb/msgstore/internal/message"
)

// Filter wraps a compiled CEL program. The zero value matches everything.
type Filter struct {
	prog    cel.Program
	enabled bool
	now     func() time.Time
}

// Compile parses and type-checks expr. The expression must evaluate to bool.
func Compile(expr string) (Filter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Filter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.IntType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("receiver", cel.StringType),
		cel.Variable("content", cel.StringType),
		cel.Variable("created_at_s", cel.IntType),
		cel.Variable("delivered", cel.BoolType),
		cel.Variable("now_s", cel.IntType),
	)
	if err != nil {
		return Filter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return Filter{}, fmt.Errorf("compile filter: %w", iss.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return Filter{}, fmt.Errorf("filter must be boolean, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return Filter{}, err
	}
	return Filter{prog: prog, enabled: true, now: time.Now}, nil
}

// Enabled reports whether the filter has an expression.
func (f Filter) Enabled() bool { return f.enabled }

// Match evaluates the expression against rec. Evaluation errors count as
// no match.
func (f Filter) Match(rec message.Record) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":           int64(rec.ID),
		"sender":       rec.Sender,
		"receiver":     rec.Receiver,
		"content":      rec.Content,
		"created_at_s": rec.CreatedAt.Unix(),
		"delivered":    rec.Delivered,
		"now_s":        f.now().Unix(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
