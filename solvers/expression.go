package solvers

import (
	"strings"

	opts "github.com/goliatone/go-options"
	"github.com/knadh/koanf/v2"
)

// EvalErrorHandler decides what happens to a value whose expression failed.
// A non-nil return aborts solving.
type EvalErrorHandler func(key, expr string, err error, k *koanf.Koanf) error

type expressions struct {
	delimiters
	evaluator opts.Evaluator
	onError   EvalErrorHandler
}

type ExpressionOption func(*expressions)

func WithEvaluator(eval opts.Evaluator) ExpressionOption {
	return func(e *expressions) {
		if eval != nil {
			e.evaluator = eval
		}
	}
}

func WithEvalErrorHandler(h EvalErrorHandler) ExpressionOption {
	return func(e *expressions) {
		if h != nil {
			e.onError = h
		}
	}
}

// NewExpressions evaluates values entirely wrapped in start/end, e.g.
// {{ app.env == "production" }}, against the current snapshot.
func NewExpressions(start, end string, options ...ExpressionOption) Solver {
	if start == "" {
		start = "{{"
	}
	if end == "" {
		end = "}}"
	}
	e := &expressions{
		delimiters: delimiters{start: start, end: end},
		evaluator:  opts.NewExprEvaluator(),
		onError:    LeaveUnchanged(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *expressions) Solve(k *koanf.Koanf) error {
	for _, key := range stringKeys(k) {
		val, ok := stringAt(k, key)
		if !ok {
			continue
		}
		expr, ok := e.unwrap(val)
		if !ok {
			continue
		}
		result, err := e.evaluator.Evaluate(opts.RuleContext{Snapshot: k.Raw()}, expr)
		if err != nil {
			if herr := e.onError(key, expr, err, k); herr != nil {
				return herr
			}
			continue
		}
		if err := k.Set(key, result); err != nil {
			return err
		}
	}
	return nil
}

func (e *expressions) unwrap(val string) (string, bool) {
	if len(val) < len(e.start)+len(e.end) ||
		!strings.HasPrefix(val, e.start) || !strings.HasSuffix(val, e.end) {
		return "", false
	}
	return strings.TrimSpace(val[len(e.start) : len(val)-len(e.end)]), true
}

// LeaveUnchanged keeps the original text.
func LeaveUnchanged() EvalErrorHandler {
	return func(string, string, error, *koanf.Koanf) error {
		return nil
	}
}

// Remove deletes the key.
func Remove() EvalErrorHandler {
	return func(key, _ string, _ error, k *koanf.Koanf) error {
		k.Delete(key)
		return nil
	}
}

// Fail aborts solving with the evaluation error.
func Fail() EvalErrorHandler {
	return func(key, expr string, err error, _ *koanf.Koanf) error {
		return &EvalError{Key: key, Expr: expr, Err: err}
	}
}

type EvalError struct {
	Key  string
	Expr string
	Err  error
}

func (e *EvalError) Error() string {
	return "solvers: evaluate " + e.Key + " (" + e.Expr + "): " + e.Err.Error()
}

func (e *EvalError) Unwrap() error {
	return e.Err
}
