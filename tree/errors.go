package tree

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
)

var (
	// ErrDuplicateFeederName is returned when a feeder name is already registered with a builder.
	ErrDuplicateFeederName = stderrors.New("tree: duplicate feeder name")
	// ErrDuplicateFeederBinding is returned when a node already holds matches for a feeder.
	ErrDuplicateFeederBinding = stderrors.New("tree: duplicate feeder binding")
	// ErrMixedFeederMatches is returned when matches minted by different feeders are combined.
	ErrMixedFeederMatches = stderrors.New("tree: matches from different feeders")
	// ErrNoRoot is returned by Build when no root config was set.
	ErrNoRoot = stderrors.New("tree: no root config set")
	// ErrInvalidTree wraps composition mistakes recorded while assembling configs.
	ErrInvalidTree = stderrors.New("tree: invalid tree composition")
	// ErrOrphanGroupMember is returned when a group references a node outside the tree.
	ErrOrphanGroupMember = stderrors.New("tree: group member not reachable from root")
	// ErrFrozen is returned when a populated tree is mutated or populated again.
	ErrFrozen = stderrors.New("tree: tree is frozen")
	// ErrAlreadyBuilt is returned when Build is called twice on the same builder.
	ErrAlreadyBuilt = stderrors.New("tree: builder already built")
	// ErrResolve marks every failure produced by a feeder during population.
	ErrResolve = stderrors.New("tree: feeder resolution failed")
	// ErrMissingMatch is returned by feeders using MissFail when a match has no value.
	ErrMissingMatch = stderrors.New("tree: no value for match")
	// ErrParse marks failures converting a raw value into a typed one.
	ErrParse = stderrors.New("tree: value parse failed")
)

// SetupError reports a mistake in how the tree or the builder was assembled.
// It is detected before any feeder runs.
type SetupError struct {
	Base error
	Err  error
}

func newSetupError(base error, code, msg string, meta map[string]any) *SetupError {
	err := errors.New(msg, errors.CategoryBadInput).WithTextCode(code)
	if len(meta) > 0 {
		err = err.WithMetadata(meta)
	}
	return &SetupError{Base: base, Err: err}
}

func (e *SetupError) Error() string {
	if e == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *SetupError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *SetupError) Is(target error) bool {
	if e == nil {
		return target == nil
	}
	return target == e.Base
}

// RunError is produced when a feeder fails to resolve a node. Node is optional,
// Ancestors holds the chain from the root down to the parent of the failing node.
// Err is the cause reported by the feeder and Detail its categorized form.
type RunError struct {
	Feeder    string
	Node      Element
	Ancestors []*Config
	Err       error
	Detail    *errors.Error
}

// NewRunError lets feeders report a failure. The traversal fills in the node and
// ancestors when the feeder leaves them empty.
func NewRunError(node Element, format string, args ...any) *RunError {
	return &RunError{
		Node: node,
		Err:  fmt.Errorf(format, args...),
	}
}

func (e *RunError) Error() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("resolve")
	if e.Feeder != "" {
		fmt.Fprintf(&b, " feeder %q", e.Feeder)
	}
	if path := e.Path(); len(path) > 0 {
		fmt.Fprintf(&b, " at %s", strings.Join(path, " > "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RunError) Unwrap() []error {
	if e == nil {
		return nil
	}
	var errs []error
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Detail != nil {
		errs = append(errs, e.Detail)
	}
	return errs
}

func (e *RunError) Is(target error) bool {
	return target == ErrResolve
}

// Path returns node names from the root to the failing node.
func (e *RunError) Path() []string {
	if e == nil {
		return nil
	}
	path := make([]string, 0, len(e.Ancestors)+1)
	for _, a := range e.Ancestors {
		path = append(path, a.Name())
	}
	if e.Node != nil {
		path = append(path, e.Node.Name())
	}
	return path
}

// Help renders a diagnostic with the breadcrumb to the failing node followed by
// the help text of that node.
func (e *RunError) Help() string {
	if e == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "error: %v\n", e.Err)
	if path := e.Path(); len(path) > 0 {
		fmt.Fprintf(&b, "  in: %s\n", strings.Join(path, " > "))
	}
	if e.Node != nil {
		b.WriteString(Help(e.Node))
	}
	return b.String()
}

// withContext attaches feeder, node and ancestors once, at the failure point.
// Fields already set by the feeder are kept.
func (e *RunError) withContext(feeder string, node Element, ancestors []*Config) *RunError {
	out := *e
	if out.Feeder == "" {
		out.Feeder = feeder
	}
	if out.Node == nil {
		out.Node = node
	}
	if out.Ancestors == nil {
		out.Ancestors = append([]*Config(nil), ancestors...)
	}
	if out.Detail == nil && out.Err != nil {
		out.Detail = errors.Wrap(out.Err, errors.CategoryOperation, "feeder failed to resolve node").
			WithTextCode("FEEDER_RESOLVE_FAILED").
			WithMetadata(map[string]any{
				"feeder": out.Feeder,
				"path":   out.Path(),
			})
	}
	return &out
}

func wrapRunError(err error, feeder string, node Element, ancestors []*Config) *RunError {
	var runErr *RunError
	if stderrors.As(err, &runErr) {
		return runErr.withContext(feeder, node, ancestors)
	}
	return (&RunError{Err: err}).withContext(feeder, node, ancestors)
}

// ParseError reports that a raw value could not be converted into Target.
type ParseError struct {
	Raw    string
	Target string
	Err    error
}

func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("parse %q as %s: %v", e.Raw, e.Target, e.Err)
}

func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
