// Package core wires loading, root selection and traversal into one
// embeddable engine. The CLI is a thin layer over it.
package core

import (
	"context"
	"fmt"
	"io"

	"github.com/go-logr/logr"

	"github.com/rubeniskov/traverse-json/internal/cel"
	"github.com/rubeniskov/traverse-json/internal/limiter"
	"github.com/rubeniskov/traverse-json/internal/navigator"
	"github.com/rubeniskov/traverse-json/pkg/loader"
	"github.com/rubeniskov/traverse-json/pkg/traverse"
)

// Evaluator evaluates expressions against a root node.
type Evaluator interface {
	Evaluate(expr string, root any) (any, error)
}

// Sink receives the entries of a run.
type Sink interface {
	Write(e traverse.Entry) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(traverse.Entry) error

// Write calls f(e).
func (f SinkFunc) Write(e traverse.Entry) error { return f(e) }

// Engine loads documents and runs traversals over them.
type Engine struct {
	Evaluator Evaluator
	Logger    logr.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithEvaluator sets the evaluator used by Select.
func WithEvaluator(e Evaluator) Option {
	return func(c *Engine) {
		c.Evaluator = e
	}
}

// WithLogger sets the logger handed to every traversal.
func WithLogger(lgr logr.Logger) Option {
	return func(c *Engine) {
		c.Logger = lgr
	}
}

// New creates an Engine; without WithEvaluator it uses the shared CEL
// evaluator.
func New(opts ...Option) (*Engine, error) {
	engine := &Engine{Logger: logr.Discard()}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.Evaluator == nil {
		eval, err := cel.Default()
		if err != nil {
			return nil, err
		}
		engine.Evaluator = eval
	}
	return engine, nil
}

// LoadRoot parses input into a single root node; multi-doc inputs return a slice.
func LoadRoot(input string, format loader.Format) (any, error) {
	return loader.LoadRoot(input, format)
}

// LoadReader parses everything read from r.
func LoadReader(r io.Reader, format loader.Format) (any, error) {
	return loader.LoadReader(r, format)
}

// LoadFile reads and parses the file at path.
func LoadFile(path string, format loader.Format) (any, error) {
	return loader.LoadFile(path, format)
}

// Evaluate runs the evaluator against root.
func (e *Engine) Evaluate(expr string, root any) (any, error) {
	if e == nil || e.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is not configured")
	}
	return e.Evaluator.Evaluate(expr, root)
}

// Select returns the node of root addressed by path (pointer, dotted or
// expression form).
func (e *Engine) Select(root any, path string) (any, error) {
	var eval navigator.EvaluateFunc
	if e != nil && e.Evaluator != nil {
		eval = e.Evaluator.Evaluate
	}
	node, err := navigator.NodeAtPath(root, path, eval)
	if err != nil {
		return nil, err
	}
	e.logger().V(1).Info("selected root", "path", path)
	return node, nil
}

// Traverse starts a traversal of root. opts.Logger defaults to the
// engine's logger.
func (e *Engine) Traverse(root any, opts traverse.Options) (*traverse.Traversal, error) {
	if opts.Logger.GetSink() == nil {
		opts.Logger = e.logger()
	}
	return traverse.NewWithOptions(root, opts)
}

// Run pulls t through window into sink until the traversal ends, sink
// fails or ctx is cancelled. It returns the number of entries written.
func (e *Engine) Run(ctx context.Context, t *traverse.Traversal, window limiter.Config, sink Sink) (int, error) {
	if err := window.Validate(); err != nil {
		return 0, err
	}
	n := 0
	for entry := range limiter.Seq(window, t.Entries()) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := sink.Write(entry); err != nil {
			return n, err
		}
		n++
	}
	if err := t.Err(); err != nil {
		return n, err
	}
	e.logger().V(1).Info("traversal finished", "entries", n, "pending", t.Pending())
	return n, nil
}

func (e *Engine) logger() logr.Logger {
	if e == nil {
		return logr.Discard()
	}
	return e.Logger
}
