// Package cel compiles and evaluates CEL expressions used to filter
// traversal entries and to select the subtree a traversal starts from.
package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"
	lru "github.com/hashicorp/golang-lru"

	"github.com/rubeniskov/traverse-json/pkg/container"
	"github.com/rubeniskov/traverse-json/pkg/pointer"
)

// Variable names bound when an expression is evaluated against an entry.
const (
	VarRoot  = "_"
	VarPath  = "path"
	VarValue = "value"
	VarKey   = "key"
	VarDepth = "depth"
)

// DefaultCacheSize bounds how many compiled programs an Evaluator keeps.
const DefaultCacheSize = 128

// Evaluator compiles CEL expressions against a fixed environment and caches
// the resulting programs by expression text.
type Evaluator struct {
	env      *cel.Env
	programs *lru.Cache
}

var (
	defaultOnce sync.Once
	defaultEval *Evaluator
	defaultErr  error
)

// Default returns a process-wide Evaluator, built on first use.
func Default() (*Evaluator, error) {
	defaultOnce.Do(func() {
		defaultEval, defaultErr = NewEvaluator(DefaultCacheSize)
	})
	return defaultEval, defaultErr
}

// NewEvaluator creates an Evaluator with the standard extension libraries.
// cacheSize <= 0 falls back to DefaultCacheSize.
func NewEvaluator(cacheSize int, opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newStandardCELEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	programs, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create program cache: %w", err)
	}
	return &Evaluator{env: env, programs: programs}, nil
}

func newStandardCELEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 9+len(opts))
	allOpts = append(allOpts,
		cel.Variable(VarRoot, cel.DynType),
		cel.Variable(VarPath, cel.StringType),
		cel.Variable(VarValue, cel.DynType),
		cel.Variable(VarKey, cel.StringType),
		cel.Variable(VarDepth, cel.IntType),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

func (e *Evaluator) program(expr string) (cel.Program, *cel.Type, error) {
	if cached, ok := e.programs.Get(expr); ok {
		c := cached.(compiled)
		return c.prg, c.out, nil
	}
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, nil, fmt.Errorf("program error: %w", err)
	}
	e.programs.Add(expr, compiled{prg: prg, out: ast.OutputType()})
	return prg, ast.OutputType(), nil
}

type compiled struct {
	prg cel.Program
	out *cel.Type
}

// Predicate is a compiled boolean expression over a traversal entry.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile checks that expr type-checks to bool (or dyn) and returns a
// reusable Predicate.
func (e *Evaluator) Compile(expr string) (*Predicate, error) {
	prg, out, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	if name := out.String(); name != "bool" && name != "dyn" {
		return nil, fmt.Errorf("expression %q has type %s, want bool", expr, name)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

// String returns the source expression.
func (p *Predicate) String() string { return p.expr }

// Eval runs the predicate for the entry at path holding value.
func (p *Predicate) Eval(path string, value any) (bool, error) {
	plain := container.ToPlain(value)
	_, key := pointer.Split(path)
	out, _, err := p.prg.Eval(map[string]any{
		VarRoot:  plain,
		VarPath:  path,
		VarValue: plain,
		VarKey:   key,
		VarDepth: int64(pointer.Depth(path)),
	})
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %s, want bool", p.expr, out.Type().TypeName())
	}
	return b, nil
}

// Evaluate runs expr with data bound to "_" and converts the result back to
// Go values. Example: "_.items[0]" or "_.items.filter(x, x.available)".
func (e *Evaluator) Evaluate(expr string, data any) (any, error) {
	prg, _, err := e.program(expr)
	if err != nil {
		return nil, err
	}
	result, _, err := prg.Eval(map[string]any{
		VarRoot: container.ToPlain(data),
	})
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(result), nil
}

// ToGo converts CEL values to native Go values recursively.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}
	return fromNative(val.Value())
}

func fromNative(v any) any {
	switch t := v.(type) {
	case ref.Val:
		return ToGo(t)
	case []ref.Val:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = ToGo(elem)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, elem := range t {
			out[i] = fromNative(elem)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[k] = fromNative(elem)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(fromNative(k.Value()))] = ToGo(elem)
		}
		return out
	default:
		return v
	}
}
