package matcher

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/rubeniskov/traverse-json/internal/cel"
)

// buildExpr compiles a CEL predicate. Entries whose evaluation fails (a
// missing field, a type mismatch) are rejected rather than aborting the
// traversal.
func buildExpr(expr string, log logr.Logger) (Func, error) {
	eval, err := cel.Default()
	if err != nil {
		return nil, err
	}
	pred, err := eval.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("expression matcher: %w", err)
	}
	return func(path string, value any) bool {
		ok, err := pred.Eval(path, value)
		if err != nil {
			log.V(1).Info("expression rejected entry", "expr", expr, "path", path, "error", err.Error())
			return false
		}
		return ok
	}, nil
}
