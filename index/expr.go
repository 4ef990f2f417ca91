package index

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	exprEnvOnce sync.Once
	exprEnv     *cel.Env
	exprEnvErr  error
)

func celEnv() (*cel.Env, error) {
	exprEnvOnce.Do(func() {
		exprEnv, exprEnvErr = cel.NewEnv(
			cel.Variable("doc", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("params", cel.MapType(cel.StringType, cel.DynType)),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return exprEnv, exprEnvErr
}

// Expr matches documents whose stored fields satisfy a boolean CEL expression.
// The expression sees the stored fields as `doc` and the plan parameters as `params`.
//
// Expr is a non-scoring filter and is evaluated per candidate document, so it
// is best combined with a selective Must or Filter clause.
type Expr struct {
	source string
	prg    cel.Program
}

// CompileExpr compiles a CEL expression.
func CompileExpr(source string) (*Expr, error) {
	env, err := celEnv()
	if err != nil {
		return nil, fmt.Errorf("CEL environment: %w", err)
	}

	ast, issues := env.Compile(source)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("CEL compile error: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType && ast.OutputType() != cel.DynType {
		return nil, fmt.Errorf("CEL expression %q must be boolean, got %s", source, ast.OutputType())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("CEL program creation error: %w", err)
	}
	return &Expr{source: source, prg: prg}, nil
}

// MustCompileExpr is like CompileExpr but panics on error.
func MustCompileExpr(source string) *Expr {
	e, err := CompileExpr(source)
	if err != nil {
		panic(err)
	}
	return e
}

func (e *Expr) String() string { return fmt.Sprintf("expr(%s)", e.source) }

// Matches evaluates the expression against one document.
func (e *Expr) Matches(doc StoredFields, params map[string]any) (bool, error) {
	if params == nil {
		params = map[string]any{}
	}
	out, _, err := e.prg.Eval(map[string]any{
		"doc":    map[string]any(doc),
		"params": params,
	})
	if err != nil {
		return false, err
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL result is not boolean: %T", out.Value())
	}
	return result, nil
}
