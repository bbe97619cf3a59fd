package sandbox

import "fmt"

// ValidationError categorizes why a strategy source was rejected, with
// enough position information for a caller to point the author at the
// offending line, mirroring sandbox.py's node/name blacklist reporting.
type ValidationError struct {
	Reason string
	Line   int
	Col    int
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Col, e.Reason)
	}
	return e.Reason
}

var assignTargets = map[string]bool{
	"signal":      true,
	"size":        true,
	"stop_loss":   true,
	"take_profit": true,
}

var builtinFuncs = map[string]int{
	// name -> exact number of arguments the call must have
	"close":   1,
	"open":    1,
	"high":    1,
	"low":     1,
	"volume":  1,
	"sma":     1,
	"ema":     1,
	"rsi":     1,
	"atr":     1,
	"bbupper": 1,
	"bblower": 1,
	"vwap":    0,
	"abs":     1,
	"min":     2,
	"max":     2,
}

// validateProgram walks the AST rejecting any assignment target, bare
// identifier, or function call outside the fixed capability surface.
// Because the parser can only ever produce nodes from the closed grammar
// in ast.go, this walk is a whitelist check over known shapes rather
// than a blacklist over an open-ended host language.
func validateProgram(prog *Program) error {
	if len(prog.Stmts) == 0 {
		return &ValidationError{Reason: "strategy source is empty"}
	}
	for _, s := range prog.Stmts {
		if err := validateStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func validateStmt(s Stmt) error {
	switch n := s.(type) {
	case *IfStmt:
		if err := validateExpr(n.Cond); err != nil {
			return err
		}
		for _, s := range n.Then {
			if err := validateStmt(s); err != nil {
				return err
			}
		}
		for _, s := range n.Else {
			if err := validateStmt(s); err != nil {
				return err
			}
		}
		return nil
	case *AssignStmt:
		if n.StateName == "" && !assignTargets[n.Target] {
			return &ValidationError{Reason: fmt.Sprintf("assignment to unknown field %q", n.Target), Line: n.Line, Col: n.Col}
		}
		return validateExpr(n.Value)
	default:
		return &ValidationError{Reason: "unrecognized statement"}
	}
}

func validateExpr(e Expr) error {
	switch n := e.(type) {
	case NumberLit, StringLit, BoolLit:
		return nil
	case *Ident:
		if len(n.Name) > 6 && n.Name[:6] == "state." {
			return nil
		}
		return &ValidationError{Reason: fmt.Sprintf("reference to unknown identifier %q", n.Name), Line: n.Line, Col: n.Col}
	case *BinaryExpr:
		if err := validateExpr(n.Left); err != nil {
			return err
		}
		return validateExpr(n.Right)
	case *UnaryExpr:
		return validateExpr(n.Expr)
	case *CallExpr:
		arity, ok := builtinFuncs[n.Func]
		if !ok {
			return &ValidationError{Reason: fmt.Sprintf("call to unknown function %q", n.Func), Line: n.Line, Col: n.Col}
		}
		if len(n.Args) != arity {
			return &ValidationError{Reason: fmt.Sprintf("%s expects %d argument(s), got %d", n.Func, arity, len(n.Args)), Line: n.Line, Col: n.Col}
		}
		for _, a := range n.Args {
			if err := validateExpr(a); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ValidationError{Reason: "unrecognized expression"}
	}
}
