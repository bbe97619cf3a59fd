package sandbox

import (
	"fmt"

	"backtestlab/internal/market"
	"backtestlab/internal/simulate"
)

// interpreter walks a validated Program once per bar. It carries no
// state of its own between calls; the caller's simulate.State is the
// only thing that persists across bars for one instrument.
type interpreter struct {
	window market.Window
	state  simulate.State
	result struct {
		signal     string
		size       float64
		stopLoss   float64
		takeProfit float64
	}
}

func runProgram(prog *Program, w market.Window, state simulate.State) (simulate.Decision, error) {
	in := &interpreter{window: w, state: state}
	for _, stmt := range prog.Stmts {
		if err := in.execStmt(stmt); err != nil {
			return simulate.Decision{}, err
		}
	}
	signal := simulate.Signal(in.result.signal)
	switch signal {
	case simulate.SignalBuy, simulate.SignalSell, simulate.SignalFlat, simulate.SignalHold:
	default:
		signal = simulate.SignalNone
	}
	return simulate.Decision{
		Signal:     signal,
		Size:       in.result.size,
		StopLoss:   in.result.stopLoss,
		TakeProfit: in.result.takeProfit,
	}, nil
}

func (in *interpreter) execStmt(s Stmt) error {
	switch n := s.(type) {
	case *IfStmt:
		v, err := in.eval(n.Cond)
		if err != nil {
			return err
		}
		branch := n.Then
		if !truthy(v) {
			branch = n.Else
		}
		for _, stmt := range branch {
			if err := in.execStmt(stmt); err != nil {
				return err
			}
		}
		return nil
	case *AssignStmt:
		v, err := in.eval(n.Value)
		if err != nil {
			return err
		}
		if n.StateName != "" {
			f, ok := asNumber(v)
			if !ok {
				return fmt.Errorf("state.%s: expected a number", n.StateName)
			}
			in.state[n.StateName] = f
			return nil
		}
		switch n.Target {
		case "signal":
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("signal: expected a string")
			}
			in.result.signal = s
		case "size":
			f, ok := asNumber(v)
			if !ok {
				return fmt.Errorf("size: expected a number")
			}
			in.result.size = f
		case "stop_loss":
			f, ok := asNumber(v)
			if !ok {
				return fmt.Errorf("stop_loss: expected a number")
			}
			in.result.stopLoss = f
		case "take_profit":
			f, ok := asNumber(v)
			if !ok {
				return fmt.Errorf("take_profit: expected a number")
			}
			in.result.takeProfit = f
		}
		return nil
	default:
		return fmt.Errorf("unrecognized statement")
	}
}

func (in *interpreter) eval(e Expr) (any, error) {
	switch n := e.(type) {
	case NumberLit:
		return n.Value, nil
	case StringLit:
		return n.Value, nil
	case BoolLit:
		return n.Value, nil
	case *Ident:
		if len(n.Name) > 6 && n.Name[:6] == "state." {
			return in.state[n.Name[6:]], nil
		}
		return nil, fmt.Errorf("unknown identifier %q", n.Name)
	case *UnaryExpr:
		v, err := in.eval(n.Expr)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case tokNot:
			return !truthy(v), nil
		case tokMinus:
			f, _ := asNumber(v)
			return -f, nil
		}
		return nil, fmt.Errorf("unsupported unary operator")
	case *BinaryExpr:
		return in.evalBinary(n)
	case *CallExpr:
		args := make([]float64, len(n.Args))
		for i, a := range n.Args {
			v, err := in.eval(a)
			if err != nil {
				return nil, err
			}
			f, ok := asNumber(v)
			if !ok {
				return nil, fmt.Errorf("%s: argument %d must be a number", n.Func, i)
			}
			args[i] = f
		}
		return callBuiltin(n.Func, args, in.window)
	default:
		return nil, fmt.Errorf("unrecognized expression")
	}
}

func (in *interpreter) evalBinary(n *BinaryExpr) (any, error) {
	if n.Op == tokAnd {
		l, err := in.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if !truthy(l) {
			return false, nil
		}
		r, err := in.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil
	}
	if n.Op == tokOr {
		l, err := in.eval(n.Left)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return true, nil
		}
		r, err := in.eval(n.Right)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil
	}

	l, err := in.eval(n.Left)
	if err != nil {
		return nil, err
	}
	r, err := in.eval(n.Right)
	if err != nil {
		return nil, err
	}

	if n.Op == tokEq || n.Op == tokNeq {
		eq := valuesEqual(l, r)
		if n.Op == tokEq {
			return eq, nil
		}
		return !eq, nil
	}

	lf, lok := asNumber(l)
	rf, rok := asNumber(r)
	if !lok || !rok {
		return nil, fmt.Errorf("operator requires numeric operands")
	}
	switch n.Op {
	case tokLt:
		return lf < rf, nil
	case tokLte:
		return lf <= rf, nil
	case tokGt:
		return lf > rf, nil
	case tokGte:
		return lf >= rf, nil
	case tokPlus:
		return lf + rf, nil
	case tokMinus:
		return lf - rf, nil
	case tokStar:
		return lf * rf, nil
	case tokSlash:
		if rf == 0 {
			return 0.0, nil
		}
		return lf / rf, nil
	case tokPercent:
		if rf == 0 {
			return 0.0, nil
		}
		return float64(int64(lf) % int64(rf)), nil
	default:
		return nil, fmt.Errorf("unsupported binary operator")
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return false
	}
}

func asNumber(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}
