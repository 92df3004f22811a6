package policy

import (
	"fmt"
)

// Version is the only policy document version the evaluator understands.
const Version = "2025-01-01"

// Summarize folds statement conclusions into a decision. The first explicit
// ALLOW or DENY wins; otherwise defaultAllow applies when nothing matched.
func Summarize(conclusions []Conclusion, defaultAllow bool) bool {
	result := UNSET
	for _, c := range conclusions {
		switch c {
		case ALLOW:
			return true
		case DENY:
			return false
		default:
			result = result.Or(c)
		}
	}
	if result == UNSET {
		return defaultAllow
	}
	return result == ALLOW
}

// EvaluatePolicy runs every statement registered for action and merges the
// conclusions of those whose condition holds. Statements that fail to
// evaluate are skipped.
func EvaluatePolicy(doc PolicyDocument, ctx RequestContext, action string) (Conclusion, error) {
	policy, ok := doc.Versions[Version]
	if !ok {
		return UNSET, fmt.Errorf("policy %s: unsupported version", doc.Name)
	}

	statements, ok := policy.Statements[action]
	if !ok {
		return UNSET, nil
	}

	conclusion := UNSET
	for _, stmt := range statements {
		evalResult, err := Eval(ctx, stmt.Condition)
		if err != nil {
			continue
		}
		if evalResult.Result == true {
			conclusion = conclusion.Or(ParseConclusion(stmt.Emit))
		}
	}
	return conclusion, nil
}

// Decide evaluates action and applies the document's default when no
// statement reached a conclusion.
func Decide(doc PolicyDocument, ctx RequestContext, action string) (bool, error) {
	conclusion, err := EvaluatePolicy(doc, ctx, action)
	if err != nil {
		return false, err
	}
	return Summarize([]Conclusion{conclusion}, doc.Versions[Version].Defaults[action]), nil
}

func Eval(ctx RequestContext, expr Expr) (EvalResult, error) {
	if expr.Const != nil {
		return EvalResult{
			Operator: "Const",
			Result:   expr.Const,
		}, nil
	}

	args := make([]any, 0, len(expr.Args))
	for _, arg := range expr.Args {
		result, err := Eval(ctx, arg)
		if err != nil {
			return EvalResult{
				Operator: expr.Operator,
				Error:    err.Error(),
			}, err
		}
		args = append(args, result.Result)
	}

	operatorFunc, exists := operators[expr.Operator]
	if !exists {
		return failed(expr.Operator, fmt.Errorf("unknown operator: %s", expr.Operator))
	}
	return operatorFunc(ctx, args)
}
