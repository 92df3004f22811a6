package policy

import (
	"fmt"
	"reflect"
	"slices"
)

type Operator func(ctx RequestContext, args []any) (EvalResult, error)

var operators = map[string]Operator{
	"And":      opAnd,
	"Or":       opOr,
	"Not":      opNot,
	"Eq":       opEq,
	"Contains": opContains,
	"Load":     opLoad,
}

func failed(op string, err error) (EvalResult, error) {
	return EvalResult{Operator: op, Error: err.Error()}, err
}

func ok(op string, result any) (EvalResult, error) {
	return EvalResult{Operator: op, Result: result}, nil
}

func bools(op string, args []any) ([]bool, error) {
	out := make([]bool, len(args))
	for i, arg := range args {
		b, isBool := arg.(bool)
		if !isBool {
			return nil, fmt.Errorf("%s: argument %d must be bool, got %s", op, i, reflect.TypeOf(arg))
		}
		out[i] = b
	}
	return out, nil
}

func opAnd(_ RequestContext, args []any) (EvalResult, error) {
	values, err := bools("And", args)
	if err != nil {
		return failed("And", err)
	}
	return ok("And", !slices.Contains(values, false))
}

func opOr(_ RequestContext, args []any) (EvalResult, error) {
	values, err := bools("Or", args)
	if err != nil {
		return failed("Or", err)
	}
	return ok("Or", slices.Contains(values, true))
}

func opNot(_ RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		return failed("Not", fmt.Errorf("Not: expected 1 argument, got %d", len(args)))
	}
	values, err := bools("Not", args)
	if err != nil {
		return failed("Not", err)
	}
	return ok("Not", !values[0])
}

func opEq(_ RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		return failed("Eq", fmt.Errorf("Eq: expected 2 arguments, got %d", len(args)))
	}
	return ok("Eq", args[0] == args[1])
}

func opContains(_ RequestContext, args []any) (EvalResult, error) {
	if len(args) != 2 {
		return failed("Contains", fmt.Errorf("Contains: expected 2 arguments, got %d", len(args)))
	}
	list, isList := args[0].([]any)
	if !isList {
		return failed("Contains", fmt.Errorf("Contains: first argument must be []any, got %s", reflect.TypeOf(args[0])))
	}
	return ok("Contains", slices.Contains(list, args[1]))
}

func opLoad(ctx RequestContext, args []any) (EvalResult, error) {
	if len(args) != 1 {
		return failed("Load", fmt.Errorf("Load: expected 1 argument, got %d", len(args)))
	}
	key, isString := args[0].(string)
	if !isString {
		return failed("Load", fmt.Errorf("Load: argument must be string, got %s", reflect.TypeOf(args[0])))
	}
	value, found := resolveDotNotation(structToMap(ctx), key)
	if !found {
		return failed("Load", fmt.Errorf("Load: key not found: %s", key))
	}
	return ok("Load", value)
}
