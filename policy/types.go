package policy

type Conclusion int

const (
	UNSET Conclusion = iota
	OK
	NG
	ALLOW
	DENY
)

func ParseConclusion(s string) Conclusion {
	switch s {
	case "allow":
		return ALLOW
	case "deny":
		return DENY
	case "ok":
		return OK
	case "ng":
		return NG
	default:
		return UNSET
	}
}

// Or merges two conclusions. DENY beats ALLOW beats OK beats NG, except that
// directly conflicting pairs cancel out to UNSET.
func (c Conclusion) Or(other Conclusion) Conclusion {
	switch {
	case c == UNSET:
		return other
	case other == UNSET:
		return c
	case (c == DENY && other == ALLOW) || (c == ALLOW && other == DENY):
		return UNSET
	case c == DENY || other == DENY:
		return DENY
	case c == ALLOW || other == ALLOW:
		return ALLOW
	case (c == OK && other == NG) || (c == NG && other == OK):
		return UNSET
	case c == OK || other == OK:
		return OK
	case c == NG || other == NG:
		return NG
	}
	return UNSET
}

// RequestContext is the document Load expressions resolve against.
// Nested values must be map[string]any and lists []any.
type RequestContext struct {
	Requester any            `json:"requester"`
	Project   any            `json:"project"`
	Resource  any            `json:"resource"`
	Params    map[string]any `json:"params"`
}

type PolicyDocument struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Versions    map[string]Policy `json:"versions"`
}

type Policy struct {
	Statements map[string][]Stmt `json:"statements"`
	Defaults   map[string]bool   `json:"defaults"`
}

type Stmt struct {
	Emit      string `json:"emit"`
	Condition Expr   `json:"condition"`
}

type Expr struct {
	Operator string `json:"op"`
	Args     []Expr `json:"args"`
	Const    any    `json:"const,omitempty"`
}

type EvalResult struct {
	Operator string       `json:"op"`
	Args     []EvalResult `json:"args"`
	Result   any          `json:"result"`
	Error    string       `json:"error"`
}
