package policy

const (
	ActionNodeCreate = "node.create"
	ActionNodeUpdate = "node.update"
	ActionNodeDelete = "node.delete"
)

func loadExpr(key string) Expr {
	return Expr{Operator: "Load", Args: []Expr{{Const: key}}}
}

var requesterIsProjectAdmin = Stmt{
	Emit: "allow",
	Condition: Expr{
		Operator: "Contains",
		Args: []Expr{
			loadExpr("project.adminIds"),
			loadExpr("requester"),
		},
	},
}

// ProjectAdmin permits node mutations only to users holding an admin role
// on the owning project. Everything else is denied by default.
var ProjectAdmin = PolicyDocument{
	Name:        "project-admin",
	Description: "node mutations require a project admin",
	Versions: map[string]Policy{
		Version: {
			Statements: map[string][]Stmt{
				ActionNodeCreate: {requesterIsProjectAdmin},
				ActionNodeUpdate: {requesterIsProjectAdmin},
				ActionNodeDelete: {requesterIsProjectAdmin},
			},
			Defaults: map[string]bool{
				ActionNodeCreate: false,
				ActionNodeUpdate: false,
				ActionNodeDelete: false,
			},
		},
	},
}
