package domain

const (
	ProjectRoleOwner  = "owner"
	ProjectRoleAdmin  = "admin"
	ProjectRoleEditor = "editor"
)

type ProjectUser struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Project is the tenant owning collections and content nodes.
type Project struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Hostname string        `json:"hostname"`
	Users    []ProjectUser `json:"users"`
}

// AdminIDs returns the ids of users holding an administrative role.
func (p Project) AdminIDs() []string {
	ids := make([]string, 0, len(p.Users))
	for _, u := range p.Users {
		if u.Role == ProjectRoleOwner || u.Role == ProjectRoleAdmin {
			ids = append(ids, u.UserID)
		}
	}
	return ids
}
