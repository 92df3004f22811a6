package domain

// TargetItem is a node transformed for the external item builder.
type TargetItem struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Slug          string     `json:"slug"`
	Private       bool       `json:"private"`
	Metadata      []Metadata `json:"metadata"`
	CollectionIDs []string   `json:"collectionId"`
}

// TargetFile is the slimmed file shape sent alongside a TargetItem.
type TargetFile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	Path      string `json:"path"`
	ProjectID string `json:"projectId"`
	Slug      string `json:"slug"`
}

// MigrationReport summarizes a pipeline run, including partial progress on failure.
type MigrationReport struct {
	ProjectID string       `json:"projectId"`
	Uploaded  int          `json:"uploaded"`
	ByKind    map[Kind]int `json:"byKind"`
}
