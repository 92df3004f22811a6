package domain

import "time"

type ManifestState string

const (
	ManifestUnsynced   ManifestState = "UNSYNCED"
	ManifestDispatched ManifestState = "DISPATCHED"
	ManifestResolved   ManifestState = "RESOLVED"
)

// ManifestImage is one viewer image derived from a node file.
type ManifestImage struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Manifest is the local copy of a node's viewer manifest. RemoteURI is
// filled in later by the manifest generator's callback.
type Manifest struct {
	ID          string          `json:"id"`
	Parent      ParentRef       `json:"parent"`
	Title       string          `json:"title"`
	Label       string          `json:"label"`
	Description string          `json:"description"`
	Attribution string          `json:"attribution"`
	Images      []ManifestImage `json:"images"`
	RemoteURI   string          `json:"remoteUri"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (m *Manifest) State() ManifestState {
	if m == nil || m.ID == "" {
		return ManifestUnsynced
	}
	if m.RemoteURI == "" {
		return ManifestDispatched
	}
	return ManifestResolved
}

// ManifestCompletion is the body of the generator's callback.
type ManifestCompletion struct {
	ManifestID  string `json:"manifestId" form:"manifestId"`
	ManifestURI string `json:"manifestUri" form:"manifestUri"`
}
