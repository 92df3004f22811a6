package usecase

import (
	"time"

	"github.com/totegamma/archivist/internal/domain"
)

// KindDescriptor holds what differs between node kinds.
type KindDescriptor[T domain.Node] struct {
	Kind domain.Kind
	// New returns an empty node of the kind, used as the decode target.
	New func() T
	// ExtraMetadata lists kind specific fields exported by the migration.
	ExtraMetadata func(T) []domain.Metadata
}

const metadataDateLayout = "2006-01-02"

func dateMetadata(label string, t *time.Time) []domain.Metadata {
	if t == nil || t.IsZero() {
		return nil
	}
	return []domain.Metadata{{Type: "date", Label: label, Value: t.Format(metadataDateLayout)}}
}

func textMetadata(label, value string) []domain.Metadata {
	if value == "" {
		return nil
	}
	return []domain.Metadata{{Type: "text", Label: label, Value: value}}
}

var EventKind = KindDescriptor[*domain.Event]{
	Kind: domain.KindEvent,
	New:  func() *domain.Event { return &domain.Event{} },
	ExtraMetadata: func(e *domain.Event) []domain.Metadata {
		var md []domain.Metadata
		md = append(md, dateMetadata("Date Start", e.DateStart)...)
		md = append(md, dateMetadata("Date End", e.DateEnd)...)
		md = append(md, textMetadata("Date Display", e.DateDisplay)...)
		return md
	},
}

var InterviewKind = KindDescriptor[*domain.Interview]{
	Kind:          domain.KindInterview,
	New:           func() *domain.Interview { return &domain.Interview{} },
	ExtraMetadata: func(*domain.Interview) []domain.Metadata { return nil },
}

var ItemKind = KindDescriptor[*domain.Item]{
	Kind:          domain.KindItem,
	New:           func() *domain.Item { return &domain.Item{} },
	ExtraMetadata: func(*domain.Item) []domain.Metadata { return nil },
}

var PersonKind = KindDescriptor[*domain.Person]{
	Kind: domain.KindPerson,
	New:  func() *domain.Person { return &domain.Person{} },
	ExtraMetadata: func(p *domain.Person) []domain.Metadata {
		var md []domain.Metadata
		md = append(md, dateMetadata("Date of Birth", p.DateBirth)...)
		md = append(md, dateMetadata("Date of Death", p.DateDeath)...)
		md = append(md, textMetadata("Bio", p.Bio)...)
		return md
	},
}
