package repository

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/totegamma/archivist/internal/domain"
	"github.com/totegamma/archivist/internal/infrastructure/database/models"
)

type (
	EventRepository     = NodeRepository[*domain.Event, models.Event]
	InterviewRepository = NodeRepository[*domain.Interview, models.Interview]
	ItemRepository      = NodeRepository[*domain.Item, models.Item]
	PersonRepository    = NodeRepository[*domain.Person, models.Person]
)

func toStringArray(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

func fromStringArray(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}

func toNodeColumns(b *domain.Base) models.NodeColumns {
	metadata := make(datatypes.JSONSlice[models.Metadata], 0, len(b.Metadata))
	for _, m := range b.Metadata {
		metadata = append(metadata, models.Metadata{Type: m.Type, Label: m.Label, Value: m.Value})
	}
	return models.NodeColumns{
		ID:            b.ID,
		ProjectID:     b.ProjectID,
		CollectionIDs: toStringArray(b.CollectionIDs),
		Slug:          b.Slug,
		Private:       b.Private,
		Metadata:      metadata,
		CDate:         b.CreatedAt,
		MDate:         b.UpdatedAt,
	}
}

func fromNodeColumns(c models.NodeColumns) domain.Base {
	metadata := make([]domain.Metadata, 0, len(c.Metadata))
	for _, m := range c.Metadata {
		metadata = append(metadata, domain.Metadata{Type: m.Type, Label: m.Label, Value: m.Value})
	}
	return domain.Base{
		ID:            c.ID,
		ProjectID:     c.ProjectID,
		CollectionIDs: fromStringArray(c.CollectionIDs),
		Slug:          c.Slug,
		Private:       c.Private,
		Metadata:      metadata,
		CreatedAt:     c.CDate,
		UpdatedAt:     c.MDate,
	}
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return NewNodeRepository(db, NodeMapper[*domain.Event, models.Event]{
		Kind:        domain.KindEvent,
		TitleColumn: "title",
		ToModel: func(e *domain.Event) models.Event {
			return models.Event{
				NodeColumns: toNodeColumns(&e.Base),
				Title:       e.Title,
				Description: e.Description,
				DateStart:   e.DateStart,
				DateEnd:     e.DateEnd,
				DateDisplay: e.DateDisplay,
			}
		},
		ToDomain: func(m models.Event) *domain.Event {
			return &domain.Event{
				Base:        fromNodeColumns(m.NodeColumns),
				Title:       m.Title,
				Description: m.Description,
				DateStart:   m.DateStart,
				DateEnd:     m.DateEnd,
				DateDisplay: m.DateDisplay,
			}
		},
	})
}

func NewInterviewRepository(db *gorm.DB) *InterviewRepository {
	return NewNodeRepository(db, NodeMapper[*domain.Interview, models.Interview]{
		Kind:        domain.KindInterview,
		TitleColumn: "title",
		ToModel: func(i *domain.Interview) models.Interview {
			return models.Interview{
				NodeColumns: toNodeColumns(&i.Base),
				Title:       i.Title,
				Description: i.Description,
				PersonIDs:   toStringArray(i.PersonIDs),
				TagIDs:      toStringArray(i.TagIDs),
			}
		},
		ToDomain: func(m models.Interview) *domain.Interview {
			return &domain.Interview{
				Base:        fromNodeColumns(m.NodeColumns),
				Title:       m.Title,
				Description: m.Description,
				PersonIDs:   fromStringArray(m.PersonIDs),
				TagIDs:      fromStringArray(m.TagIDs),
			}
		},
	})
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return NewNodeRepository(db, NodeMapper[*domain.Item, models.Item]{
		Kind:        domain.KindItem,
		TitleColumn: "title",
		ToModel: func(i *domain.Item) models.Item {
			return models.Item{
				NodeColumns: toNodeColumns(&i.Base),
				Title:       i.Title,
				Description: i.Description,
			}
		},
		ToDomain: func(m models.Item) *domain.Item {
			return &domain.Item{
				Base:        fromNodeColumns(m.NodeColumns),
				Title:       m.Title,
				Description: m.Description,
			}
		},
	})
}

func NewPersonRepository(db *gorm.DB) *PersonRepository {
	return NewNodeRepository(db, NodeMapper[*domain.Person, models.Person]{
		Kind:        domain.KindPerson,
		TitleColumn: "name",
		ToModel: func(p *domain.Person) models.Person {
			return models.Person{
				NodeColumns:  toNodeColumns(&p.Base),
				Name:         p.Name,
				Bio:          p.Bio,
				DateBirth:    p.DateBirth,
				DateDeath:    p.DateDeath,
				TagIDs:       toStringArray(p.TagIDs),
				EventIDs:     toStringArray(p.EventIDs),
				InterviewIDs: toStringArray(p.InterviewIDs),
				ItemIDs:      toStringArray(p.ItemIDs),
			}
		},
		ToDomain: func(m models.Person) *domain.Person {
			return &domain.Person{
				Base:         fromNodeColumns(m.NodeColumns),
				Name:         m.Name,
				Bio:          m.Bio,
				DateBirth:    m.DateBirth,
				DateDeath:    m.DateDeath,
				TagIDs:       fromStringArray(m.TagIDs),
				EventIDs:     fromStringArray(m.EventIDs),
				InterviewIDs: fromStringArray(m.InterviewIDs),
				ItemIDs:      fromStringArray(m.ItemIDs),
			}
		},
	})
}
