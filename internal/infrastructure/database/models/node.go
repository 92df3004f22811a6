package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type Metadata struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// NodeColumns are shared by the four node tables.
type NodeColumns struct {
	ID            string                        `json:"id" gorm:"primaryKey;type:text"`
	ProjectID     string                        `json:"projectId" gorm:"type:text;index"`
	CollectionIDs pq.StringArray                `json:"collectionId" gorm:"type:text[]"`
	Slug          string                        `json:"slug" gorm:"type:text;index"`
	Private       bool                          `json:"private" gorm:"not null;default:false"`
	Metadata      datatypes.JSONSlice[Metadata] `json:"metadata" gorm:"type:jsonb"`
	CDate         time.Time                     `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
	MDate         time.Time                     `json:"mdate" gorm:"autoUpdateTime"`
}

type Event struct {
	NodeColumns
	Title       string     `json:"title" gorm:"type:text"`
	Description string     `json:"description" gorm:"type:text"`
	DateStart   *time.Time `json:"dateStart" gorm:"type:timestamp with time zone"`
	DateEnd     *time.Time `json:"dateEnd" gorm:"type:timestamp with time zone"`
	DateDisplay string     `json:"dateDisplay" gorm:"type:text"`
}

func (Event) TableName() string { return "events" }

type Interview struct {
	NodeColumns
	Title       string         `json:"title" gorm:"type:text"`
	Description string         `json:"description" gorm:"type:text"`
	PersonIDs   pq.StringArray `json:"personId" gorm:"type:text[]"`
	TagIDs      pq.StringArray `json:"tagIds" gorm:"type:text[]"`
}

func (Interview) TableName() string { return "interviews" }

type Item struct {
	NodeColumns
	Title       string `json:"title" gorm:"type:text"`
	Description string `json:"description" gorm:"type:text"`
}

func (Item) TableName() string { return "items" }

type Person struct {
	NodeColumns
	Name         string         `json:"name" gorm:"type:text"`
	Bio          string         `json:"bio" gorm:"type:text"`
	DateBirth    *time.Time     `json:"dateBirth" gorm:"type:timestamp with time zone"`
	DateDeath    *time.Time     `json:"dateDeath" gorm:"type:timestamp with time zone"`
	TagIDs       pq.StringArray `json:"tagIds" gorm:"type:text[]"`
	EventIDs     pq.StringArray `json:"events" gorm:"type:text[]"`
	InterviewIDs pq.StringArray `json:"interviews" gorm:"type:text[]"`
	ItemIDs      pq.StringArray `json:"items" gorm:"type:text[]"`
}

func (Person) TableName() string { return "people" }
