package models

import (
	"time"

	"gorm.io/datatypes"
)

type File struct {
	ID          string    `json:"id" gorm:"primaryKey;type:text"`
	Name        string    `json:"name" gorm:"type:text"`
	Title       string    `json:"title" gorm:"type:text"`
	Type        string    `json:"type" gorm:"type:text"`
	Path        string    `json:"path" gorm:"type:text"`
	Slug        string    `json:"slug" gorm:"type:text"`
	ProjectID   string    `json:"projectId" gorm:"type:text;index"`
	EventID     *string   `json:"eventId,omitempty" gorm:"type:text;index"`
	InterviewID *string   `json:"interviewId,omitempty" gorm:"type:text;index"`
	ItemID      *string   `json:"itemId,omitempty" gorm:"type:text;index"`
	PersonID    *string   `json:"personId,omitempty" gorm:"type:text;index"`
	CDate       time.Time `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

type ManifestImage struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

type Manifest struct {
	ID          string                             `json:"id" gorm:"primaryKey;type:text"`
	EventID     *string                            `json:"eventId,omitempty" gorm:"type:text;uniqueIndex"`
	InterviewID *string                            `json:"interviewId,omitempty" gorm:"type:text;uniqueIndex"`
	ItemID      *string                            `json:"itemId,omitempty" gorm:"type:text;uniqueIndex"`
	PersonID    *string                            `json:"personId,omitempty" gorm:"type:text;uniqueIndex"`
	Title       string                             `json:"title" gorm:"type:text"`
	Label       string                             `json:"label" gorm:"type:text"`
	Description string                             `json:"description" gorm:"type:text"`
	Attribution string                             `json:"attribution" gorm:"type:text"`
	Images      datatypes.JSONSlice[ManifestImage] `json:"images" gorm:"type:jsonb"`
	RemoteURI   string                             `json:"remoteUri" gorm:"type:text"`
	MDate       time.Time                          `json:"mdate" gorm:"autoUpdateTime"`
}

type ProjectUser struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

type Project struct {
	ID       string                           `json:"id" gorm:"primaryKey;type:text"`
	Title    string                           `json:"title" gorm:"type:text"`
	Hostname string                           `json:"hostname" gorm:"type:text;uniqueIndex"`
	Users    datatypes.JSONSlice[ProjectUser] `json:"users" gorm:"type:jsonb"`
	CDate    time.Time                        `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}
