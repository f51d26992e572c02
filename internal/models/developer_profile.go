package models

import (
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// ProfileLinks хранится в jsonb-колонке links
type ProfileLinks struct {
	GitHub    string `json:"github,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
	Website   string `json:"website,omitempty"`
}

type DeveloperProfile struct {
	BaseModel
	UserID   string `gorm:"type:uuid;not null;uniqueIndex"`
	Headline string
	Summary  string `gorm:"type:text"`
	Location string
	Skills   pq.StringArray                   `gorm:"type:text[]"`
	Links    datatypes.JSONType[ProfileLinks] `gorm:"type:jsonb"`
	// CV лежит на private-диске, фото на public
	CVPath    *string
	PhotoPath *string
}

// StoredFiles - пути файлов профиля, которые нужно удалить вместе с ним
func (p *DeveloperProfile) StoredFiles() (private []string, public []string) {
	if p.CVPath != nil && *p.CVPath != "" {
		private = append(private, *p.CVPath)
	}
	if p.PhotoPath != nil && *p.PhotoPath != "" {
		public = append(public, *p.PhotoPath)
	}
	return private, public
}
