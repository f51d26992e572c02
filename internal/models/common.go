package models

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel - uuid генерирует postgres (uuid-ossp), см. миграцию init
type BaseModel struct {
	ID        string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// BaseModelWithDeleted - мягкое удаление, Unscoped() видит такие строки
type BaseModelWithDeleted struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
