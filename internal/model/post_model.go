package model

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	PostId      uuid.UUID  `gorm:"column:post_id;type:uuid;primaryKey"`
	UserId      *uuid.UUID `gorm:"type:uuid;index"`
	DoctorId    *uuid.UUID `gorm:"type:uuid;index"`
	Text        string     `gorm:"type:varchar(500)"`
	CreatedTime time.Time  `gorm:"index"`
	ParentId    *uuid.UUID `gorm:"type:uuid;index"`
	Replies     []Post     `gorm:"foreignKey:ParentId;references:PostId;constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string {
	return "posts"
}
