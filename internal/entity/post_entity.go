package entity

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	Id          uuid.UUID
	UserId      *uuid.UUID
	DoctorId    *uuid.UUID
	Text        string
	CreatedTime time.Time
	ParentId    *uuid.UUID
	Replies     []*Post
}

func (p *Post) IsReply() bool {
	return p.ParentId != nil
}
