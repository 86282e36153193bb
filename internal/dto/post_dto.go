package dto

import (
	"time"

	"github.com/google/uuid"
)

const (
	IndexStatusIndexed = "indexed"
	IndexStatusFailed  = "failed"
)

type CreatePostRequest struct {
	Text     string     `json:"text" validate:"required,min=1,max=500"`
	ParentId *uuid.UUID `json:"parent_id"`
}

type PostResponse struct {
	PostId      uuid.UUID      `json:"post_id"`
	Text        string         `json:"text"`
	CreatedTime time.Time      `json:"created_time"`
	ParentId    *uuid.UUID     `json:"parent_id"`
	UserId      *uuid.UUID     `json:"user_id"`
	DoctorId    *uuid.UUID     `json:"doctor_id"`
	Replies     []PostResponse `json:"replies"`
}

type CreatePostResponse struct {
	PostResponse
	IndexStatus string `json:"index_status"`
}

type ListPostsRequest struct {
	Skip  int `query:"skip" validate:"min=0"`
	Limit int `query:"limit" validate:"min=0,max=100"`
}
