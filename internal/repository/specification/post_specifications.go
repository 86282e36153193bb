package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByPostID struct {
	ID uuid.UUID
}

func (s ByPostID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("post_id = ?", s.ID)
}

type ByPostIDs struct {
	IDs []uuid.UUID
}

func (s ByPostIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("post_id IN ?", s.IDs)
}

type TopLevel struct{}

func (s TopLevel) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IS NULL")
}

type RepliesOf struct {
	ParentIDs []uuid.UUID
}

func (s RepliesOf) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("parent_id IN ?", s.ParentIDs)
}

type NonEmptyText struct{}

func (s NonEmptyText) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("text IS NOT NULL AND text <> ''")
}

type OwnedByUser struct {
	UserID uuid.UUID
}

func (s OwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

type OwnedByDoctor struct {
	DoctorID uuid.UUID
}

func (s OwnedByDoctor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doctor_id = ?", s.DoctorID)
}

// WithReplies preloads direct replies in creation order.
type WithReplies struct{}

func (s WithReplies) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Replies", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_time ASC")
	})
}
