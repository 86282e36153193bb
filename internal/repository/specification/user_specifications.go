package specification

import (
	"gorm.io/gorm"
)

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type ByUsername struct {
	Username string
}

func (s ByUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("username = ?", s.Username)
}

// EmailOrUsername matches either column; used for duplicate checks at registration.
type EmailOrUsername struct {
	Email    string
	Username string
}

func (s EmailOrUsername) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ? OR username = ?", s.Email, s.Username)
}

// WithPosts preloads the owner's posts, newest first.
type WithPosts struct{}

func (s WithPosts) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Posts", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_time DESC")
	})
}

// CredentialKind restricts auth rows to doctors or to users.
type CredentialKind struct {
	IsDoctor bool
}

func (s CredentialKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_doctor = ?", s.IsDoctor)
}
