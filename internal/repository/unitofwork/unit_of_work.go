package unitofwork

import (
	"context"

	"cognimed-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	DoctorRepository() contract.DoctorRepository
	CredentialRepository() contract.CredentialRepository
	PostRepository() contract.PostRepository
	PostEmbeddingRepository() contract.PostEmbeddingRepository
	PrescriptionRepository() contract.PrescriptionRepository
}
