package service

import (
	"context"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const userModule = "UserService"

type IUserService interface {
	Me(ctx context.Context, actor entity.Actor) (*dto.MeResponse, error)
	GetUser(ctx context.Context, username string) (*dto.UserProfileResponse, error)
	DeleteUser(ctx context.Context, username string) error
	GetDoctor(ctx context.Context, username string) (*dto.DoctorProfileResponse, error)
	ListDoctors(ctx context.Context) ([]dto.DoctorProfileResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	index      IIndexService
	logger     logger.ILogger
}

func NewUserService(uowFactory unitofwork.RepositoryFactory, index IIndexService, log logger.ILogger) IUserService {
	return &userService{
		uowFactory: uowFactory,
		index:      index,
		logger:     log,
	}
}

func (s *userService) Me(ctx context.Context, actor entity.Actor) (*dto.MeResponse, error) {
	if actor.IsDoctor() {
		doctor, err := s.GetDoctor(ctx, actor.Username)
		if err != nil {
			return nil, err
		}
		return &dto.MeResponse{Kind: string(entity.ActorDoctor), Doctor: doctor}, nil
	}

	user, err := s.GetUser(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{Kind: string(entity.ActorUser), User: user}, nil
}

func (s *userService) GetUser(ctx context.Context, username string) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: username}, specification.WithPosts{})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperror.NotFound("User not found")
	}
	return toUserProfile(user), nil
}

// DeleteUser removes the profile, its posts (cascade) and its credential, then
// retracts the posts from the index.
func (s *userService) DeleteUser(ctx context.Context, username string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: username})
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("User not found")
	}

	owned, err := uow.PostRepository().FindAll(ctx, specification.OwnedByUser{UserID: user.Id})
	if err != nil {
		return err
	}
	var postIds []uuid.UUID
	for _, p := range owned {
		subtree, err := uow.PostRepository().SubtreeIDs(ctx, p.Id)
		if err != nil {
			return err
		}
		postIds = append(postIds, subtree...)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Delete(ctx, user.Id); err != nil {
		return err
	}
	if err := uow.CredentialRepository().DeleteByUsername(ctx, user.Username); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	retracted, _ := s.index.RetractPosts(ctx, postIds)
	s.logger.Info(userModule, "User deleted", map[string]interface{}{
		"username":  username,
		"posts":     len(postIds),
		"retracted": retracted,
	})
	return nil
}

func (s *userService) GetDoctor(ctx context.Context, username string) (*dto.DoctorProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doctor, err := uow.DoctorRepository().FindOne(ctx, specification.ByUsername{Username: username}, specification.WithPosts{})
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, apperror.NotFound("Doctor not found")
	}
	return toDoctorProfile(doctor), nil
}

func (s *userService) ListDoctors(ctx context.Context) ([]dto.DoctorProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	doctors, err := uow.DoctorRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}
	res := make([]dto.DoctorProfileResponse, 0, len(doctors))
	for _, d := range doctors {
		res = append(res, *toDoctorProfile(d))
	}
	return res, nil
}

func toUserProfile(u *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:                 u.Id,
		Email:              u.Email,
		Username:           u.Username,
		Name:               u.Name,
		Phone:              u.Phone,
		DateOfBirth:        u.DateOfBirth,
		Gender:             u.Gender,
		BloodGroup:         u.BloodGroup,
		RelationNumber:     u.RelationNumber,
		FamilyDoctorName:   u.FamilyDoctorName,
		FamilyDoctorNumber: u.FamilyDoctorNumber,
		Height:             u.Height,
		Weight:             u.Weight,
		AadhaarNumber:      u.AadhaarNumber,
		Posts:              toPostResponses(u.Posts),
	}
}

func toDoctorProfile(d *entity.Doctor) *dto.DoctorProfileResponse {
	return &dto.DoctorProfileResponse{
		Id:             d.Id,
		Email:          d.Email,
		Username:       d.Username,
		Name:           d.Name,
		Phone:          d.Phone,
		Specialization: d.Specialization,
		HospitalName:   d.HospitalName,
		Posts:          toPostResponses(d.Posts),
	}
}
