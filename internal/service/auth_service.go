package service

import (
	"context"
	"time"

	"cognimed-be/internal/dto"
	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/apperror"
	"cognimed-be/internal/pkg/logger"
	"cognimed-be/internal/pkg/mailer"
	"cognimed-be/internal/pkg/serverutils"
	"cognimed-be/internal/repository/specification"
	"cognimed-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	authModule = "AuthService"

	TokenTypeBearer = "bearer"
)

type IAuthService interface {
	RegisterUser(ctx context.Context, req *dto.RegisterUserRequest) (*dto.AuthResponse, error)
	RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, kind entity.ActorKind, req *dto.LoginRequest) (*dto.AuthResponse, error)
}

type authService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	tokenTTL     time.Duration
	logger       logger.ILogger
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService, tokenTTL time.Duration, log logger.ILogger) IAuthService {
	return &authService{
		uowFactory:   uowFactory,
		emailService: emailService,
		tokenTTL:     tokenTTL,
		logger:       log,
	}
}

func (s *authService) RegisterUser(ctx context.Context, req *dto.RegisterUserRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.EmailOrUsername{Email: req.Email, Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.IntegrityConflict("User already registered")
	}
	if err := s.ensureUsernameFree(ctx, uow, req.Username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:                 uuid.New(),
		Name:               req.Name,
		Email:              req.Email,
		Username:           req.Username,
		Phone:              req.Phone,
		DateOfBirth:        req.DateOfBirth,
		Gender:             req.Gender,
		BloodGroup:         req.BloodGroup,
		RelationNumber:     req.RelationNumber,
		FamilyDoctorName:   req.FamilyDoctorName,
		FamilyDoctorNumber: req.FamilyDoctorNumber,
		Height:             req.Height,
		Weight:             req.Weight,
		AadhaarNumber:      req.AadhaarNumber,
		CreatedAt:          time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}
	if err := uow.CredentialRepository().Create(ctx, &entity.Credential{
		Username:       user.Username,
		HashedPassword: string(hash),
		IsDoctor:       false,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(authModule, "User registered", map[string]interface{}{"username": user.Username})
	s.sendWelcome(user.Email, user.Name, false)

	return s.issue(entity.Actor{Kind: entity.ActorUser, Id: user.Id, Username: user.Username})
}

func (s *authService) RegisterDoctor(ctx context.Context, req *dto.RegisterDoctorRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.DoctorRepository().FindOne(ctx, specification.EmailOrUsername{Email: req.Email, Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.IntegrityConflict("Doctor already registered")
	}
	if err := s.ensureUsernameFree(ctx, uow, req.Username); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	doctor := &entity.Doctor{
		Id:             uuid.New(),
		Name:           req.Name,
		Email:          req.Email,
		Username:       req.Username,
		Phone:          req.Phone,
		Specialization: req.Specialization,
		HospitalName:   req.HospitalName,
		CreatedAt:      time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.DoctorRepository().Create(ctx, doctor); err != nil {
		return nil, err
	}
	if err := uow.CredentialRepository().Create(ctx, &entity.Credential{
		Username:       doctor.Username,
		HashedPassword: string(hash),
		IsDoctor:       true,
	}); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info(authModule, "Doctor registered", map[string]interface{}{"username": doctor.Username})
	s.sendWelcome(doctor.Email, doctor.Name, true)

	return s.issue(entity.Actor{Kind: entity.ActorDoctor, Id: doctor.Id, Username: doctor.Username})
}

// ensureUsernameFree guards the auth table, which is shared by both kinds.
func (s *authService) ensureUsernameFree(ctx context.Context, uow unitofwork.UnitOfWork, username string) error {
	cred, err := uow.CredentialRepository().FindOne(ctx, specification.ByUsername{Username: username})
	if err != nil {
		return err
	}
	if cred != nil {
		return apperror.IntegrityConflict("Username already taken")
	}
	return nil
}

func (s *authService) Login(ctx context.Context, kind entity.ActorKind, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	isDoctor := kind == entity.ActorDoctor
	uow := s.uowFactory.NewUnitOfWork(ctx)

	cred, err := uow.CredentialRepository().FindOne(ctx,
		specification.ByUsername{Username: req.Username},
		specification.CredentialKind{IsDoctor: isDoctor},
	)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.HashedPassword), []byte(req.Password)); err != nil {
		return nil, apperror.Unauthorized("Invalid credentials")
	}

	actor := entity.Actor{Kind: kind, Username: cred.Username}
	if isDoctor {
		doctor, err := uow.DoctorRepository().FindOne(ctx, specification.ByUsername{Username: cred.Username})
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		actor.Id = doctor.Id
	} else {
		user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: cred.Username})
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperror.Unauthorized("Invalid credentials")
		}
		actor.Id = user.Id
	}

	s.logger.Info(authModule, "Login", map[string]interface{}{"username": actor.Username, "kind": string(kind)})
	return s.issue(actor)
}

func (s *authService) issue(actor entity.Actor) (*dto.AuthResponse, error) {
	token, err := serverutils.IssueToken(actor, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

func (s *authService) sendWelcome(email, name string, isDoctor bool) {
	if s.emailService == nil || email == "" {
		return
	}
	go func() {
		if err := s.emailService.SendWelcome(email, name, isDoctor); err != nil {
			s.logger.Warn(authModule, "Welcome email failed", map[string]interface{}{"email": email, "error": err})
		}
	}()
}
