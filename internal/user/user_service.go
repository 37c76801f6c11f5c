package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	usererrors "github.com/mrpavithran/Hrms-Backend/internal/user/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Service interface {
	GetAll(ctx context.Context, req ListUsersRequest) ([]UserResponse, int64, error)
	GetByID(ctx context.Context, id string) (UserResponse, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error)
	ResetPassword(ctx context.Context, id string, req ResetPasswordRequest) error
}

type service struct {
	repo     Repository
	recorder audit.Recorder
	logger   *zap.Logger
}

func NewService(repo Repository, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("user.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.service")
	}
	return &service{repo: repo, recorder: recorder, logger: l}
}

func (s *service) GetAll(ctx context.Context, req ListUsersRequest) ([]UserResponse, int64, error) {
	accounts, total, err := s.repo.FindAll(ctx, ListFilter{
		Search:   req.Search,
		Role:     req.Role,
		IsActive: req.IsActive,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, 0, err
	}

	resp := make([]UserResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = mapToResponse(a)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (UserResponse, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	return mapToResponse(*a), nil
}

// Update changes role and active flag. Callers may not change either on
// their own account.
func (s *service) Update(ctx context.Context, id string, req UpdateUserRequest) (UserResponse, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return UserResponse{}, apperror.ErrUnauthorized
	}
	if req.Role == nil && req.IsActive == nil {
		return UserResponse{}, usererrors.ErrNothingToUpdate
	}

	a, err := s.find(ctx, id)
	if err != nil {
		return UserResponse{}, err
	}
	oldResp := mapToResponse(*a)

	fields := map[string]any{}
	if req.Role != nil {
		role, err := domain.ParseRole(*req.Role)
		if err != nil {
			return UserResponse{}, usererrors.ErrInvalidRole
		}
		if role.String() != a.Role {
			fields["role"] = role.String()
			a.Role = role.String()
		}
	}
	if req.IsActive != nil && *req.IsActive != a.IsActive {
		fields["is_active"] = *req.IsActive
		a.IsActive = *req.IsActive
	}

	if len(fields) == 0 {
		return oldResp, nil
	}
	if a.ID.String() == actor.UserID {
		return UserResponse{}, usererrors.ErrSelfModification
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, usererrors.ErrUserNotFound
		}
		s.logger.Error("update user failed", zap.String("user_id", id), zap.Error(err))
		return UserResponse{}, err
	}
	a.UpdatedAt = time.Now()

	resp := mapToResponse(*a)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceUser,
		ResourceID:   id,
		OldValue:     oldResp,
		NewValue:     resp,
	})
	return resp, nil
}

func (s *service) ResetPassword(ctx context.Context, id string, req ResetPasswordRequest) error {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return apperror.ErrUnauthorized
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{"password_hash": string(hashed)}); err != nil {
		s.logger.Error("reset password failed", zap.String("user_id", id), zap.Error(err))
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceUser,
		ResourceID:   id,
		NewValue:     map[string]string{"field": "password"},
	})
	s.logger.Info("password reset by admin", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

func (s *service) find(ctx context.Context, id string) (*Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, usererrors.ErrInvalidUserID
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, err
	}
	return a, nil
}

func mapToResponse(a Account) UserResponse {
	resp := UserResponse{
		ID:         a.ID.String(),
		Email:      a.Email,
		Role:       a.Role,
		IsActive:   a.IsActive,
		EmployeeID: a.EmployeeIDString(),
		CreatedAt:  a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Employee != nil {
		resp.EmployeeNumber = a.Employee.EmployeeNumber
		resp.FullName = a.Employee.FullName()
	}
	if a.LastLoginAt != nil {
		v := a.LastLoginAt.UTC().Format(time.RFC3339)
		resp.LastLoginAt = &v
	}
	return resp
}
