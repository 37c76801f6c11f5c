package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mrpavithran/Hrms-Backend/internal/audit"
	autherrors "github.com/mrpavithran/Hrms-Backend/internal/auth/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/auth/token"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/apperror"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TokenManager is satisfied by *token.Manager.
type TokenManager interface {
	IssueAccess(userID, employeeID, role string) (string, error)
	IssueRefresh(userID, employeeID, role string) (string, error)
	Parse(raw, expectedType string) (*token.Claims, error)
	AccessTTL() time.Duration
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Me(ctx context.Context, userID string) (AuthResponse, error)
	Logout(ctx context.Context)
	Register(ctx context.Context, req RegisterRequest) (AuthResponse, error)
	ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error
}

type service struct {
	repo     Repository
	tokens   TokenManager
	recorder audit.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, tokens TokenManager, recorder audit.Recorder, logger ...*zap.Logger) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{repo: repo, tokens: tokens, recorder: recorder, logger: l, now: time.Now}
}

func (s *service) Login(ctx context.Context, req LoginRequest) (TokenPair, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("login unknown email")
			return TokenPair{}, autherrors.ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login wrong password", zap.String("user_id", user.ID.String()))
		return TokenPair{}, autherrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.logger.Warn("login inactive user", zap.String("user_id", user.ID.String()))
		return TokenPair{}, autherrors.ErrUserInactive
	}

	pair, err := s.issue(user)
	if err != nil {
		return TokenPair{}, err
	}

	now := s.now().UTC()
	if err := s.repo.TouchLogin(ctx, user.ID.String(), now); err != nil {
		s.logger.Warn("login timestamp update failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLoginAt = &now
		pair.User = mapToResponse(*user)
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      user.ID.String(),
		Action:       audit.ActionLogin,
		ResourceType: domain.ResourceUser,
		ResourceID:   user.ID.String(),
	})

	s.logger.Info("login success", zap.String("user_id", user.ID.String()), zap.String("role", user.Role))
	return pair, nil
}

// Refresh rotates both tokens. The user is reloaded so a role change or
// deactivation takes effect on the next refresh.
func (s *service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	claims, err := s.tokens.Parse(refreshToken, token.TypeRefresh)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			return TokenPair{}, autherrors.ErrTokenExpired
		}
		return TokenPair{}, autherrors.ErrInvalidRefreshToken
	}

	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TokenPair{}, autherrors.ErrInvalidRefreshToken
		}
		return TokenPair{}, err
	}
	if !user.IsActive {
		return TokenPair{}, autherrors.ErrUserInactive
	}

	return s.issue(user)
}

func (s *service) Me(ctx context.Context, userID string) (AuthResponse, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return AuthResponse{}, autherrors.ErrInvalidUserID
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrUserNotFound
		}
		return AuthResponse{}, err
	}
	return mapToResponse(*user), nil
}

func (s *service) Logout(ctx context.Context) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return
	}
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionLogout,
		ResourceType: domain.ResourceUser,
		ResourceID:   actor.UserID,
	})
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	actor, ok := domain.ActorFrom(ctx)
	if !ok {
		return AuthResponse{}, apperror.ErrUnauthorized
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return AuthResponse{}, autherrors.ErrInvalidRole
	}
	// only an ADMIN can mint another ADMIN
	if role == domain.RoleAdmin && actor.Role != domain.RoleAdmin {
		return AuthResponse{}, autherrors.ErrForbidden
	}

	var employeeID *uuid.UUID
	if req.EmployeeID != "" {
		id, err := uuid.Parse(req.EmployeeID)
		if err != nil {
			return AuthResponse{}, autherrors.ErrEmployeeNotFound
		}
		exists, err := s.repo.EmployeeExists(ctx, req.EmployeeID)
		if err != nil {
			return AuthResponse{}, err
		}
		if !exists {
			return AuthResponse{}, autherrors.ErrEmployeeNotFound
		}
		employeeID = &id
	} else if role == domain.RoleManager || role == domain.RoleEmployee {
		return AuthResponse{}, autherrors.ErrEmployeeRequired
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("register hash failed", zap.Error(err))
		return AuthResponse{}, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hashed),
		Role:         role.String(),
		EmployeeID:   employeeID,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AuthResponse{}, autherrors.ErrEmailAlreadyRegistered
		}
		s.logger.Error("register persist failed", zap.Error(err))
		return AuthResponse{}, err
	}

	resp := mapToResponse(*user)
	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      actor.UserID,
		Action:       audit.ActionCreate,
		ResourceType: domain.ResourceUser,
		ResourceID:   resp.ID,
		NewValue:     resp,
	})

	s.logger.Info("register success", zap.String("user_id", resp.ID), zap.String("role", resp.Role))
	return resp, nil
}

func (s *service) ChangePassword(ctx context.Context, userID string, req ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return autherrors.ErrUserNotFound
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return autherrors.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		s.logger.Error("change password persist failed", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	audit.RecordBestEffort(ctx, s.recorder, s.logger, audit.Entry{
		ActorID:      userID,
		Action:       audit.ActionUpdate,
		ResourceType: domain.ResourceUser,
		ResourceID:   userID,
		NewValue:     map[string]string{"field": "password"},
	})
	return nil
}

func (s *service) issue(user *User) (TokenPair, error) {
	access, err := s.tokens.IssueAccess(user.ID.String(), user.EmployeeIDString(), user.Role)
	if err != nil {
		s.logger.Error("issue access token failed", zap.Error(err))
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}
	refresh, err := s.tokens.IssueRefresh(user.ID.String(), user.EmployeeIDString(), user.Role)
	if err != nil {
		s.logger.Error("issue refresh token failed", zap.Error(err))
		return TokenPair{}, autherrors.ErrTokenGenerationFailed
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
		User:         mapToResponse(*user),
	}, nil
}

func mapToResponse(u User) AuthResponse {
	resp := AuthResponse{
		ID:         u.ID.String(),
		EmployeeID: u.EmployeeIDString(),
		Email:      u.Email,
		Role:       u.Role,
		IsActive:   u.IsActive,
	}
	if u.LastLoginAt != nil {
		v := u.LastLoginAt.UTC().Format(time.RFC3339)
		resp.LastLoginAt = &v
	}
	return resp
}
