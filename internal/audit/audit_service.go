package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	auditerrors "github.com/mrpavithran/Hrms-Backend/internal/audit/errors"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/scope"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	GetAll(ctx context.Context, req ListAuditLogsRequest) ([]AuditLogResponse, int64, error)
	GetByID(ctx context.Context, id string) (AuditLogResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("audit.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("audit.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) GetAll(ctx context.Context, req ListAuditLogsRequest) ([]AuditLogResponse, int64, error) {
	page, pageSize := scope.Normalize(req.Page, req.PageSize)
	s.logger.Debug("list audit logs requested",
		zap.String("actor_id", req.ActorID),
		zap.String("action", req.Action),
		zap.String("resource_type", req.ResourceType),
		zap.Int("page", page),
	)

	logs, total, err := s.repo.FindAll(ctx, ListFilter{
		ActorID:      req.ActorID,
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Page:         page,
		PageSize:     pageSize,
	})
	if err != nil {
		s.logger.Error("list audit logs failed", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = mapToResponse(l)
	}
	return resp, total, nil
}

func (s *service) GetByID(ctx context.Context, id string) (AuditLogResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return AuditLogResponse{}, auditerrors.ErrInvalidAuditLogID
	}

	log, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuditLogResponse{}, auditerrors.ErrAuditLogNotFound
		}
		s.logger.Error("get audit log failed", zap.String("audit_log_id", id), zap.Error(err))
		return AuditLogResponse{}, err
	}

	return mapToResponse(*log), nil
}

func mapToResponse(l AuditLog) AuditLogResponse {
	return AuditLogResponse{
		ID:           l.ID.String(),
		ActorID:      l.ActorID,
		Action:       l.Action,
		ResourceType: l.ResourceType,
		ResourceID:   l.ResourceID,
		OldValues:    l.OldValues,
		NewValues:    l.NewValues,
		IPAddress:    l.IPAddress,
		UserAgent:    l.UserAgent,
		RequestID:    l.RequestID,
		CreatedAt:    l.CreatedAt.UTC().Format(time.RFC3339),
	}
}
