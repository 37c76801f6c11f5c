package rbac

import (
	"fmt"
	"sort"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"go.uber.org/zap"
)

type Service interface {
	LoadPolicy() error
	Enforce(req domain.EnforceRequest) (bool, error)
	Permissions(role domain.Role) ([]domain.Permission, error)
}

type service struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewService loads the role table into enforcer and returns a ready service.
func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) (Service, error) {
	l := zap.L().Named("rbac.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.service")
	}

	s := &service{enforcer: enforcer, logger: l}
	if err := s.LoadPolicy(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *service) LoadPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enforcer.ClearPolicy()

	policies := 0
	for _, role := range domain.AllRoles() {
		if parent, ok := role.Parent(); ok {
			if _, err := s.enforcer.AddGroupingPolicy(role.String(), parent.String()); err != nil {
				return fmt.Errorf("rbac: inherit %s from %s: %w", role, parent, err)
			}
		}

		for _, p := range role.OwnPermissions() {
			if _, err := s.enforcer.AddPolicy(role.String(), p.Resource, p.Action); err != nil {
				return fmt.Errorf("rbac: grant %s to %s: %w", p, role, err)
			}
			policies++
		}
	}

	s.logger.Info("rbac policy loaded", zap.Int("roles", len(domain.AllRoles())), zap.Int("policies", policies))
	return nil
}

func (s *service) Enforce(req domain.EnforceRequest) (bool, error) {
	if !req.Role.Valid() {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	allowed, err := s.enforcer.Enforce(req.Role.String(), req.Resource, req.Action)
	if err != nil {
		s.logger.Error("rbac enforce failed",
			zap.String("role", req.Role.String()),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
			zap.Error(err),
		)
		return false, err
	}

	s.logger.Debug("rbac enforce",
		zap.String("role", req.Role.String()),
		zap.String("resource", req.Resource),
		zap.String("action", req.Action),
		zap.Bool("allowed", allowed),
	)
	return allowed, nil
}

func (s *service) Permissions(role domain.Role) ([]domain.Permission, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("rbac: unknown role %q", role)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rules, err := s.enforcer.GetImplicitPermissionsForUser(role.String())
	if err != nil {
		return nil, err
	}

	perms := make([]domain.Permission, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		perms = append(perms, domain.Permission{Resource: rule[1], Action: rule[2]})
	}

	sort.Slice(perms, func(i, j int) bool {
		return perms[i].String() < perms[j].String()
	})
	return perms, nil
}
