package domain_test

import (
	"context"
	"testing"

	"github.com/mrpavithran/Hrms-Backend/internal/domain"
	"github.com/mrpavithran/Hrms-Backend/internal/shared/contextutil"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	r, err := domain.ParseRole(" hr ")
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleHR, r)

	_, err = domain.ParseRole("SUPERUSER")
	assert.Error(t, err)
}

func TestRoleHierarchyTerminates(t *testing.T) {
	for _, r := range domain.AllRoles() {
		seen := map[domain.Role]bool{}
		cur := r
		for {
			assert.False(t, seen[cur], "cycle at %s", cur)
			seen[cur] = true
			parent, ok := cur.Parent()
			if !ok {
				break
			}
			cur = parent
		}
		assert.True(t, seen[domain.RoleEmployee])
	}
}

func TestCapabilities(t *testing.T) {
	assert.True(t, domain.RoleAdmin.Can(domain.CapActForAnyEmployee))
	assert.True(t, domain.RoleHR.Can(domain.CapCancelApprovedLeave))
	assert.True(t, domain.RoleManager.Can(domain.CapDecideLeave))
	assert.False(t, domain.RoleManager.Can(domain.CapActForAnyEmployee))
	assert.False(t, domain.RoleEmployee.Can(domain.CapDecideLeave))
	assert.False(t, domain.Role("GUEST").Can(domain.CapDecideLeave))
}

func TestEveryRoleGrantsSomething(t *testing.T) {
	for _, r := range domain.AllRoles() {
		assert.NotEmpty(t, r.OwnPermissions(), r.String())
	}
}

func TestActorVisibility(t *testing.T) {
	ctx := contextutil.WithActor(context.Background(), contextutil.Actor{UserID: "u-1", EmployeeID: "e-1", Role: "manager"})

	actor, ok := domain.ActorFrom(ctx)
	assert.True(t, ok)
	assert.Equal(t, domain.RoleManager, actor.Role)
	assert.Equal(t, domain.Visibility{EmployeeID: "e-1", IncludeReports: true}, actor.Visibility())
	assert.True(t, actor.Owns("e-1"))
	assert.False(t, actor.Owns("e-2"))

	hr := domain.Actor{Role: domain.RoleHR}
	assert.True(t, hr.Visibility().All)
	assert.False(t, hr.Owns(""))

	employee := domain.Actor{EmployeeID: "e-7", Role: domain.RoleEmployee}
	assert.Equal(t, domain.Visibility{EmployeeID: "e-7"}, employee.Visibility())

	_, ok = domain.ActorFrom(contextutil.WithActor(context.Background(), contextutil.Actor{Role: "ROOT"}))
	assert.False(t, ok)
}
