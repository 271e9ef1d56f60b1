package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
)

type fakeRoleStore struct {
	roles     map[string]*models.Role
	findCalls int
}

func newFakeRoleStore(roles ...*models.Role) *fakeRoleStore {
	f := &fakeRoleStore{roles: make(map[string]*models.Role)}
	for _, r := range roles {
		f.roles[r.ID.Hex()] = r
	}
	return f
}

func (f *fakeRoleStore) FindRole(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	f.findCalls++
	role, ok := f.roles[id.Hex()]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *role
	return &cp, nil
}

func TestRoleService(t *testing.T) {
	ctx := context.Background()

	reviewerRole := &models.Role{
		ID:         primitive.NewObjectID(),
		Name:       "reviewer",
		Privileges: []string{models.PrivilegeManageRequests},
	}

	t.Run("resolves a role from the store when the cache is disabled", func(t *testing.T) {
		store := newFakeRoleStore(reviewerRole)
		svc := NewRoleService(store, nil)

		role, err := svc.GetRole(ctx, reviewerRole.ID)
		require.NoError(t, err)
		assert.Equal(t, "reviewer", role.Name)
		assert.Equal(t, 1, store.findCalls)
	})

	t.Run("unknown role yields not found", func(t *testing.T) {
		svc := NewRoleService(newFakeRoleStore(), nil)

		_, err := svc.GetRole(ctx, primitive.NewObjectID())
		var nfErr *NotFoundError
		require.ErrorAs(t, err, &nfErr)
	})

	t.Run("grants a privilege the role carries", func(t *testing.T) {
		svc := NewRoleService(newFakeRoleStore(reviewerRole), nil)

		allowed, err := svc.HasPrivilege(ctx, reviewerRole.ID, models.PrivilegeManageRequests)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("denies a privilege the role lacks", func(t *testing.T) {
		svc := NewRoleService(newFakeRoleStore(reviewerRole), nil)

		allowed, err := svc.HasPrivilege(ctx, reviewerRole.ID, models.PrivilegeManageAdmins)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("denies admins without a role", func(t *testing.T) {
		svc := NewRoleService(newFakeRoleStore(reviewerRole), nil)

		allowed, err := svc.HasPrivilege(ctx, primitive.NilObjectID, models.PrivilegeManageRequests)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("denies when the role no longer exists", func(t *testing.T) {
		svc := NewRoleService(newFakeRoleStore(), nil)

		allowed, err := svc.HasPrivilege(ctx, primitive.NewObjectID(), models.PrivilegeManageRequests)
		require.NoError(t, err)
		assert.False(t, allowed)
	})
}
