package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pranavxdevops/membership-backend/models"
)

const roleCacheTTL = 10 * time.Minute

// RoleStore reads roles from the database.
type RoleStore interface {
	FindRole(ctx context.Context, id primitive.ObjectID) (*models.Role, error)
}

// RoleService resolves roles and privileges for admin users, with a
// Redis-backed cache in front of MongoDB. A nil Redis client disables the
// cache and every lookup goes to the store.
type RoleService struct {
	store RoleStore
	redis *redis.Client
}

func NewRoleService(store RoleStore, redisClient *redis.Client) *RoleService {
	return &RoleService{store: store, redis: redisClient}
}

func roleCacheKey(id primitive.ObjectID) string {
	return "role:" + id.Hex()
}

// GetRole returns the role with the given id, from cache when possible.
func (s *RoleService) GetRole(ctx context.Context, id primitive.ObjectID) (*models.Role, error) {
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, roleCacheKey(id)).Result()
		if err == nil {
			var role models.Role
			if err := json.Unmarshal([]byte(cached), &role); err == nil {
				return &role, nil
			}
			// Corrupt cache entry; fall through to the store.
			s.redis.Del(ctx, roleCacheKey(id))
		} else if err != redis.Nil {
			log.Printf("Role cache read failed: %v", err)
		}
	}

	role, err := s.store.FindRole(ctx, id)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, NewNotFoundError("Role with id %s not found", id.Hex())
		}
		return nil, err
	}

	if s.redis != nil {
		if data, err := json.Marshal(role); err == nil {
			if err := s.redis.Set(ctx, roleCacheKey(id), data, roleCacheTTL).Err(); err != nil {
				log.Printf("Role cache write failed: %v", err)
			}
		}
	}

	return role, nil
}

// Invalidate drops a role from the cache. Called after role updates so
// privilege changes take effect without waiting for the TTL.
func (s *RoleService) Invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, roleCacheKey(id)).Err(); err != nil {
		log.Printf("Role cache invalidation failed: %v", err)
	}
}

// HasPrivilege reports whether the role grants the named privilege. Admins
// without a role have no privileges.
func (s *RoleService) HasPrivilege(ctx context.Context, roleID primitive.ObjectID, privilege string) (bool, error) {
	if roleID.IsZero() {
		return false, nil
	}

	role, err := s.GetRole(ctx, roleID)
	if err != nil {
		if _, ok := err.(*NotFoundError); ok {
			return false, nil
		}
		return false, err
	}

	return role.HasPrivilege(privilege), nil
}
