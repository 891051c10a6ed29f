package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	return updateFields(ctx, s.col(ColUsers), id, bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "updated_at", Value: time.Now().UTC()},
	})
}

func (s *Store) UpdateUser(ctx context.Context, id string, update model.UserUpdate) error {
	set := bson.D{}
	if update.FullName != nil {
		set = append(set, bson.E{Key: "full_name", Value: *update.FullName})
	}
	if update.Role != nil {
		set = append(set, bson.E{Key: "role", Value: string(*update.Role)})
	}
	if update.IsActive != nil {
		set = append(set, bson.E{Key: "is_active", Value: *update.IsActive})
	}
	set = append(set, bson.E{Key: "updated_at", Value: time.Now().UTC()})
	return updateFields(ctx, s.col(ColUsers), id, set)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColUsers), id)
}

func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]*model.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))
	return findMany[model.User](ctx, s.col(ColUsers), bson.D{}, opts)
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return countAll(ctx, s.col(ColUsers))
}
