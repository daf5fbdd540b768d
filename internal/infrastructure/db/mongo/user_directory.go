package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
)

const usersCollection = "users"

// UserDirectory serves users from a MongoDB collection. Documents are keyed by
// the numeric user id; usernames carry a unique index.
type UserDirectory struct {
	coll *mongo.Collection
}

func NewUserDirectory(db *mongo.Database) *UserDirectory {
	return &UserDirectory{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID           int    `bson:"_id"`
	Name         string `bson:"name"`
	Username     string `bson:"username"`
	Role         string `bson:"role"`
	PasswordHash string `bson:"password_hash"`
}

func (m mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Username:     m.Username,
		Role:         m.Role,
		PasswordHash: m.PasswordHash,
	}
}

// EnsureIndexes creates the unique username index.
func (d *UserDirectory) EnsureIndexes(ctx context.Context) error {
	_, err := d.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		return fmt.Errorf("create username index: %w", err)
	}
	return nil
}

// Seed upserts users by id so restarts converge on the seed file.
func (d *UserDirectory) Seed(ctx context.Context, users []*domain.User) error {
	for _, u := range users {
		doc := mongoUser{
			ID:           u.ID,
			Name:         u.Name,
			Username:     u.Username,
			Role:         u.Role,
			PasswordHash: u.PasswordHash,
		}
		_, err := d.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, doc, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("seed user %q: %w", u.Username, err)
		}
	}
	return nil
}

func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return d.findOne(ctx, bson.M{"username": username})
}

func (d *UserDirectory) FindByID(ctx context.Context, id int) (*domain.User, error) {
	return d.findOne(ctx, bson.M{"_id": id})
}

func (d *UserDirectory) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := d.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, doc.toDomain())
	}
	return users, nil
}

func (d *UserDirectory) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var mu mongoUser
	if err := d.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}
