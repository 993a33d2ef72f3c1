package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Phone        string             `bson:"phone"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"created_at"`
}

func (d *userDoc) model() *model.User {
	return &model.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Phone:        d.Phone,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	doc := userDoc{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Phone:        u.Phone,
		Role:         u.Role,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if doc.Role == "" {
		doc.Role = model.RoleUser
	}

	result, err := s.db.Collection(usersCollection).InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return nil, store.ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	doc.ID = result.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*model.User, error) {
	var doc userDoc
	err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.model(), nil
}

// GetUser returns a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	u, err := s.findUser(ctx, bson.M{"_id": oid})
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := s.findUser(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	users := make([]model.User, 0, len(docs))
	for i := range docs {
		users = append(users, *docs[i].model())
	}
	return users, nil
}

func (s *Store) setUserField(ctx context.Context, id, field string, value any) error {
	oid, ok := objectID(id)
	if !ok {
		return fmt.Errorf("invalid id %q", id)
	}
	_, err := s.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{field: value}},
	)
	return err
}

// UpdateUserRole changes a user's role.
func (s *Store) UpdateUserRole(ctx context.Context, id, role string) error {
	if err := s.setUserField(ctx, id, "role", role); err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func (s *Store) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	if err := s.setUserField(ctx, id, "password_hash", passwordHash); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
