package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/lostfound/internal/store"
)

// RevokeToken adds a token's JTI to the revocation list.
func (s *Store) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	_, err := s.db.Collection(revokedTokensCollection).UpdateOne(ctx,
		bson.M{"_id": jti},
		bson.M{"$setOnInsert": bson.M{"expires_at": expiresAt.UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	return nil
}

// IsTokenRevoked checks if a token's JTI has been revoked.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.db.Collection(revokedTokensCollection).CountDocuments(ctx, bson.M{
		"_id":        jti,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	})
	if err != nil {
		return false, fmt.Errorf("checking token revocation: %w", err)
	}
	return n > 0, nil
}

// GetJWTSecret returns the persisted signing secret, creating it on first use.
func (s *Store) GetJWTSecret(ctx context.Context) (string, error) {
	candidate, err := store.NewSecret()
	if err != nil {
		return "", err
	}

	coll := s.db.Collection(settingsCollection)
	_, err = coll.UpdateOne(ctx,
		bson.M{"_id": "jwt_secret"},
		bson.M{"$setOnInsert": bson.M{"value": candidate}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return "", fmt.Errorf("storing jwt_secret: %w", err)
	}

	var setting struct {
		Value string `bson:"value"`
	}
	err = coll.FindOne(ctx, bson.M{"_id": "jwt_secret"}).Decode(&setting)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("querying jwt_secret: not found after upsert")
	}
	if err != nil {
		return "", fmt.Errorf("querying jwt_secret: %w", err)
	}
	return setting.Value, nil
}
