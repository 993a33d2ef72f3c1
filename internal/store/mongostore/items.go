package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/erazemk/lostfound/internal/model"
)

type itemDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Title        string             `bson:"title"`
	Description  string             `bson:"description"`
	Category     string             `bson:"category"`
	Type         string             `bson:"type"`
	Location     string             `bson:"location"`
	Date         time.Time          `bson:"date"`
	Image        string             `bson:"image"`
	ContactEmail string             `bson:"contact_email"`
	ContactPhone string             `bson:"contact_phone"`
	Status       string             `bson:"status"`
	User         primitive.ObjectID `bson:"user"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

func (d *itemDoc) model(owner *userDoc) model.Item {
	item := model.Item{
		ID:           d.ID.Hex(),
		Title:        d.Title,
		Description:  d.Description,
		Category:     d.Category,
		Type:         d.Type,
		Location:     d.Location,
		Date:         d.Date,
		Image:        d.Image,
		ContactEmail: d.ContactEmail,
		ContactPhone: d.ContactPhone,
		Status:       d.Status,
		UserID:       d.User.Hex(),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
	if owner != nil {
		item.User = &model.UserRef{
			ID:    owner.ID.Hex(),
			Name:  owner.Name,
			Email: owner.Email,
			Phone: owner.Phone,
		}
	}
	return item
}

// itemFilter converts a listing filter into a query document. ok is false
// when the filter can never match (a malformed owner id).
func itemFilter(f model.ItemFilter) (filter bson.M, ok bool) {
	filter = bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.UserID != "" {
		oid, valid := objectID(f.UserID)
		if !valid {
			return nil, false
		}
		filter["user"] = oid
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"description": re},
			bson.M{"location": re},
		}
	}
	return filter, true
}

// itemUpdateDoc converts the non-nil fields of update into a $set document.
func itemUpdateDoc(u model.ItemUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Title != nil {
		set["title"] = *u.Title
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Category != nil {
		set["category"] = *u.Category
	}
	if u.Type != nil {
		set["type"] = *u.Type
	}
	if u.Location != nil {
		set["location"] = *u.Location
	}
	if u.Date != nil {
		set["date"] = *u.Date
	}
	if u.Image != nil {
		set["image"] = *u.Image
	}
	if u.ContactEmail != nil {
		set["contact_email"] = *u.ContactEmail
	}
	if u.ContactPhone != nil {
		set["contact_phone"] = *u.ContactPhone
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	return bson.M{"$set": set}
}

// owners loads the users referenced by docs in one query.
func (s *Store) owners(ctx context.Context, docs []itemDoc) (map[primitive.ObjectID]*userDoc, error) {
	seen := make(map[primitive.ObjectID]bool)
	ids := bson.A{}
	for _, d := range docs {
		if !seen[d.User] {
			seen[d.User] = true
			ids = append(ids, d.User)
		}
	}

	owners := make(map[primitive.ObjectID]*userDoc, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	cur, err := s.db.Collection(usersCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("loading item owners: %w", err)
	}
	var users []userDoc
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decoding item owners: %w", err)
	}
	for i := range users {
		owners[users[i].ID] = &users[i]
	}
	return owners, nil
}

func (s *Store) populate(ctx context.Context, docs []itemDoc) ([]model.Item, error) {
	owners, err := s.owners(ctx, docs)
	if err != nil {
		return nil, err
	}
	items := make([]model.Item, 0, len(docs))
	for i := range docs {
		items = append(items, docs[i].model(owners[docs[i].User]))
	}
	return items, nil
}

// CreateItem creates a new item report owned by item.UserID.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	owner, ok := objectID(item.UserID)
	if !ok {
		return nil, fmt.Errorf("creating item: invalid owner id %q", item.UserID)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	doc := itemDoc{
		Title:        item.Title,
		Description:  item.Description,
		Category:     item.Category,
		Type:         item.Type,
		Location:     item.Location,
		Date:         item.Date,
		Image:        item.Image,
		ContactEmail: item.ContactEmail,
		ContactPhone: item.ContactPhone,
		Status:       item.Status,
		User:         owner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if doc.Status == "" {
		doc.Status = model.ItemStatusActive
	}

	result, err := s.db.Collection(itemsCollection).InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return s.GetItem(ctx, result.InsertedID.(primitive.ObjectID).Hex())
}

// GetItem returns an item by ID with its owner populated.
func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	var doc itemDoc
	err := s.db.Collection(itemsCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}

	items, err := s.populate(ctx, []itemDoc{doc})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

// ListItems returns the page of items matching the filter, newest first,
// together with the total number of matches.
func (s *Store) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, int, error) {
	filter, ok := itemFilter(f)
	if !ok {
		return nil, 0, nil
	}

	coll := s.db.Collection(itemsCollection)
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	var docs []itemDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decoding items: %w", err)
	}

	items, err := s.populate(ctx, docs)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

// UpdateItem applies the non-nil fields of update and returns the updated
// item, or nil if it does not exist.
func (s *Store) UpdateItem(ctx context.Context, id string, update model.ItemUpdate) (*model.Item, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}

	result, err := s.db.Collection(itemsCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		itemUpdateDoc(update, time.Now().UTC().Truncate(time.Millisecond)),
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, nil
	}

	return s.GetItem(ctx, id)
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return nil
	}
	if _, err := s.db.Collection(itemsCollection).DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
