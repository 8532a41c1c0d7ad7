package mongo

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commuteplanner/planner/internal/core/domain"
)

const (
	collectionGroups      = "groups"
	collectionMemberships = "group_memberships"
)

// DirectoryRepository implements ports.GroupDirectory on MongoDB.
// One document per group, and one membership document per (account, group).
type DirectoryRepository struct {
	groups      *mongo.Collection
	memberships *mongo.Collection
}

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{
		groups:      db.Collection(collectionGroups),
		memberships: db.Collection(collectionMemberships),
	}
}

type membershipDoc struct {
	Account   string    `bson:"account"`
	Group     string    `bson:"group"`
	CreatedAt time.Time `bson:"created_at"`
}

// Groups streams the account's memberships from a cursor, oldest first.
func (r *DirectoryRepository) Groups(ctx context.Context, accountHref string) iter.Seq2[domain.Group, error] {
	return func(yield func(domain.Group, error) bool) {
		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
		cur, err := r.memberships.Find(ctx, bson.M{"account": accountHref}, opts)
		if err != nil {
			yield(domain.Group{}, fmt.Errorf("find memberships: %w", err))
			return
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var m membershipDoc
			if err := cur.Decode(&m); err != nil {
				yield(domain.Group{}, fmt.Errorf("decode membership: %w", err))
				return
			}
			if !yield(domain.Group{Name: m.Group, CreatedAt: m.CreatedAt}, nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(domain.Group{}, fmt.Errorf("iterate memberships: %w", err))
		}
	}
}

// CreateGroup inserts a group. An existing name is not an error.
func (r *DirectoryRepository) CreateGroup(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.groups.InsertOne(ctx, domain.Group{Name: name, CreatedAt: time.Now().UTC()})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert group: %w", err)
	}
	return true, nil
}

// AddToGroup records the membership if the group exists.
func (r *DirectoryRepository) AddToGroup(ctx context.Context, accountHref, groupName string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.groups.FindOne(ctx, bson.M{"name": groupName}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("%w: %s", domain.ErrGroupNotFound, groupName)
		}
		return fmt.Errorf("find group: %w", err)
	}

	filter := bson.M{"account": accountHref, "group": groupName}
	update := bson.M{"$setOnInsert": bson.M{"created_at": time.Now().UTC()}}
	if _, err := r.memberships.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert membership: %w", err)
	}
	return nil
}

// EnsureIndexes creates the unique indexes the directory relies on.
func (r *DirectoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := r.groups.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("groups index: %w", err)
	}

	_, err := r.memberships.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account", Value: 1}, {Key: "group", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "account", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("memberships index: %w", err)
	}
	return nil
}
