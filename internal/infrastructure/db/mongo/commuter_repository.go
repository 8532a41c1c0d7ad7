package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/commuteplanner/planner/internal/core/domain"
)

const collectionCommuters = "commuters"

type CommuterRepository struct {
	coll *mongo.Collection
}

func NewCommuterRepository(db *mongo.Database) *CommuterRepository {
	return &CommuterRepository{coll: db.Collection(collectionCommuters)}
}

type commuterDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Account   string             `bson:"account"`
	Email     string             `bson:"email"`
	GivenName string             `bson:"given_name"`
	Surname   string             `bson:"surname"`
	CreatedAt int64              `bson:"created_at"`
}

// Create inserts the commuter. Hooks can be delivered more than once, so a
// duplicate account returns the stored commuter instead of failing.
func (r *CommuterRepository) Create(ctx context.Context, c *domain.Commuter) (*domain.Commuter, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := commuterDoc{
		Account:   c.Account,
		Email:     c.Email,
		GivenName: c.GivenName,
		Surname:   c.Surname,
		CreatedAt: createdAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.FindByAccount(ctx, c.Account)
		}
		return nil, fmt.Errorf("insert commuter: %w", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return toCommuter(doc), nil
}

func (r *CommuterRepository) FindByAccount(ctx context.Context, accountHref string) (*domain.Commuter, error) {
	var doc commuterDoc
	if err := r.coll.FindOne(ctx, bson.M{"account": accountHref}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find commuter: %w", err)
	}
	return toCommuter(doc), nil
}

// EnsureIndexes makes account unique.
func (r *CommuterRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func toCommuter(doc commuterDoc) *domain.Commuter {
	return &domain.Commuter{
		ID:        doc.ID.Hex(),
		Account:   doc.Account,
		Email:     doc.Email,
		GivenName: doc.GivenName,
		Surname:   doc.Surname,
		CreatedAt: unixToTime(doc.CreatedAt),
	}
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
