package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/qehclinic/portal-backend/internal/content"
)

// MongoRepository stores content records in MongoDB, one collection per
// content kind.
type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (m *MongoRepository) List(ctx context.Context, coll string, order Order) ([]*content.Record, error) {
	cur, err := m.db.Collection(coll).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var list []*content.Record
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	sortRecords(list, order)
	return list, nil
}

func (m *MongoRepository) Get(ctx context.Context, coll, id string) (*content.Record, error) {
	var r content.Record
	err := m.db.Collection(coll).FindOne(ctx, bson.M{"id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepository) Create(ctx context.Context, coll string, r *content.Record) (string, error) {
	now := time.Now()
	if r.ID == "" {
		r.ID = primitive.NewObjectID().Hex()
	}
	if r.Date.IsZero() {
		r.Date = now
	}
	r.CreatedAt = now
	r.UpdatedAt = now
	if _, err := m.db.Collection(coll).InsertOne(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (m *MongoRepository) Update(ctx context.Context, coll, id string, upd content.Update) error {
	set := bson.M{
		"title":     upd.Title,
		"body":      upd.Body,
		"category":  upd.Category,
		"updatedAt": time.Now(),
	}
	if upd.ImageURL != nil {
		set["imageUrl"] = *upd.ImageURL
	}
	if upd.ImagePath != nil {
		set["imagePath"] = *upd.ImagePath
	}
	if upd.Referred != nil {
		set["referred"] = *upd.Referred
	}
	res, err := m.db.Collection(coll).UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepository) Delete(ctx context.Context, coll, id string) error {
	res, err := m.db.Collection(coll).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepository) ReplaceOrder(ctx context.Context, coll string, batch []content.OrderedID) error {
	c := m.db.Collection(coll)
	now := time.Now()
	for _, o := range batch {
		res, err := c.UpdateOne(ctx,
			bson.M{"id": o.ID, "version": o.Version},
			bson.M{
				"$set": bson.M{"sortKey": o.SortKey, "updatedAt": now},
				"$inc": bson.M{"version": 1},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return ErrVersionConflict
		}
	}
	return nil
}
