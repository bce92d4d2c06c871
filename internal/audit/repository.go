package audit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var ErrNotFound = errors.New("audit record not found")

// Repository stores study rows. Lists return newest entry first, matching
// the admin table.
type Repository interface {
	List(ctx context.Context, s Study) ([]*Record, error)
	Get(ctx context.Context, s Study, id string) (*Record, error)
	Create(ctx context.Context, s Study, fields map[string]string) (string, error)
	Update(ctx context.Context, s Study, id string, fields map[string]string) error
	Delete(ctx context.Context, s Study, id string) error
}

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{db: db}
}

func (m *MongoRepository) List(ctx context.Context, s Study) ([]*Record, error) {
	cur, err := m.db.Collection(s.Collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var list []*Record
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

func (m *MongoRepository) Get(ctx context.Context, s Study, id string) (*Record, error) {
	var r Record
	err := m.db.Collection(s.Collection).FindOne(ctx, bson.M{"id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (m *MongoRepository) Create(ctx context.Context, s Study, fields map[string]string) (string, error) {
	now := time.Now()
	r := &Record{
		ID:        primitive.NewObjectID().Hex(),
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := m.db.Collection(s.Collection).InsertOne(ctx, r); err != nil {
		return "", err
	}
	return r.ID, nil
}

func (m *MongoRepository) Update(ctx context.Context, s Study, id string, fields map[string]string) error {
	res, err := m.db.Collection(s.Collection).UpdateOne(ctx,
		bson.M{"id": id},
		bson.M{"$set": bson.M{"fields": fields, "updatedAt": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepository) Delete(ctx context.Context, s Study, id string) error {
	res, err := m.db.Collection(s.Collection).DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MemoryRepository backs tests and development mode.
type MemoryRepository struct {
	mu    sync.RWMutex
	colls map[string][]*Record
	seq   int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{colls: make(map[string][]*Record)}
}

func cloneRecord(r *Record) *Record {
	cp := *r
	cp.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		cp.Fields[k] = v
	}
	return &cp
}

func (m *MemoryRepository) List(ctx context.Context, s Study) ([]*Record, error) {
	m.mu.RLock()
	list := make([]*Record, 0, len(m.colls[s.Collection]))
	for _, r := range m.colls[s.Collection] {
		list = append(list, cloneRecord(r))
	}
	m.mu.RUnlock()
	sortNewestFirst(list)
	return list, nil
}

func (m *MemoryRepository) Get(ctx context.Context, s Study, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.colls[s.Collection] {
		if r.ID == id {
			return cloneRecord(r), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) Create(ctx context.Context, s Study, fields map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := time.Now()
	r := &Record{
		ID:        fmt.Sprintf("audit-%d", m.seq),
		Fields:    fields,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.colls[s.Collection] = append(m.colls[s.Collection], cloneRecord(r))
	return r.ID, nil
}

func (m *MemoryRepository) Update(ctx context.Context, s Study, id string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.colls[s.Collection] {
		if r.ID == id {
			r.Fields = fields
			r.UpdatedAt = time.Now()
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryRepository) Delete(ctx context.Context, s Study, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.colls[s.Collection]
	for i, r := range list {
		if r.ID == id {
			m.colls[s.Collection] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func sortNewestFirst(list []*Record) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}
