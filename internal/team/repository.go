package team

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

var (
	ErrNotFound        = errors.New("team member not found")
	ErrVersionConflict = errors.New("team member changed concurrently")
)

// Ranked is one member's new position plus the version the caller read.
type Ranked struct {
	ID      string
	Rank    int
	Version int
}

// Repository stores team members. Lists return rank order, unranked last.
type Repository interface {
	List(ctx context.Context) ([]*Member, error)
	Get(ctx context.Context, id string) (*Member, error)
	Create(ctx context.Context, m *Member) (string, error)
	Update(ctx context.Context, id string, m *Member) error
	Delete(ctx context.Context, id string) error
	ReplaceRanks(ctx context.Context, batch []Ranked) error
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

func (r *MongoRepository) List(ctx context.Context) ([]*Member, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var list []*Member
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	sortByRank(list)
	return list, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Member, error) {
	var m Member
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MongoRepository) Create(ctx context.Context, m *Member) (string, error) {
	now := time.Now()
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return "", err
	}
	return m.ID, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, m *Member) error {
	set := bson.M{
		"name":      m.Name,
		"position":  m.Position,
		"bio":       m.Bio,
		"imageUrl":  m.ImageURL,
		"imagePath": m.ImagePath,
		"updatedAt": time.Now(),
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) ReplaceRanks(ctx context.Context, batch []Ranked) error {
	now := time.Now()
	for _, o := range batch {
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"id": o.ID, "version": o.Version},
			bson.M{
				"$set": bson.M{"rank": o.Rank, "updatedAt": now},
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

// MemoryRepository backs tests and development mode.
type MemoryRepository struct {
	mu      sync.RWMutex
	members []*Member
	seq     int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func cloneMember(m *Member) *Member {
	cp := *m
	if m.Rank != nil {
		cp.Rank = intPtr(*m.Rank)
	}
	return &cp
}

func (r *MemoryRepository) List(ctx context.Context) ([]*Member, error) {
	r.mu.RLock()
	list := make([]*Member, 0, len(r.members))
	for _, m := range r.members {
		list = append(list, cloneMember(m))
	}
	r.mu.RUnlock()
	sortByRank(list)
	return list, nil
}

func (r *MemoryRepository) Get(ctx context.Context, id string) (*Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.ID == id {
			return cloneMember(m), nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) Create(ctx context.Context, m *Member) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if m.ID == "" {
		r.seq++
		m.ID = fmt.Sprintf("team-%d", r.seq)
	}
	m.CreatedAt = now
	m.UpdatedAt = now
	r.members = append(r.members, cloneMember(m))
	return m.ID, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id string, m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cur := range r.members {
		if cur.ID != id {
			continue
		}
		cur.Name = m.Name
		cur.Position = m.Position
		cur.Bio = m.Bio
		cur.ImageURL = m.ImageURL
		cur.ImagePath = m.ImagePath
		cur.UpdatedAt = time.Now()
		return nil
	}
	return ErrNotFound
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.members {
		if m.ID == id {
			r.members = append(r.members[:i], r.members[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) ReplaceRanks(ctx context.Context, batch []Ranked) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID := make(map[string]*Member, len(r.members))
	for _, m := range r.members {
		byID[m.ID] = m
	}
	for _, o := range batch {
		m, ok := byID[o.ID]
		if !ok || m.Version != o.Version {
			return ErrVersionConflict
		}
	}
	now := time.Now()
	for _, o := range batch {
		m := byID[o.ID]
		m.Rank = intPtr(o.Rank)
		m.Version++
		m.UpdatedAt = now
	}
	return nil
}

func sortByRank(list []*Member) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].orderKey() < list[j].orderKey() })
}
