package store

import (
	"context"
	"fmt"
	"time"

	"github.com/avvvet/draftboard-services/internal/comm"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ActivityCollection = "board_activity"

type activityDoc struct {
	comm.Activity `bson:",inline"`
	ExpiresAt     time.Time `bson:"expires_at"`
}

// ActivityStore archives board chat lines. Documents expire ttl after they were written.
type ActivityStore struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewActivityStore(db *mongo.Database, ttl time.Duration) *ActivityStore {
	return &ActivityStore{collection: db.Collection(ActivityCollection), ttl: ttl}
}

func (s *ActivityStore) Insert(ctx context.Context, a comm.Activity) error {
	doc := activityDoc{Activity: a, ExpiresAt: time.Now().Add(s.ttl)}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns the newest lines of a board, newest first.
func (s *ActivityStore) Recent(ctx context.Context, boardId int64, limit int64) ([]comm.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "at", Value: -1}}).SetLimit(limit)
	cursor, err := s.collection.Find(ctx, bson.M{"board_id": boardId}, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []activityDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}
	lines := make([]comm.Activity, 0, len(docs))
	for _, d := range docs {
		lines = append(lines, d.Activity)
	}
	return lines, nil
}
