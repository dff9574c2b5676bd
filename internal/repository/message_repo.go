package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

type MongoMessageStore struct {
	coll *mongo.Collection
}

func NewMongoMessageStore(coll *mongo.Collection) *MongoMessageStore {
	ix := mongo.IndexModel{
		Keys:    bson.D{{Key: "room_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("room_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	return &MongoMessageStore{coll: coll}
}

func (s *MongoMessageStore) Create(ctx context.Context, msg *models.Message) error {
	msg.CreatedAt = time.Now().UTC()
	_, err := s.coll.InsertOne(ctx, msg)
	return err
}

func (s *MongoMessageStore) GetMessage(ctx context.Context, messageID string) (*models.Message, error) {
	var m models.Message
	if err := s.coll.FindOne(ctx, bson.M{"_id": messageID}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, chaterr.ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (s *MongoMessageStore) GetMessages(ctx context.Context, messageIDs []string) ([]*models.Message, error) {
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": messageIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

// ListByRoom returns one page of room history in chronological order.
// The query runs newest-first so the limit applies to the most recent
// messages, then the page is reversed.
func (s *MongoMessageStore) ListByRoom(ctx context.Context, roomID string, page, limit int64) ([]*models.Message, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cur, err := s.coll.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Message{}
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (s *MongoMessageStore) CountByRoom(ctx context.Context, roomID string) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{"room_id": roomID})
}

// AddTranslation replaces any existing entry for the language, then
// appends the new one.
func (s *MongoMessageStore) AddTranslation(ctx context.Context, messageID, language, text string) error {
	if _, err := s.coll.UpdateByID(ctx, messageID, bson.M{
		"$pull": bson.M{"translations": bson.M{"language": language}},
	}); err != nil {
		return err
	}
	entry := models.Translation{Language: language, Text: text, TranslatedAt: time.Now().UTC()}
	res, err := s.coll.UpdateByID(ctx, messageID, bson.M{"$push": bson.M{"translations": entry}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return chaterr.ErrNotFound
	}
	return nil
}

// MarkRead appends a receipt only when the user has none on this message,
// making repeated calls idempotent.
func (s *MongoMessageStore) MarkRead(ctx context.Context, messageID, userID string) (bool, error) {
	filter := bson.M{
		"_id":             messageID,
		"read_by.user_id": bson.M{"$ne": userID},
	}
	update := bson.M{"$push": bson.M{"read_by": models.ReadReceipt{
		UserID: userID,
		ReadAt: time.Now().UTC(),
	}}}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (s *MongoMessageStore) Delete(ctx context.Context, messageID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": messageID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return chaterr.ErrNotFound
	}
	return nil
}
