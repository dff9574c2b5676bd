package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/golu19102003/Multilangual-Chat-Translator/internal/chaterr"
	"github.com/golu19102003/Multilangual-Chat-Translator/internal/models"
)

type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	ix := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("username_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	return &MongoUserStore{coll: coll}
}

func (s *MongoUserStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, chaterr.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) GetUsers(ctx context.Context, userIDs []string) ([]*models.User, error) {
	cur, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": userIDs}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (s *MongoUserStore) Search(ctx context.Context, query, excludeID string, limit int64) ([]*models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	re := primitive.Regex{Pattern: query, Options: "i"}
	filter := bson.M{
		"_id": bson.M{"$ne": excludeID},
		"$or": bson.A{
			bson.M{"username": re},
			bson.M{"email": re},
		},
	}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

func (s *MongoUserStore) ListOnline(ctx context.Context, excludeID string) ([]*models.User, error) {
	filter := bson.M{"_id": bson.M{"$ne": excludeID}, "is_online": true}
	opts := options.Find().SetSort(bson.D{{Key: "last_seen", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.User{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, cur.Err()
}

// UpsertProfile creates or refreshes the local record for an identity
// the auth provider vouched for.
func (s *MongoUserStore) UpsertProfile(ctx context.Context, user *models.User) error {
	update := bson.M{
		"$set": bson.M{
			"username": user.Username,
			"email":    user.Email,
			"avatar":   user.Avatar,
		},
		"$setOnInsert": bson.M{
			"preferred_language": user.PreferredLanguage,
			"speech_enabled":     user.SpeechEnabled,
			"is_online":          false,
			"last_seen":          time.Now().UTC(),
			"created_at":         time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)
	_, err := s.coll.UpdateByID(ctx, user.ID, update, opts)
	return err
}

func (s *MongoUserStore) UpdateSettings(ctx context.Context, userID string, preferredLanguage *string, speechEnabled *bool) error {
	set := bson.M{}
	if preferredLanguage != nil {
		set["preferred_language"] = *preferredLanguage
	}
	if speechEnabled != nil {
		set["speech_enabled"] = *speechEnabled
	}
	if len(set) == 0 {
		return nil
	}
	res, err := s.coll.UpdateByID(ctx, userID, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return chaterr.ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) SetOnline(ctx context.Context, userID string, online bool, lastSeen time.Time) error {
	_, err := s.coll.UpdateByID(ctx, userID, bson.M{"$set": bson.M{
		"is_online": online,
		"last_seen": lastSeen,
	}})
	return err
}
