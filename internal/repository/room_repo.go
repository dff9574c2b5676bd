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

type MongoRoomStore struct {
	coll *mongo.Collection
}

func NewMongoRoomStore(coll *mongo.Collection) *MongoRoomStore {
	ix := mongo.IndexModel{
		Keys:    bson.D{{Key: "members.user_id", Value: 1}},
		Options: options.Index().SetName("members_user_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	return &MongoRoomStore{coll: coll}
}

func (s *MongoRoomStore) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	var r models.Room
	if err := s.coll.FindOne(ctx, bson.M{"_id": roomID}).Decode(&r); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, chaterr.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *MongoRoomStore) ListRoomsForUser(ctx context.Context, userID string) ([]*models.Room, error) {
	filter := bson.M{"members.user_id": userID, "is_active": true}
	opts := options.Find().SetSort(bson.D{{Key: "last_activity", Value: -1}})
	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*models.Room{}
	for cur.Next(ctx) {
		var r models.Room
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, cur.Err()
}

func (s *MongoRoomStore) CreateRoom(ctx context.Context, room *models.Room) error {
	room.CreatedAt = time.Now().UTC()
	room.LastActivity = room.CreatedAt
	_, err := s.coll.InsertOne(ctx, room)
	return err
}

// JoinMember pushes the membership with a filter that excludes rooms the
// user already belongs to and rooms at capacity, so the check and the
// write happen in a single document update.
func (s *MongoRoomStore) JoinMember(ctx context.Context, roomID string, m models.Membership) (bool, error) {
	filter := bson.M{
		"_id":             roomID,
		"members.user_id": bson.M{"$ne": m.UserID},
		"$expr":           bson.M{"$lt": bson.A{bson.M{"$size": "$members"}, "$max_members"}},
	}
	update := bson.M{
		"$push": bson.M{"members": m},
		"$set":  bson.M{"last_activity": time.Now().UTC()},
	}
	res, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// SaveMembers persists the membership list and last-activity after an
// in-memory AddMember/RemoveMember mutation.
func (s *MongoRoomStore) SaveMembers(ctx context.Context, room *models.Room) error {
	update := bson.M{"$set": bson.M{
		"members":       room.Members,
		"last_activity": room.LastActivity,
	}}
	res, err := s.coll.UpdateByID(ctx, room.ID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return chaterr.ErrNotFound
	}
	return nil
}

func (s *MongoRoomStore) TouchActivity(ctx context.Context, roomID string) error {
	_, err := s.coll.UpdateByID(ctx, roomID, bson.M{"$set": bson.M{"last_activity": time.Now().UTC()}})
	return err
}
