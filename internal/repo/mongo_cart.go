package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Skotchmaster/beauty_shop/internal/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CartCollection = "carts"

type cartDocument struct {
	UserID    string          `bson:"_id"`
	CartData  models.CartData `bson:"cartData"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

// MongoCartStore keeps one document per user in the carts collection.
type MongoCartStore struct {
	Coll *mongo.Collection
}

func NewMongoCartStore(db *mongo.Database) *MongoCartStore {
	return &MongoCartStore{Coll: db.Collection(CartCollection)}
}

func (s *MongoCartStore) LoadCart(ctx context.Context, userID uuid.UUID) (models.CartData, error) {
	var doc cartDocument
	err := s.Coll.FindOne(ctx, bson.M{"_id": userID.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.CartData{}, nil
	}
	if err != nil {
		return nil, err
	}
	if doc.CartData == nil {
		doc.CartData = models.CartData{}
	}
	return doc.CartData, nil
}

func (s *MongoCartStore) SaveCart(ctx context.Context, userID uuid.UUID, data models.CartData) error {
	if data == nil {
		data = models.CartData{}
	}
	doc := cartDocument{UserID: userID.String(), CartData: data, UpdatedAt: time.Now().UTC()}
	_, err := s.Coll.ReplaceOne(ctx, bson.M{"_id": doc.UserID}, doc, options.Replace().SetUpsert(true))
	return err
}
