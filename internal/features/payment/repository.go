package payment

import (
	"context"
	"time"

	"go-pms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id string, accessFilter bson.M) (*Payment, error)
	List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]Payment, int64, error)
	TotalForRent(ctx context.Context, rentID primitive.ObjectID) (float64, error)
	EnsureIndexes(ctx context.Context) error
}

type PaymentRepositoryImpl struct {
	collection *mongo.Collection
}

func NewPaymentRepository(db *database.MongodbDB) PaymentRepository {
	return &PaymentRepositoryImpl{
		collection: db.DB.Collection("payments"),
	}
}

func (r *PaymentRepositoryImpl) Create(ctx context.Context, payment *Payment) error {
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = time.Now()
	payment.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, payment)
	return err
}

func (r *PaymentRepositoryImpl) FindByID(ctx context.Context, id string, accessFilter bson.M) (*Payment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	for k, v := range accessFilter {
		filter[k] = v
	}

	var payment Payment
	err = r.collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]Payment, int64, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	opts.SetSort(bson.D{{Key: "paymentDate", Value: -1}})

	cursor, err := r.collection.Find(ctx, accessFilter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var payments []Payment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, accessFilter)
	if err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *PaymentRepositoryImpl) TotalForRent(ctx context.Context, rentID primitive.ObjectID) (float64, error) {
	cursor, err := r.collection.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"rentId": rentID}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount"}}}},
	})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].Total, nil
}

func (r *PaymentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "rentId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "propertyId", Value: 1}},
		},
	})
	return err
}
