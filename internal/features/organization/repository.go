package organization

import (
	"context"
	"time"

	"go-pms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrganizationRepository interface {
	Create(ctx context.Context, org *Organization) error
	FindByID(ctx context.Context, id string) (*Organization, error)
	List(ctx context.Context) ([]Organization, error)
	Update(ctx context.Context, id string, updates map[string]interface{}) error
}

type OrganizationRepositoryImpl struct {
	collection *mongo.Collection
}

func NewOrganizationRepository(db *database.MongodbDB) OrganizationRepository {
	return &OrganizationRepositoryImpl{
		collection: db.DB.Collection("organizations"),
	}
}

func (r *OrganizationRepositoryImpl) Create(ctx context.Context, org *Organization) error {
	if org.ID.IsZero() {
		org.ID = primitive.NewObjectID()
	}
	org.CreatedAt = time.Now()
	org.UpdatedAt = time.Now()
	if org.Status == "" {
		org.Status = StatusActive
	}

	_, err := r.collection.InsertOne(ctx, org)
	return err
}

func (r *OrganizationRepositoryImpl) FindByID(ctx context.Context, id string) (*Organization, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	var org Organization
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&org)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepositoryImpl) List(ctx context.Context) ([]Organization, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orgs []Organization
	if err = cursor.All(ctx, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

func (r *OrganizationRepositoryImpl) Update(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}
