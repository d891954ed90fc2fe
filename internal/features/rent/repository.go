package rent

import (
	"context"
	"time"

	"go-pms/internal/database"
	"go-pms/pkg/apperror"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RentRepository interface {
	// CreateActive inserts an active assignment. The unique partial index on
	// (propertyId, spaceId) where status=active turns a lost race into a
	// duplicate key, surfaced as a ConflictError.
	CreateActive(ctx context.Context, assignment *RentAssignment) error
	FindByID(ctx context.Context, id string, accessFilter bson.M) (*RentAssignment, error)
	List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]RentAssignment, int64, error)
	ActiveBySpace(ctx context.Context, propertyID primitive.ObjectID, spaceID string) (*RentAssignment, error)
	ActiveSpaceIDs(ctx context.Context, propertyID primitive.ObjectID) (map[string]bool, error)
	DeactivateByProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error
	ExpiredActive(ctx context.Context, asOf time.Time) ([]RentAssignment, error)
	// DueOn returns active assignments whose payment falls due on the given
	// day of month. With lastDayOfMonth set, due dates past the month's end
	// are included so a lease due on the 31st still bills in February.
	DueOn(ctx context.Context, day int, lastDayOfMonth bool) ([]RentAssignment, error)
	EnsureIndexes(ctx context.Context) error
}

type RentRepositoryImpl struct {
	collection *mongo.Collection
}

func NewRentRepository(db *database.MongodbDB) RentRepository {
	return &RentRepositoryImpl{
		collection: db.DB.Collection("rent_assignments"),
	}
}

func (r *RentRepositoryImpl) CreateActive(ctx context.Context, assignment *RentAssignment) error {
	if assignment.ID.IsZero() {
		assignment.ID = primitive.NewObjectID()
	}
	assignment.Status = StatusActive
	assignment.CreatedAt = time.Now()
	assignment.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, assignment)
	if mongo.IsDuplicateKeyError(err) {
		return &apperror.ConflictError{
			Resource: "rent",
			ID:       assignment.SpaceID,
			Reason:   "space already has an active assignment",
		}
	}
	return err
}

func (r *RentRepositoryImpl) FindByID(ctx context.Context, id string, accessFilter bson.M) (*RentAssignment, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	for k, v := range accessFilter {
		filter[k] = v
	}

	var assignment RentAssignment
	err = r.collection.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *RentRepositoryImpl) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]RentAssignment, int64, error) {
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	if offset > 0 {
		opts.SetSkip(offset)
	}
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, accessFilter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var assignments []RentAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, accessFilter)
	if err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *RentRepositoryImpl) ActiveBySpace(ctx context.Context, propertyID primitive.ObjectID, spaceID string) (*RentAssignment, error) {
	var assignment RentAssignment
	err := r.collection.FindOne(ctx, bson.M{
		"propertyId": propertyID,
		"spaceId":    spaceID,
		"status":     StatusActive,
	}).Decode(&assignment)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *RentRepositoryImpl) ActiveSpaceIDs(ctx context.Context, propertyID primitive.ObjectID) (map[string]bool, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"propertyId": propertyID, "status": StatusActive},
		options.Find().SetProjection(bson.M{"spaceId": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	active := map[string]bool{}
	for cursor.Next(ctx) {
		var doc struct {
			SpaceID string `bson:"spaceId"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		active[doc.SpaceID] = true
	}
	return active, cursor.Err()
}

func (r *RentRepositoryImpl) DeactivateByProperty(ctx context.Context, propertyID primitive.ObjectID) (int64, error) {
	res, err := r.collection.UpdateMany(ctx,
		bson.M{"propertyId": propertyID, "status": StatusActive},
		bson.M{"$set": bson.M{"status": StatusInactive, "updated_at": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *RentRepositoryImpl) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	return err
}

func (r *RentRepositoryImpl) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *RentRepositoryImpl) ExpiredActive(ctx context.Context, asOf time.Time) ([]RentAssignment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"status":   StatusActive,
		"leaseEnd": bson.M{"$ne": nil, "$lt": asOf},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []RentAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *RentRepositoryImpl) DueOn(ctx context.Context, day int, lastDayOfMonth bool) ([]RentAssignment, error) {
	due := bson.M{"$eq": day}
	if lastDayOfMonth {
		due = bson.M{"$gte": day}
	}

	cursor, err := r.collection.Find(ctx, bson.M{
		"status":         StatusActive,
		"paymentDueDate": due,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assignments []RentAssignment
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *RentRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// The occupancy guard: at most one active assignment per space.
			Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "spaceId", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": StatusActive}),
		},
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "propertyId", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}
