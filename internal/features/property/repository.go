package property

import (
	"context"
	"time"

	"go-pms/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PropertyRepository takes an accessFilter on every read. The filter comes
// from the access gateway and is merged into the query, so an out-of-scope
// id behaves exactly like a missing document.
type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	FindByID(ctx context.Context, id string, accessFilter bson.M) (*Property, error)
	List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]Property, int64, error)
	Replace(ctx context.Context, property *Property) error
	UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	UpdateSpaceStatus(ctx context.Context, propertyID primitive.ObjectID, spaceID, status string) error
	AddManager(ctx context.Context, propertyID, userID primitive.ObjectID) error
	RemoveManager(ctx context.Context, propertyID, userID primitive.ObjectID) error
	EnsureIndexes(ctx context.Context) error
}

type PropertyRepositoryImpl struct {
	collection *mongo.Collection
}

func NewPropertyRepository(db *database.MongodbDB) PropertyRepository {
	return &PropertyRepositoryImpl{
		collection: db.DB.Collection("properties"),
	}
}

func (r *PropertyRepositoryImpl) Create(ctx context.Context, property *Property) error {
	if property.ID.IsZero() {
		property.ID = primitive.NewObjectID()
	}
	property.CreatedAt = time.Now()
	property.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, property)
	return err
}

func (r *PropertyRepositoryImpl) FindByID(ctx context.Context, id string, accessFilter bson.M) (*Property, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	for k, v := range accessFilter {
		filter[k] = v
	}

	var property Property
	err = r.collection.FindOne(ctx, filter).Decode(&property)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepositoryImpl) List(ctx context.Context, accessFilter bson.M, limit, offset int64) ([]Property, int64, error) {
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

	var properties []Property
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, 0, err
	}

	total, err := r.collection.CountDocuments(ctx, accessFilter)
	if err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

// Replace persists the whole aggregate after a structural mutation. Floors
// and spaces live inside the document, so there is no partial update path
// that keeps the recomputed totals consistent.
func (r *PropertyRepositoryImpl) Replace(ctx context.Context, property *Property) error {
	property.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": property.ID}, property)
	return err
}

func (r *PropertyRepositoryImpl) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	updates["updated_at"] = time.Now()
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": updates})
	return err
}

func (r *PropertyRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": oid})
	return err
}

// spaceStatusWrite is one candidate update for a lease target's advisory
// status. Buildings keep spaces nested under floors, land keeps squatter
// areas; the writes are tried in order until one matches.
type spaceStatusWrite struct {
	filter      bson.M
	update      bson.M
	arrayFilter bson.M
}

func spaceStatusWrites(propertyID primitive.ObjectID, spaceID, status string) []spaceStatusWrite {
	return []spaceStatusWrite{
		{
			filter: bson.M{"_id": propertyID, "buildingDetails.floors.spaces.spaceId": spaceID},
			update: bson.M{"$set": bson.M{
				"buildingDetails.floors.$[].spaces.$[sp].status": status,
				"updated_at": time.Now(),
			}},
			arrayFilter: bson.M{"sp.spaceId": spaceID},
		},
		{
			filter: bson.M{"_id": propertyID, "landDetails.squatters.squatterId": spaceID},
			update: bson.M{"$set": bson.M{
				"landDetails.squatters.$[sq].status": status,
				"updated_at":                         time.Now(),
			}},
			arrayFilter: bson.M{"sq.squatterId": spaceID},
		},
	}
}

// UpdateSpaceStatus flips the advisory status of one space or squatter area
// via the positional operator.
func (r *PropertyRepositoryImpl) UpdateSpaceStatus(ctx context.Context, propertyID primitive.ObjectID, spaceID, status string) error {
	for _, w := range spaceStatusWrites(propertyID, spaceID, status) {
		res, err := r.collection.UpdateOne(ctx, w.filter, w.update,
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []interface{}{w.arrayFilter},
			}),
		)
		if err != nil {
			return err
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}
	return nil
}

func (r *PropertyRepositoryImpl) AddManager(ctx context.Context, propertyID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": propertyID}, bson.M{
		"$addToSet": bson.M{"assignedManagers": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

func (r *PropertyRepositoryImpl) RemoveManager(ctx context.Context, propertyID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": propertyID}, bson.M{
		"$pull": bson.M{"assignedManagers": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

func (r *PropertyRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "organizationId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assignedManagers", Value: 1}},
		},
	})
	return err
}
