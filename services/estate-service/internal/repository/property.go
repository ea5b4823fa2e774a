package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/query"
)

// PropertyRepository is the property store.
type PropertyRepository interface {
	CreateProperty(ctx context.Context, property *model.Property) (*model.Property, error)
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	// IncrementViews atomically adds one view and returns the updated property.
	IncrementViews(ctx context.Context, id string) (*model.Property, error)
	// UpdateProperty applies params and refreshes updatedAt. Concurrent updates
	// are last-write-wins per field.
	UpdateProperty(ctx context.Context, id string, params UpdatePropertyParams) (*model.Property, error)
	DeleteProperty(ctx context.Context, id string) error
	// ListProperties returns one page of matches and the total match count.
	ListProperties(ctx context.Context, filter query.PropertyFilter) ([]*model.Property, int64, error)
	ListFeatured(ctx context.Context, limit int) ([]*model.Property, error)
	ListByOwner(ctx context.Context, ownerID bson.ObjectID) ([]*model.Property, error)
	ListByAgent(ctx context.Context, agentID bson.ObjectID) ([]*model.Property, error)
	// GetSummaries returns summaries for the ids that exist, in no particular order.
	GetSummaries(ctx context.Context, ids []bson.ObjectID) ([]model.PropertySummary, error)
}

// UpdatePropertyParams defines the optional parameters for updating a property.
// Only the fields that are not nil will be updated.
type UpdatePropertyParams struct {
	Title       *string
	Description *string
	Price       *float64
	Location    *string
	Address     *model.Address
	Type        *model.PropertyType
	Status      *model.PropertyStatus
	Bedrooms    *int
	Bathrooms   *int
	Area        *float64
	YearBuilt   *int
	Features    *[]string
	Amenities   *[]string
	Images      *[]string
	IsFeatured  *bool
}

// fields is the $set document for the non-nil params.
func (p UpdatePropertyParams) fields() bson.M {
	m := bson.M{}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.Location != nil {
		m["location"] = *p.Location
	}
	if p.Address != nil {
		m["address"] = *p.Address
	}
	if p.Type != nil {
		m["type"] = *p.Type
	}
	if p.Status != nil {
		m["status"] = *p.Status
	}
	if p.Bedrooms != nil {
		m["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		m["bathrooms"] = *p.Bathrooms
	}
	if p.Area != nil {
		m["area"] = *p.Area
	}
	if p.YearBuilt != nil {
		m["yearBuilt"] = *p.YearBuilt
	}
	if p.Features != nil {
		m["features"] = nonNil(*p.Features)
	}
	if p.Amenities != nil {
		m["amenities"] = nonNil(*p.Amenities)
	}
	if p.Images != nil {
		m["images"] = nonNil(*p.Images)
	}
	if p.IsFeatured != nil {
		m["isFeatured"] = *p.IsFeatured
	}
	return m
}

// Apply copies the non-nil params onto property.
func (p UpdatePropertyParams) Apply(property *model.Property) {
	if p.Title != nil {
		property.Title = *p.Title
	}
	if p.Description != nil {
		property.Description = *p.Description
	}
	if p.Price != nil {
		property.Price = *p.Price
	}
	if p.Location != nil {
		property.Location = *p.Location
	}
	if p.Address != nil {
		property.Address = *p.Address
	}
	if p.Type != nil {
		property.Type = *p.Type
	}
	if p.Status != nil {
		property.Status = *p.Status
	}
	if p.Bedrooms != nil {
		property.Bedrooms = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		property.Bathrooms = *p.Bathrooms
	}
	if p.Area != nil {
		property.Area = *p.Area
	}
	if p.YearBuilt != nil {
		year := *p.YearBuilt
		property.YearBuilt = &year
	}
	if p.Features != nil {
		property.Features = nonNil(append([]string(nil), *p.Features...))
	}
	if p.Amenities != nil {
		property.Amenities = nonNil(append([]string(nil), *p.Amenities...))
	}
	if p.Images != nil {
		property.Images = nonNil(append([]string(nil), *p.Images...))
	}
	if p.IsFeatured != nil {
		property.IsFeatured = *p.IsFeatured
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

const propertyCollection = "properties"

type propertyMongoRepository struct {
	db *mongo.Database
}

func NewPropertyMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) PropertyRepository {
	collection := db.Collection(propertyCollection)

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "agent", Value: 1}}},
		{Keys: bson.D{{Key: "isFeatured", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "status", Value: 1}, {Key: "price", Value: 1}}},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create property indexes")
	}

	return &propertyMongoRepository{db: db}
}

func (r *propertyMongoRepository) CreateProperty(
	ctx context.Context,
	property *model.Property,
) (*model.Property, error) {
	now := time.Now().UTC()
	property.CreatedAt = now
	property.UpdatedAt = now
	property.Features = nonNil(property.Features)
	property.Amenities = nonNil(property.Amenities)
	property.Images = nonNil(property.Images)

	result, err := r.db.Collection(propertyCollection).InsertOne(ctx, property)
	if err != nil {
		return nil, translateError(err)
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		property.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return property, nil
}

func (r *propertyMongoRepository) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var property model.Property
	if err := r.db.Collection(propertyCollection).FindOne(ctx, bson.M{"_id": objectID}).Decode(&property); err != nil {
		return nil, translateError(err)
	}

	return &property, nil
}

func (r *propertyMongoRepository) IncrementViews(ctx context.Context, id string) (*model.Property, error) {
	return r.findOneAndUpdate(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (r *propertyMongoRepository) UpdateProperty(
	ctx context.Context,
	id string,
	params UpdatePropertyParams,
) (*model.Property, error) {
	updateMap := params.fields()
	updateMap["updatedAt"] = time.Now().UTC()

	return r.findOneAndUpdate(ctx, id, bson.M{"$set": updateMap})
}

func (r *propertyMongoRepository) findOneAndUpdate(ctx context.Context, id string, update bson.M) (*model.Property, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var property model.Property
	err = r.db.Collection(propertyCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&property)
	if err != nil {
		return nil, translateError(err)
	}

	return &property, nil
}

func (r *propertyMongoRepository) DeleteProperty(ctx context.Context, id string) error {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := r.db.Collection(propertyCollection).DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *propertyMongoRepository) ListProperties(
	ctx context.Context,
	filter query.PropertyFilter,
) ([]*model.Property, int64, error) {
	findOptions := options.Find().
		SetLimit(int64(filter.Limit)).
		SetSkip(filter.Skip())
	if sort := filter.SortDoc(); sort != nil {
		findOptions.SetSort(sort)
	}

	doc := filter.BSON()

	properties, err := r.find(ctx, doc, findOptions)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.db.Collection(propertyCollection).CountDocuments(ctx, doc)
	if err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

func (r *propertyMongoRepository) ListFeatured(ctx context.Context, limit int) ([]*model.Property, error) {
	return r.find(ctx, bson.M{"isFeatured": true}, options.Find().SetLimit(int64(limit)))
}

func (r *propertyMongoRepository) ListByOwner(ctx context.Context, ownerID bson.ObjectID) ([]*model.Property, error) {
	return r.find(ctx, bson.M{"owner": ownerID}, options.Find())
}

func (r *propertyMongoRepository) ListByAgent(ctx context.Context, agentID bson.ObjectID) ([]*model.Property, error) {
	return r.find(ctx, bson.M{"agent": agentID}, options.Find())
}

func (r *propertyMongoRepository) find(
	ctx context.Context,
	filter bson.M,
	findOptions *options.FindOptionsBuilder,
) ([]*model.Property, error) {
	cursor, err := r.db.Collection(propertyCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	properties := []*model.Property{}
	for cursor.Next(ctx) {
		var property model.Property
		if err := cursor.Decode(&property); err != nil {
			return nil, err
		}
		properties = append(properties, &property)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return properties, nil
}

func (r *propertyMongoRepository) GetSummaries(
	ctx context.Context,
	ids []bson.ObjectID,
) ([]model.PropertySummary, error) {
	summaries := []model.PropertySummary{}
	if len(ids) == 0 {
		return summaries, nil
	}

	cursor, err := r.db.Collection(propertyCollection).Find(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.D{
			{Key: "title", Value: 1},
			{Key: "location", Value: 1},
			{Key: "price", Value: 1},
			{Key: "images", Value: 1},
			{Key: "type", Value: 1},
		}),
	)
	if err != nil {
		return nil, err
	}

	if err := cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}

	return summaries, nil
}
