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
)

// UserRepository is the credential store.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	// GetUser never returns the password hash.
	GetUser(ctx context.Context, id string) (*model.User, error)
	// GetUserByEmail includes the password hash for credential checks.
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	// RecordVisit appends propertyID to the user's visited list unless it is
	// already present, keeping only the newest limit entries.
	RecordVisit(ctx context.Context, userID string, propertyID bson.ObjectID, limit int) error
	GetContacts(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.Contact, error)
	// RemovePropertyReferences drops propertyID from every visited and saved list.
	RemovePropertyReferences(ctx context.Context, propertyID bson.ObjectID) error
	Ping(ctx context.Context) error
}

// UpdateUserParams defines the optional parameters for updating a user.
// Only the fields that are not nil will be updated.
type UpdateUserParams struct {
	Name           *string
	PasswordHash   *string
	ProfilePicture *string
}

var errNoUserFields = errors.New("no user fields to update")

const userCollection = "users"

var withoutPassword = bson.D{{Key: "password", Value: 0}}

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	user.CreatedAt = time.Now().UTC()
	if user.SavedProperties == nil {
		user.SavedProperties = []bson.ObjectID{}
	}
	if user.VisitedProperties == nil {
		user.VisitedProperties = []bson.ObjectID{}
	}

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		return nil, translateError(err)
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		user.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var user model.User
	err = r.db.Collection(userCollection).
		FindOne(ctx, bson.M{"_id": objectID}, options.FindOne().SetProjection(withoutPassword)).
		Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.Collection(userCollection).FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	updateMap := bson.M{}
	if params.Name != nil {
		updateMap["name"] = *params.Name
	}
	if params.PasswordHash != nil {
		updateMap["password"] = *params.PasswordHash
	}
	if params.ProfilePicture != nil {
		updateMap["profilePicture"] = *params.ProfilePicture
	}

	if len(updateMap) == 0 {
		return nil, errNoUserFields
	}

	var user model.User
	err = r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPassword),
	).Decode(&user)
	if err != nil {
		return nil, translateError(err)
	}

	return &user, nil
}

func (r *userMongoRepository) RecordVisit(
	ctx context.Context,
	userID string,
	propertyID bson.ObjectID,
	limit int,
) error {
	objectID, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return ErrNotFound
	}

	// The $ne guard makes the push a no-op for repeat visits.
	_, err = r.db.Collection(userCollection).UpdateOne(
		ctx,
		bson.M{"_id": objectID, "visitedProperties": bson.M{"$ne": propertyID}},
		bson.M{"$push": bson.M{"visitedProperties": bson.M{
			"$each":  bson.A{propertyID},
			"$slice": -limit,
		}}},
	)
	return err
}

func (r *userMongoRepository) GetContacts(
	ctx context.Context,
	ids []bson.ObjectID,
) (map[bson.ObjectID]model.Contact, error) {
	contacts := make(map[bson.ObjectID]model.Contact, len(ids))
	if len(ids) == 0 {
		return contacts, nil
	}

	cursor, err := r.db.Collection(userCollection).Find(
		ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.D{
			{Key: "name", Value: 1},
			{Key: "email", Value: 1},
			{Key: "phone", Value: 1},
		}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var contact model.Contact
		if err := cursor.Decode(&contact); err != nil {
			return nil, err
		}
		contacts[contact.ID] = contact
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return contacts, nil
}

func (r *userMongoRepository) RemovePropertyReferences(ctx context.Context, propertyID bson.ObjectID) error {
	_, err := r.db.Collection(userCollection).UpdateMany(
		ctx,
		bson.M{"$or": bson.A{
			bson.M{"visitedProperties": propertyID},
			bson.M{"savedProperties": propertyID},
		}},
		bson.M{"$pull": bson.M{
			"visitedProperties": propertyID,
			"savedProperties":   propertyID,
		}},
	)
	return err
}

func (r *userMongoRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}
