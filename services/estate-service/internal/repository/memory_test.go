package repository

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/query"
)

func TestMemoryUsers_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	created, err := users.CreateUser(ctx, &model.User{Name: "Ada", Email: "ada@example.com", Password: "hash", Role: model.RoleUser})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.False(t, created.CreatedAt.IsZero())
	assert.NotNil(t, created.VisitedProperties)

	_, err = users.CreateUser(ctx, &model.User{Name: "Other", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateKey)

	byEmail, err := users.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", byEmail.Password)

	byID, err := users.GetUser(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Empty(t, byID.Password)
	assert.Equal(t, "Ada", byID.Name)

	_, err = users.GetUser(ctx, "not-an-id")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = users.GetUser(ctx, bson.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUsers_UpdateUser(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	created, err := users.CreateUser(ctx, &model.User{Name: "Ada", Email: "ada@example.com", Password: "old"})
	require.NoError(t, err)

	name := "Ada L."
	updated, err := users.UpdateUser(ctx, created.ID.Hex(), UpdateUserParams{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", updated.Name)
	assert.Empty(t, updated.Password)

	byEmail, err := users.GetUserByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "old", byEmail.Password)

	_, err = users.UpdateUser(ctx, created.ID.Hex(), UpdateUserParams{})
	assert.Error(t, err)
}

func TestMemoryUsers_RecordVisit(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	user, err := users.CreateUser(ctx, &model.User{Email: "v@example.com"})
	require.NoError(t, err)

	ids := make([]bson.ObjectID, 21)
	for i := range ids {
		ids[i] = bson.NewObjectID()
	}

	for _, id := range ids[:20] {
		require.NoError(t, users.RecordVisit(ctx, user.ID.Hex(), id, model.MaxVisitedProperties))
	}
	require.NoError(t, users.RecordVisit(ctx, user.ID.Hex(), ids[5], model.MaxVisitedProperties))

	got, err := users.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, ids[:20], got.VisitedProperties, "repeat visit does not reorder")

	require.NoError(t, users.RecordVisit(ctx, user.ID.Hex(), ids[20], model.MaxVisitedProperties))

	got, err = users.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, ids[1:], got.VisitedProperties)
}

func TestMemoryUsers_RemovePropertyReferences(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	user, err := users.CreateUser(ctx, &model.User{Email: "r@example.com"})
	require.NoError(t, err)

	keep, drop := bson.NewObjectID(), bson.NewObjectID()
	require.NoError(t, users.RecordVisit(ctx, user.ID.Hex(), keep, 20))
	require.NoError(t, users.RecordVisit(ctx, user.ID.Hex(), drop, 20))

	require.NoError(t, users.RemovePropertyReferences(ctx, drop))

	got, err := users.GetUser(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []bson.ObjectID{keep}, got.VisitedProperties)
}

func TestMemoryProperties_ListPagesAndCounts(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().Properties()

	for i, price := range []float64{150000, 120000, 190000, 180000} {
		_, err := props.CreateProperty(ctx, &model.Property{
			Title:  fmt.Sprintf("Villa %d", i),
			Type:   model.TypeVilla,
			Status: model.StatusForSale,
			Price:  price,
		})
		require.NoError(t, err)
	}
	_, err := props.CreateProperty(ctx, &model.Property{Title: "Flat", Type: model.TypeApartment, Status: model.StatusForSale, Price: 90000})
	require.NoError(t, err)

	filter := query.PropertyFilter{
		Type:  "villa",
		Sort:  &query.Sort{Field: "price", Desc: true},
		Limit: 2,
		Page:  1,
	}

	page, total, err := props.ListProperties(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, page, 2)
	assert.Equal(t, 190000.0, page[0].Price)
	assert.Equal(t, 180000.0, page[1].Price)

	filter.Page = 3
	page, total, err = props.ListProperties(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	assert.Empty(t, page)

	// an overflowing skip must not slice out of range
	filter.Page, filter.Limit = math.MaxInt, 10
	assert.NotPanics(t, func() {
		_, total, err = props.ListProperties(ctx, filter)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
}

func TestMemoryProperties_UpdateAndViews(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().Properties()

	created, err := props.CreateProperty(ctx, &model.Property{Title: "Cabin", Type: model.TypeCabin})
	require.NoError(t, err)

	for range 3 {
		_, err = props.IncrementViews(ctx, created.ID.Hex())
		require.NoError(t, err)
	}

	title := "Lake cabin"
	updated, err := props.UpdateProperty(ctx, created.ID.Hex(), UpdatePropertyParams{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Lake cabin", updated.Title)
	assert.Equal(t, int64(3), updated.Views)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	require.NoError(t, props.DeleteProperty(ctx, created.ID.Hex()))
	assert.ErrorIs(t, props.DeleteProperty(ctx, created.ID.Hex()), ErrNotFound)
	_, err = props.GetProperty(ctx, created.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryProperties_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().Properties()

	created, err := props.CreateProperty(ctx, &model.Property{Title: "Loft", Images: []string{"/a.jpg"}})
	require.NoError(t, err)

	created.Images[0] = "/mutated.jpg"
	created.Title = "mutated"

	got, err := props.GetProperty(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Title)
	assert.Equal(t, []string{"/a.jpg"}, got.Images)
}

func TestMemoryProperties_Summaries(t *testing.T) {
	ctx := context.Background()
	props := NewMemoryStore().Properties()

	a, err := props.CreateProperty(ctx, &model.Property{Title: "A", Location: "Pune", Price: 10, Type: model.TypeLand})
	require.NoError(t, err)

	summaries, err := props.GetSummaries(ctx, []bson.ObjectID{bson.NewObjectID(), a.ID})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, model.PropertySummary{ID: a.ID, Title: "A", Location: "Pune", Price: 10, Images: []string{}, Type: model.TypeLand}, summaries[0])
}

func TestParseIDs_SkipsMalformed(t *testing.T) {
	id := bson.NewObjectID()
	assert.Equal(t, []bson.ObjectID{id}, ParseIDs([]string{"nope", id.Hex(), ""}))

	_, err := ParseID("xyz")
	assert.ErrorIs(t, err, ErrInvalidID)
}
