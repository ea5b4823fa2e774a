package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/query"
)

// MemoryStore keeps users and properties in process memory. It backs
// DATA_STORE=memory and the tests. Records handed out are copies.
type MemoryStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[bson.ObjectID]*model.User
	emails     map[string]bson.ObjectID
	properties map[bson.ObjectID]*model.Property
	// insertion order, so unsorted listings are stable like Mongo's natural order
	order []bson.ObjectID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        func() time.Time { return time.Now().UTC() },
		users:      make(map[bson.ObjectID]*model.User),
		emails:     make(map[string]bson.ObjectID),
		properties: make(map[bson.ObjectID]*model.Property),
	}
}

// Users returns the store's credential repository.
func (s *MemoryStore) Users() UserRepository { return (*memoryUsers)(s) }

// Properties returns the store's property repository.
func (s *MemoryStore) Properties() PropertyRepository { return (*memoryProperties)(s) }

type memoryUsers MemoryStore

func (r *memoryUsers) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.emails[user.Email]; ok {
		return nil, ErrDuplicateKey
	}

	stored := cloneUser(user)
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = r.now()
	if stored.SavedProperties == nil {
		stored.SavedProperties = []bson.ObjectID{}
	}
	if stored.VisitedProperties == nil {
		stored.VisitedProperties = []bson.ObjectID{}
	}

	r.users[stored.ID] = stored
	r.emails[stored.Email] = stored.ID

	return cloneUser(stored), nil
}

func (r *memoryUsers) GetUser(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	out := cloneUser(user)
	out.Password = ""
	return out, nil
}

func (r *memoryUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, ErrNotFound
	}

	return cloneUser(r.users[id]), nil
}

func (r *memoryUsers) UpdateUser(_ context.Context, id string, params UpdateUserParams) (*model.User, error) {
	if params.Name == nil && params.PasswordHash == nil && params.ProfilePicture == nil {
		return nil, errNoUserFields
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.PasswordHash != nil {
		user.Password = *params.PasswordHash
	}
	if params.ProfilePicture != nil {
		user.ProfilePicture = *params.ProfilePicture
	}

	out := cloneUser(user)
	out.Password = ""
	return out, nil
}

func (r *memoryUsers) RecordVisit(_ context.Context, userID string, propertyID bson.ObjectID, limit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, err := r.lookup(userID)
	if err != nil {
		// matches the Mongo update, which silently matches nothing
		return nil
	}

	if slices.Contains(user.VisitedProperties, propertyID) {
		return nil
	}

	visited := append(user.VisitedProperties, propertyID)
	if len(visited) > limit {
		visited = visited[len(visited)-limit:]
	}
	user.VisitedProperties = slices.Clone(visited)

	return nil
}

func (r *memoryUsers) GetContacts(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]model.Contact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	contacts := make(map[bson.ObjectID]model.Contact, len(ids))
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			contacts[id] = model.Contact{ID: user.ID, Name: user.Name, Email: user.Email, Phone: user.Phone}
		}
	}

	return contacts, nil
}

func (r *memoryUsers) RemovePropertyReferences(_ context.Context, propertyID bson.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	isProperty := func(id bson.ObjectID) bool { return id == propertyID }
	for _, user := range r.users {
		user.VisitedProperties = slices.DeleteFunc(user.VisitedProperties, isProperty)
		user.SavedProperties = slices.DeleteFunc(user.SavedProperties, isProperty)
	}

	return nil
}

func (r *memoryUsers) Ping(context.Context) error { return nil }

func (r *memoryUsers) lookup(id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	user, ok := r.users[objectID]
	if !ok {
		return nil, ErrNotFound
	}

	return user, nil
}

type memoryProperties MemoryStore

func (r *memoryProperties) CreateProperty(_ context.Context, property *model.Property) (*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := cloneProperty(property)
	stored.ID = bson.NewObjectID()
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	stored.Features = nonNil(stored.Features)
	stored.Amenities = nonNil(stored.Amenities)
	stored.Images = nonNil(stored.Images)

	r.properties[stored.ID] = stored
	r.order = append(r.order, stored.ID)

	return cloneProperty(stored), nil
}

func (r *memoryProperties) GetProperty(_ context.Context, id string) (*model.Property, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	property, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	return cloneProperty(property), nil
}

func (r *memoryProperties) IncrementViews(_ context.Context, id string) (*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	property, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	property.Views++
	return cloneProperty(property), nil
}

func (r *memoryProperties) UpdateProperty(
	_ context.Context,
	id string,
	params UpdatePropertyParams,
) (*model.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	property, err := r.lookup(id)
	if err != nil {
		return nil, err
	}

	params.Apply(property)
	property.UpdatedAt = r.now()

	return cloneProperty(property), nil
}

func (r *memoryProperties) DeleteProperty(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	property, err := r.lookup(id)
	if err != nil {
		return err
	}

	delete(r.properties, property.ID)
	r.order = slices.DeleteFunc(r.order, func(oid bson.ObjectID) bool { return oid == property.ID })

	return nil
}

func (r *memoryProperties) ListProperties(
	_ context.Context,
	filter query.PropertyFilter,
) ([]*model.Property, int64, error) {
	matches := r.collect(filter.Matches)
	query.SortProperties(matches, filter.Sort)

	total := int64(len(matches))
	start := max(0, min(filter.Skip(), total))
	end := min(start+int64(filter.Limit), total)

	return matches[start:end], total, nil
}

func (r *memoryProperties) ListFeatured(_ context.Context, limit int) ([]*model.Property, error) {
	featured := r.collect(func(p *model.Property) bool { return p.IsFeatured })
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

func (r *memoryProperties) ListByOwner(_ context.Context, ownerID bson.ObjectID) ([]*model.Property, error) {
	return r.collect(func(p *model.Property) bool { return p.Owner == ownerID }), nil
}

func (r *memoryProperties) ListByAgent(_ context.Context, agentID bson.ObjectID) ([]*model.Property, error) {
	return r.collect(func(p *model.Property) bool { return p.Agent == agentID }), nil
}

func (r *memoryProperties) GetSummaries(_ context.Context, ids []bson.ObjectID) ([]model.PropertySummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := []model.PropertySummary{}
	for _, id := range ids {
		if p, ok := r.properties[id]; ok {
			summaries = append(summaries, model.PropertySummary{
				ID:       p.ID,
				Title:    p.Title,
				Location: p.Location,
				Price:    p.Price,
				Images:   slices.Clone(p.Images),
				Type:     p.Type,
			})
		}
	}

	return summaries, nil
}

// collect returns copies of the properties accepted by keep, in insertion order.
func (r *memoryProperties) collect(keep func(*model.Property) bool) []*model.Property {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*model.Property{}
	for _, id := range r.order {
		if p := r.properties[id]; keep(p) {
			out = append(out, cloneProperty(p))
		}
	}
	return out
}

func (r *memoryProperties) lookup(id string) (*model.Property, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	property, ok := r.properties[objectID]
	if !ok {
		return nil, ErrNotFound
	}

	return property, nil
}

func cloneUser(u *model.User) *model.User {
	out := *u
	out.SavedProperties = slices.Clone(u.SavedProperties)
	out.VisitedProperties = slices.Clone(u.VisitedProperties)
	return &out
}

func cloneProperty(p *model.Property) *model.Property {
	out := *p
	if p.YearBuilt != nil {
		year := *p.YearBuilt
		out.YearBuilt = &year
	}
	out.Features = slices.Clone(p.Features)
	out.Amenities = slices.Clone(p.Amenities)
	out.Images = slices.Clone(p.Images)
	return &out
}
