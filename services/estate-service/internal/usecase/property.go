package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vidyaa00/REMS/services/estate-service/internal/cache"
	"github.com/vidyaa00/REMS/services/estate-service/internal/model"
	"github.com/vidyaa00/REMS/services/estate-service/internal/policy"
	"github.com/vidyaa00/REMS/services/estate-service/internal/query"
	"github.com/vidyaa00/REMS/services/estate-service/internal/repository"
	"github.com/vidyaa00/REMS/shared/validation"
)

// FeaturedLimit caps the featured listing.
const FeaturedLimit = 6

// PropertyUsecase defines the listing operations.
type PropertyUsecase interface {
	List(ctx context.Context, filter query.PropertyFilter) (*PropertyPage, error)
	Featured(ctx context.Context) ([]*model.PropertyDetail, error)
	// Get counts a view and records the visit for requester.
	Get(ctx context.Context, id string, requester *model.User) (*model.PropertyDetail, error)
	Create(ctx context.Context, input PropertyInput, requester *model.User) (*model.Property, error)
	Update(ctx context.Context, id string, patch PropertyPatch, requester *model.User) (*model.Property, error)
	Delete(ctx context.Context, id string, requester *model.User) error
	ListByOwner(ctx context.Context, ownerID string) ([]*model.PropertyDetail, error)
	ListByAgent(ctx context.Context, agentID string) ([]*model.PropertyDetail, error)
	// ListVisited resolves ids to summaries in input order, dropping unknown ids.
	ListVisited(ctx context.Context, ids []string) ([]model.PropertySummary, error)
}

// PropertyPage is one page of a listing search.
type PropertyPage struct {
	Properties []*model.PropertyDetail
	Total      int64
	Page       int
	Limit      int
	Pages      int
}

// PropertyInput is the body of a create request. Owner and agent are always
// the requester, so they are not part of it.
type PropertyInput struct {
	Title       string         `json:"title"       validate:"required"`
	Description string         `json:"description" validate:"required"`
	Price       *float64       `json:"price"       validate:"required,gte=0"`
	Location    string         `json:"location"    validate:"required"`
	Type        string         `json:"type"        validate:"required,oneof=house apartment villa penthouse land cabin"`
	Status      string         `json:"status"      validate:"required,oneof=for-sale for-rent rented sold"`
	Bedrooms    *int           `json:"bedrooms"    validate:"required,gte=0"`
	Bathrooms   *int           `json:"bathrooms"   validate:"required,gte=0"`
	Area        *float64       `json:"area"        validate:"required,gte=0"`
	Address     *model.Address `json:"address"     validate:"required"`
	YearBuilt   *int           `json:"yearBuilt"   validate:"omitempty,gte=0"`
	Features    []string       `json:"features"`
	Amenities   []string       `json:"amenities"`
	Images      []string       `json:"images"`
	IsFeatured  bool           `json:"isFeatured"`
}

// PropertyPatch is the body of an update request. Absent fields are left
// unchanged; owner, agent, views and timestamps cannot be patched.
type PropertyPatch struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Price       *float64       `json:"price"     validate:"omitempty,gte=0"`
	Location    *string        `json:"location"`
	Address     *model.Address `json:"address"`
	Type        *string        `json:"type"`
	Status      *string        `json:"status"`
	Bedrooms    *int           `json:"bedrooms"  validate:"omitempty,gte=0"`
	Bathrooms   *int           `json:"bathrooms" validate:"omitempty,gte=0"`
	Area        *float64       `json:"area"      validate:"omitempty,gte=0"`
	YearBuilt   *int           `json:"yearBuilt" validate:"omitempty,gte=0"`
	Features    *[]string      `json:"features"`
	Amenities   *[]string      `json:"amenities"`
	Images      *[]string      `json:"images"`
	IsFeatured  *bool          `json:"isFeatured"`
}

type propertyUsecase struct {
	logger       *zerolog.Logger
	propertyRepo repository.PropertyRepository
	userRepo     repository.UserRepository
	featured     cache.FeaturedCache
	validator    *validation.Validator
}

func NewPropertyUsecase(
	logger *zerolog.Logger,
	propertyRepo repository.PropertyRepository,
	userRepo repository.UserRepository,
	featured cache.FeaturedCache,
	validator *validation.Validator,
) PropertyUsecase {
	if featured == nil {
		featured = cache.Noop{}
	}

	return &propertyUsecase{
		logger:       logger,
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
		featured:     featured,
		validator:    validator,
	}
}

func requesterOf(user *model.User) *policy.Requester {
	if user == nil {
		return nil
	}
	return &policy.Requester{ID: user.ID, Role: user.Role}
}

func (u *propertyUsecase) List(ctx context.Context, filter query.PropertyFilter) (*PropertyPage, error) {
	properties, total, err := u.propertyRepo.ListProperties(ctx, filter)
	if err != nil {
		return nil, err
	}

	details, err := u.expand(ctx, properties)
	if err != nil {
		return nil, err
	}

	return &PropertyPage{
		Properties: details,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Pages:      query.Pages(total, filter.Limit),
	}, nil
}

func (u *propertyUsecase) Featured(ctx context.Context) ([]*model.PropertyDetail, error) {
	if cached, ok, err := u.featured.Get(ctx); err != nil {
		u.logger.Warn().Err(err).Msg("featured cache read failed")
	} else if ok {
		return cached, nil
	}

	properties, err := u.propertyRepo.ListFeatured(ctx, FeaturedLimit)
	if err != nil {
		return nil, err
	}

	details, err := u.expand(ctx, properties)
	if err != nil {
		return nil, err
	}

	if err := u.featured.Set(ctx, details); err != nil {
		u.logger.Warn().Err(err).Msg("featured cache write failed")
	}

	return details, nil
}

func (u *propertyUsecase) Get(ctx context.Context, id string, requester *model.User) (*model.PropertyDetail, error) {
	property, err := u.propertyRepo.IncrementViews(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	if requester != nil {
		if err := u.userRepo.RecordVisit(ctx, requester.ID.Hex(), property.ID, model.MaxVisitedProperties); err != nil {
			return nil, err
		}
	}

	details, err := u.expand(ctx, []*model.Property{property})
	if err != nil {
		return nil, err
	}

	return details[0], nil
}

func (u *propertyUsecase) Create(
	ctx context.Context,
	input PropertyInput,
	requester *model.User,
) (*model.Property, error) {
	if !policy.Can(policy.ActionCreate, requesterOf(requester), nil) {
		return nil, ErrForbidden
	}

	if err := validateStruct(u.validator, input); err != nil {
		return nil, err
	}

	property, err := u.propertyRepo.CreateProperty(ctx, &model.Property{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Price:       *input.Price,
		Location:    input.Location,
		Address:     *input.Address,
		Type:        model.PropertyType(input.Type),
		Status:      model.PropertyStatus(input.Status),
		Bedrooms:    *input.Bedrooms,
		Bathrooms:   *input.Bathrooms,
		Area:        *input.Area,
		YearBuilt:   input.YearBuilt,
		Features:    input.Features,
		Amenities:   input.Amenities,
		Images:      input.Images,
		Agent:       requester.ID,
		Owner:       requester.ID,
		IsFeatured:  input.IsFeatured,
	})
	if err != nil {
		return nil, err
	}

	u.invalidateFeatured(ctx)

	return property, nil
}

func (u *propertyUsecase) Update(
	ctx context.Context,
	id string,
	patch PropertyPatch,
	requester *model.User,
) (*model.Property, error) {
	if err := u.authorize(ctx, policy.ActionUpdate, id, requester); err != nil {
		return nil, err
	}

	params, err := u.updateParams(patch)
	if err != nil {
		return nil, err
	}

	property, err := u.propertyRepo.UpdateProperty(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}

	u.invalidateFeatured(ctx)

	return property, nil
}

func (u *propertyUsecase) updateParams(patch PropertyPatch) (repository.UpdatePropertyParams, error) {
	if err := validateStruct(u.validator, patch); err != nil {
		return repository.UpdatePropertyParams{}, err
	}

	params := repository.UpdatePropertyParams{
		Title:       patch.Title,
		Description: patch.Description,
		Price:       patch.Price,
		Location:    patch.Location,
		Address:     patch.Address,
		Bedrooms:    patch.Bedrooms,
		Bathrooms:   patch.Bathrooms,
		Area:        patch.Area,
		YearBuilt:   patch.YearBuilt,
		Features:    patch.Features,
		Amenities:   patch.Amenities,
		Images:      patch.Images,
		IsFeatured:  patch.IsFeatured,
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return params, invalid("title", "title cannot be empty")
	}
	if patch.Type != nil {
		t := model.PropertyType(*patch.Type)
		if !t.Valid() {
			return params, invalid("type", "type must be one of [house apartment villa penthouse land cabin]")
		}
		params.Type = &t
	}
	if patch.Status != nil {
		s := model.PropertyStatus(*patch.Status)
		if !s.Valid() {
			return params, invalid("status", "status must be one of [for-sale for-rent rented sold]")
		}
		params.Status = &s
	}

	return params, nil
}

func (u *propertyUsecase) Delete(ctx context.Context, id string, requester *model.User) error {
	if err := u.authorize(ctx, policy.ActionDelete, id, requester); err != nil {
		return err
	}

	if err := u.propertyRepo.DeleteProperty(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	// id parsed successfully above, since the property was found
	objectID, _ := bson.ObjectIDFromHex(id)
	if err := u.userRepo.RemovePropertyReferences(ctx, objectID); err != nil {
		u.logger.Error().Err(err).Str("property_id", id).Msg("failed to remove deleted property from user lists")
	}

	u.invalidateFeatured(ctx)

	return nil
}

// authorize loads the property and applies the mutation policy to it.
func (u *propertyUsecase) authorize(ctx context.Context, action policy.Action, id string, requester *model.User) error {
	property, err := u.propertyRepo.GetProperty(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}

	if !policy.Can(action, requesterOf(requester), property) {
		return ErrForbidden
	}

	return nil
}

func (u *propertyUsecase) ListByOwner(ctx context.Context, ownerID string) ([]*model.PropertyDetail, error) {
	objectID, err := repository.ParseID(ownerID)
	if err != nil {
		return nil, invalid("ownerId", "Invalid owner id")
	}

	properties, err := u.propertyRepo.ListByOwner(ctx, objectID)
	if err != nil {
		return nil, err
	}

	return u.expand(ctx, properties)
}

func (u *propertyUsecase) ListByAgent(ctx context.Context, agentID string) ([]*model.PropertyDetail, error) {
	objectID, err := repository.ParseID(agentID)
	if err != nil {
		return nil, invalid("agentId", "Invalid agent id")
	}

	properties, err := u.propertyRepo.ListByAgent(ctx, objectID)
	if err != nil {
		return nil, err
	}

	return u.expand(ctx, properties)
}

func (u *propertyUsecase) ListVisited(ctx context.Context, ids []string) ([]model.PropertySummary, error) {
	summaries, err := u.propertyRepo.GetSummaries(ctx, repository.ParseIDs(ids))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.PropertySummary, len(summaries))
	for _, s := range summaries {
		byID[s.ID.Hex()] = s
	}

	ordered := make([]model.PropertySummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := byID[strings.ToLower(id)]; ok {
			ordered = append(ordered, s)
		}
	}

	return ordered, nil
}

// expand resolves agent and owner references to contacts with one lookup.
func (u *propertyUsecase) expand(ctx context.Context, properties []*model.Property) ([]*model.PropertyDetail, error) {
	seen := make(map[bson.ObjectID]struct{})
	ids := make([]bson.ObjectID, 0, 2*len(properties))
	for _, p := range properties {
		for _, id := range []bson.ObjectID{p.Agent, p.Owner} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}

	contacts, err := u.userRepo.GetContacts(ctx, ids)
	if err != nil {
		return nil, err
	}

	details := make([]*model.PropertyDetail, 0, len(properties))
	for _, p := range properties {
		detail := &model.PropertyDetail{Property: p}
		if c, ok := contacts[p.Agent]; ok {
			detail.Agent = &c
		}
		if c, ok := contacts[p.Owner]; ok {
			detail.Owner = &c
		}
		details = append(details, detail)
	}

	return details, nil
}

func (u *propertyUsecase) invalidateFeatured(ctx context.Context) {
	if err := u.featured.Invalidate(ctx); err != nil {
		u.logger.Warn().Err(err).Msg("featured cache invalidation failed")
	}
}
