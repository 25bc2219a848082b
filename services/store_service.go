package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"storefinder/models"
	"storefinder/repositories"
	"storefinder/utils/errors"
	"storefinder/utils/slug"
)

const (
	pageSize        = 3
	searchLimit     = 5
	nearLimit       = 10
	nearMaxDistance = 10000 // meters
	topMinReviews   = 2
	topLimit        = 10
)

// StoreService is the directory query layer plus store mutation with slug
// derivation and ownership enforcement.
type StoreService struct {
	stores repositories.StoreRepository
	users  repositories.UserRepository
}

func NewStoreService(stores repositories.StoreRepository, users repositories.UserRepository) *StoreService {
	return &StoreService{stores: stores, users: users}
}

// StoreInput carries the user-submitted store fields. Coordinates are
// pointers so a missing value is distinguishable from zero.
type StoreInput struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Address     string   `json:"address" validate:"required"`
	Lng         *float64 `json:"lng" validate:"required,min=-180,max=180"`
	Lat         *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Photo       string   `json:"photo"`
}

// Create inserts a new store owned by the author, deriving its slug from the
// name. Slug collision checking is read-then-write and not transactional;
// two concurrent creates with the same name can race.
func (s *StoreService) Create(ctx context.Context, authorID string, in StoreInput) (*models.Store, error) {
	slugStr, err := s.slugFor(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	store := &models.Store{
		Name:        in.Name,
		Slug:        slugStr,
		Description: in.Description,
		Tags:        in.Tags,
		Created:     time.Now(),
		Location: models.Location{
			Type:        "Point",
			Coordinates: []float64{*in.Lng, *in.Lat},
			Address:     in.Address,
		},
		Photo:  in.Photo,
		Author: authorID,
	}
	if _, err := s.stores.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// slugFor derives the unique slug for a name: the base transliteration, with
// a -<n+1> suffix when n existing slugs already match the base.
func (s *StoreService) slugFor(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	count, err := s.stores.CountSlugLike(ctx, base)
	if err != nil {
		return "", err
	}
	if count > 0 {
		return fmt.Sprintf("%s-%d", base, count+1), nil
	}
	return base, nil
}

// EditStore fetches a store for editing, rejecting anyone but its author
// before anything else happens.
func (s *StoreService) EditStore(ctx context.Context, storeID, userID string) (*models.Store, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.Author != userID {
		return nil, errors.ErrOwnershipViolation
	}
	return store, nil
}

// Update applies the input to an owned store. The location type is forced
// back to Point and the slug is re-derived when the name changed.
func (s *StoreService) Update(ctx context.Context, storeID, userID string, in StoreInput) (*models.Store, error) {
	store, err := s.EditStore(ctx, storeID, userID)
	if err != nil {
		return nil, err
	}

	updated := *store
	updated.Description = in.Description
	updated.Tags = in.Tags
	updated.Location = models.Location{
		Type:        "Point",
		Coordinates: []float64{*in.Lng, *in.Lat},
		Address:     in.Address,
	}
	if in.Photo != "" {
		updated.Photo = in.Photo
	}
	if in.Name != store.Name {
		updated.Name = in.Name
		updated.Slug, err = s.slugFor(ctx, in.Name)
		if err != nil {
			return nil, err
		}
	}
	return s.stores.Update(ctx, storeID, &updated)
}

func (s *StoreService) GetBySlug(ctx context.Context, slugStr string) (*models.Store, error) {
	return s.stores.GetBySlug(ctx, slugStr)
}

// StorePage is one page of the directory listing. A non-zero RedirectTo
// tells the caller to send the requester to that page instead of serving an
// empty one.
type StorePage struct {
	Stores     []models.Store `json:"stores"`
	Page       int            `json:"page"`
	Pages      int            `json:"pages"`
	Count      int64          `json:"count"`
	RedirectTo int            `json:"redirect_to,omitempty"`
}

// ListPage returns the requested page of stores, newest first. The page and
// the total count have no data dependency, so both queries go out together.
func (s *StoreService) ListPage(ctx context.Context, page int) (*StorePage, error) {
	if page < 1 {
		page = 1
	}
	skip := int64(page-1) * pageSize

	type countResult struct {
		count int64
		err   error
	}
	countCh := make(chan countResult, 1)
	go func() {
		count, err := s.stores.Count(ctx)
		countCh <- countResult{count, err}
	}()

	stores, err := s.stores.Page(ctx, skip, pageSize)
	cr := <-countCh
	if err != nil {
		return nil, err
	}
	if cr.err != nil {
		return nil, cr.err
	}

	pages := int(math.Ceil(float64(cr.count) / float64(pageSize)))
	if pages < 1 {
		pages = 1
	}
	if len(stores) == 0 && skip > 0 {
		return &StorePage{Page: page, Pages: pages, Count: cr.count, RedirectTo: pages}, nil
	}
	return &StorePage{Stores: stores, Page: page, Pages: pages, Count: cr.count}, nil
}

// TagPage is the tag listing: every tag with its count, plus the stores
// matching the selected tag.
type TagPage struct {
	Tags   []models.TagCount `json:"tags"`
	Tag    string            `json:"tag,omitempty"`
	Stores []models.Store    `json:"stores"`
}

// Tags returns the tag counts and the stores for the selected tag. An empty
// tag means "any": stores carrying at least one tag. Both queries are
// independent and issued together.
func (s *StoreService) Tags(ctx context.Context, tag string) (*TagPage, error) {
	type tagsResult struct {
		tags []models.TagCount
		err  error
	}
	tagsCh := make(chan tagsResult, 1)
	go func() {
		tags, err := s.stores.TagCounts(ctx)
		tagsCh <- tagsResult{tags, err}
	}()

	stores, err := s.stores.ByTag(ctx, tag)
	tr := <-tagsCh
	if err != nil {
		return nil, err
	}
	if tr.err != nil {
		return nil, tr.err
	}
	return &TagPage{Tags: tr.tags, Tag: tag, Stores: stores}, nil
}

// Search returns the best-matching stores for the query text, capped at 5.
func (s *StoreService) Search(ctx context.Context, query string) ([]models.Store, error) {
	return s.stores.Search(ctx, query, searchLimit)
}

// Near returns up to 10 stores within 10km of the point, nearest first.
func (s *StoreService) Near(ctx context.Context, lng, lat float64) ([]models.StoreSummary, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, errors.ErrInvalidInput
	}
	return s.stores.Near(ctx, lng, lat, nearMaxDistance, nearLimit)
}

// TopStores lists stores with at least two reviews and their average rating.
func (s *StoreService) TopStores(ctx context.Context) ([]models.RatedStore, error) {
	return s.stores.TopRated(ctx, topMinReviews, topLimit)
}

// ToggleHeart adds the store to the user's favorites, or removes it when
// already present. Returns the updated favorite set.
func (s *StoreService) ToggleHeart(ctx context.Context, userID, storeID string) ([]string, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	add := !user.HasHearted(storeID)
	updated, err := s.users.ToggleHeart(ctx, userID, storeID, add)
	if err != nil {
		return nil, err
	}
	return updated.Hearts, nil
}

// Hearted lists the stores the user has favorited.
func (s *StoreService) Hearted(ctx context.Context, userID string) ([]models.Store, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Hearts) == 0 {
		return []models.Store{}, nil
	}
	return s.stores.ByIDs(ctx, user.Hearts)
}

// AddReview attaches a review to a store.
func (s *StoreService) AddReview(ctx context.Context, userID, storeID, text string, rating int) (*models.Review, error) {
	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return nil, err
	}
	review := &models.Review{
		Store:   store.ID,
		Author:  userID,
		Text:    text,
		Rating:  rating,
		Created: time.Now(),
	}
	if err := s.stores.AddReview(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}
