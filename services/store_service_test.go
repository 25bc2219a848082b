package services_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"

	"storefinder/models"
	"storefinder/services"
	"storefinder/utils/errors"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func storeInput(name string, tags ...string) services.StoreInput {
	return services.StoreInput{
		Name:    name,
		Address: "1 Test Street",
		Lng:     f64(103.85),
		Lat:     f64(1.29),
		Tags:    tags,
	}
}

func newStoreFixture() (*services.StoreService, *memStoreRepo, *memUserRepo) {
	stores := &memStoreRepo{}
	users := &memUserRepo{}
	return services.NewStoreService(stores, users), stores, users
}

func TestStoreService_SlugUniqueness(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	slugPattern := regexp.MustCompile(`^cafe-luna(-[0-9]+)?$`)
	seen := map[string]bool{}
	for i := 0; i < 4; i++ {
		store, err := svc.Create(ctx, fmt.Sprintf("author-%d", i), storeInput("Cafe Luna"))
		assert.NoError(t, err)
		assert.Regexp(t, slugPattern, store.Slug)
		assert.False(t, seen[store.Slug], "duplicate slug %q", store.Slug)
		seen[store.Slug] = true
	}
	assert.True(t, seen["cafe-luna"])
	assert.True(t, seen["cafe-luna-2"])
}

func TestStoreService_CreateScenario(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	first, err := svc.Create(ctx, "u1", storeInput("Cafe Luna", "coffee"))
	assert.NoError(t, err)
	assert.Equal(t, "cafe-luna", first.Slug)

	second, err := svc.Create(ctx, "u2", storeInput("Cafe Luna"))
	assert.NoError(t, err)
	assert.Equal(t, "cafe-luna-2", second.Slug)

	// "any" matches only the store that carries at least one tag
	page, err := svc.Tags(ctx, "")
	assert.NoError(t, err)
	assert.Len(t, page.Stores, 1)
	assert.Equal(t, "cafe-luna", page.Stores[0].Slug)
	assert.Equal(t, []models.TagCount{{Tag: "coffee", Count: 1}}, page.Tags)
}

func TestStoreService_TagCounts(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	_, err := svc.Create(ctx, "u1", storeInput("A", "coffee", "wifi"))
	assert.NoError(t, err)
	_, err = svc.Create(ctx, "u1", storeInput("B", "coffee"))
	assert.NoError(t, err)

	page, err := svc.Tags(ctx, "coffee")
	assert.NoError(t, err)
	// A store with N tags contributes to N groups; ordered by count desc
	assert.Equal(t, []models.TagCount{{Tag: "coffee", Count: 2}, {Tag: "wifi", Count: 1}}, page.Tags)
	assert.Len(t, page.Stores, 2)
}

func TestStoreService_ListPageRedirect(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.Create(ctx, "u1", storeInput(fmt.Sprintf("Store %d", i)))
		assert.NoError(t, err)
	}

	// 4 stores at 3 per page is 2 pages
	page, err := svc.ListPage(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, page.Stores, 3)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, int64(4), page.Count)
	assert.Zero(t, page.RedirectTo)

	page, err = svc.ListPage(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, page.Stores, 1)
	assert.Zero(t, page.RedirectTo)

	// Past the end: a redirect directive to the last valid page, never a
	// silently empty page
	page, err = svc.ListPage(ctx, 5)
	assert.NoError(t, err)
	assert.Empty(t, page.Stores)
	assert.Equal(t, 2, page.RedirectTo)
}

func TestStoreService_ListPageEmptyDirectory(t *testing.T) {
	svc, _, _ := newStoreFixture()

	page, err := svc.ListPage(context.Background(), 1)
	assert.NoError(t, err)
	assert.Empty(t, page.Stores)
	assert.Equal(t, 1, page.Pages)
	assert.Zero(t, page.RedirectTo)
}

func TestStoreService_ToggleHeartPairing(t *testing.T) {
	svc, _, users := newStoreFixture()
	ctx := context.Background()

	user := users.add(&models.User{Email: "test@example.com", Hearts: []string{}})
	store, err := svc.Create(ctx, user.ID.Hex(), storeInput("Cafe Luna"))
	assert.NoError(t, err)

	hearts, err := svc.ToggleHeart(ctx, user.ID.Hex(), store.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, []string{store.ID.Hex()}, hearts)

	// Toggling again returns the set to its original state
	hearts, err = svc.ToggleHeart(ctx, user.ID.Hex(), store.ID.Hex())
	assert.NoError(t, err)
	assert.Empty(t, hearts)

	// A second add stays a set: exactly one distinct id
	_, err = svc.ToggleHeart(ctx, user.ID.Hex(), store.ID.Hex())
	assert.NoError(t, err)
	hearted, err := svc.Hearted(ctx, user.ID.Hex())
	assert.NoError(t, err)
	assert.Len(t, hearted, 1)
	assert.Equal(t, "cafe-luna", hearted[0].Slug)
}

func TestStoreService_TopStoresMinReviews(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	one, err := svc.Create(ctx, "u1", storeInput("One Review"))
	assert.NoError(t, err)
	two, err := svc.Create(ctx, "u1", storeInput("Two Reviews"))
	assert.NoError(t, err)
	best, err := svc.Create(ctx, "u1", storeInput("Well Reviewed"))
	assert.NoError(t, err)

	_, err = svc.AddReview(ctx, "u2", one.ID.Hex(), "ok", 5)
	assert.NoError(t, err)
	for _, rating := range []int{2, 2} {
		_, err = svc.AddReview(ctx, "u2", two.ID.Hex(), "meh", rating)
		assert.NoError(t, err)
	}
	for _, rating := range []int{5, 4} {
		_, err = svc.AddReview(ctx, "u2", best.ID.Hex(), "great", rating)
		assert.NoError(t, err)
	}

	rated, err := svc.TopStores(ctx)
	assert.NoError(t, err)
	// Exactly one review is excluded; two qualify. The listing keeps the
	// inherited ascending sort by average rating.
	assert.Len(t, rated, 2)
	assert.Equal(t, "two-reviews", rated[0].Slug)
	assert.Equal(t, 2.0, rated[0].AverageRating)
	assert.Equal(t, "well-reviewed", rated[1].Slug)
	assert.Equal(t, 4.5, rated[1].AverageRating)
}

func TestStoreService_OwnershipEnforcement(t *testing.T) {
	svc, stores, _ := newStoreFixture()
	ctx := context.Background()

	store, err := svc.Create(ctx, "owner", storeInput("Cafe Luna", "coffee"))
	assert.NoError(t, err)

	_, err = svc.EditStore(ctx, store.ID.Hex(), "intruder")
	assert.Equal(t, errors.ErrOwnershipViolation, err)

	in := storeInput("Hijacked")
	_, err = svc.Update(ctx, store.ID.Hex(), "intruder", in)
	assert.Equal(t, errors.ErrOwnershipViolation, err)

	// No mutation happened
	unchanged, err := stores.GetByID(ctx, store.ID.Hex())
	assert.NoError(t, err)
	assert.Equal(t, "Cafe Luna", unchanged.Name)
	assert.Equal(t, "cafe-luna", unchanged.Slug)
}

func TestStoreService_UpdateRederivesSlug(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	store, err := svc.Create(ctx, "owner", storeInput("Cafe Luna"))
	assert.NoError(t, err)

	in := storeInput("Cafe Sol", "espresso")
	updated, err := svc.Update(ctx, store.ID.Hex(), "owner", in)
	assert.NoError(t, err)
	assert.Equal(t, "cafe-sol", updated.Slug)
	assert.Equal(t, "Point", updated.Location.Type)
	assert.Equal(t, []string{"espresso"}, updated.Tags)

	// Same name keeps the slug
	in.Name = "Cafe Sol"
	in.Description = "updated"
	updated, err = svc.Update(ctx, store.ID.Hex(), "owner", in)
	assert.NoError(t, err)
	assert.Equal(t, "cafe-sol", updated.Slug)
	assert.Equal(t, "updated", updated.Description)
}

func TestStoreService_Near(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	near := storeInput("Near")
	near.Lng, near.Lat = f64(103.851), f64(1.290)
	far := storeInput("Far Away")
	far.Lng, far.Lat = f64(104.5), f64(2.0)
	_, err := svc.Create(ctx, "u1", near)
	assert.NoError(t, err)
	_, err = svc.Create(ctx, "u1", far)
	assert.NoError(t, err)

	results, err := svc.Near(ctx, 103.85, 1.29)
	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Slug)

	_, err = svc.Near(ctx, 103.85, 91)
	assert.Equal(t, errors.ErrInvalidInput, err)
}

func TestStoreService_SearchCap(t *testing.T) {
	svc, _, _ := newStoreFixture()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		_, err := svc.Create(ctx, "u1", storeInput(fmt.Sprintf("Coffee Spot %d", i)))
		assert.NoError(t, err)
	}

	results, err := svc.Search(ctx, "coffee")
	assert.NoError(t, err)
	assert.Len(t, results, 5)
}
