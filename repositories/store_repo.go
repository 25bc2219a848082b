package repositories

import (
	"context"

	"storefinder/models"
)

// StoreRepository defines persistence and the query/aggregation surface for
// the store directory. Ordering guarantees (creation time, relevance score,
// distance, average rating) belong to the implementation; callers rely on the
// sequences coming back already ordered.
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) (string, error)
	Update(ctx context.Context, id string, store *models.Store) (*models.Store, error)
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetBySlug(ctx context.Context, slug string) (*models.Store, error)

	// Page returns stores ordered by creation time descending.
	Page(ctx context.Context, skip, limit int64) ([]models.Store, error)
	Count(ctx context.Context) (int64, error)

	// CountSlugLike counts existing stores whose slug matches
	// ^(base)(-[0-9]*)?$ case-insensitively, for collision suffixing.
	CountSlugLike(ctx context.Context, base string) (int64, error)

	// ByTag filters stores carrying the tag. An empty tag is the "any"
	// sentinel and matches every store that has at least one tag.
	ByTag(ctx context.Context, tag string) ([]models.Store, error)
	ByIDs(ctx context.Context, ids []string) ([]models.Store, error)

	// TagCounts groups every store's tags and counts them, ordered by
	// descending count.
	TagCounts(ctx context.Context) ([]models.TagCount, error)

	// Search runs a full-text relevance query over name+description, best
	// matches first.
	Search(ctx context.Context, query string, limit int64) ([]models.Store, error)

	// Near returns stores within maxDistanceMeters of the point, nearest
	// first, projected down to the summary fields.
	Near(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int64) ([]models.StoreSummary, error)

	// TopRated joins stores to their reviews, keeps stores with at least
	// minReviews of them and averages the ratings. Sorted by ascending
	// average before the cap, as the original listing does.
	TopRated(ctx context.Context, minReviews, limit int) ([]models.RatedStore, error)

	AddReview(ctx context.Context, review *models.Review) error
}
