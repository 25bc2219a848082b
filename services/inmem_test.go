package services_test

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"storefinder/models"
	"storefinder/utils/errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository doubles. The aggregation operations are plain
// functions over slices so their semantics can be checked without a running
// database.

type memUserRepo struct {
	mu    sync.Mutex
	users []*models.User
}

func (r *memUserRepo) add(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users = append(r.users, user)
	return user
}

func (r *memUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) (string, error) {
	r.add(user)
	return user.ID.Hex(), nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID.Hex() == id })
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUserRepo) GetByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		// Strict inequality: expiry == now is already expired.
		return u.ResetToken != "" && u.ResetToken == token && u.ResetExpiry.After(now)
	})
}

func (r *memUserRepo) SetResetToken(ctx context.Context, id, token string, expiry time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() == id {
			u.ResetToken = token
			u.ResetExpiry = expiry
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *memUserRepo) SetPassword(ctx context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() == id {
			u.PasswordHash = passwordHash
			u.ResetToken = ""
			u.ResetExpiry = time.Time{}
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *memUserRepo) UpdateAccount(ctx context.Context, id, name, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() == id {
			u.Name = name
			u.Email = email
			copied := *u
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *memUserRepo) ToggleHeart(ctx context.Context, id, storeID string, add bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() != id {
			continue
		}
		hearts := make([]string, 0, len(u.Hearts)+1)
		present := false
		for _, h := range u.Hearts {
			if h == storeID {
				present = true
				if !add {
					continue
				}
			}
			hearts = append(hearts, h)
		}
		if add && !present {
			hearts = append(hearts, storeID)
		}
		u.Hearts = hearts
		copied := *u
		return &copied, nil
	}
	return nil, errors.ErrNotFound
}

type memStoreRepo struct {
	mu      sync.Mutex
	stores  []*models.Store
	reviews []*models.Review
}

func (r *memStoreRepo) Create(ctx context.Context, store *models.Store) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	store.ID = primitive.NewObjectID()
	copied := *store
	r.stores = append(r.stores, &copied)
	return store.ID.Hex(), nil
}

func (r *memStoreRepo) Update(ctx context.Context, id string, store *models.Store) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.stores {
		if s.ID.Hex() == id {
			copied := *store
			copied.ID = s.ID
			r.stores[i] = &copied
			result := copied
			return &result, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *memStoreRepo) find(match func(*models.Store) bool) (*models.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.stores {
		if match(s) {
			copied := *s
			return &copied, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *memStoreRepo) GetByID(ctx context.Context, id string) (*models.Store, error) {
	return r.find(func(s *models.Store) bool { return s.ID.Hex() == id })
}

func (r *memStoreRepo) GetBySlug(ctx context.Context, slug string) (*models.Store, error) {
	return r.find(func(s *models.Store) bool { return s.Slug == slug })
}

func (r *memStoreRepo) all() []models.Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Store, 0, len(r.stores))
	for _, s := range r.stores {
		out = append(out, *s)
	}
	return out
}

func (r *memStoreRepo) Page(ctx context.Context, skip, limit int64) ([]models.Store, error) {
	stores := r.all()
	sort.Slice(stores, func(i, j int) bool { return stores[i].Created.After(stores[j].Created) })
	if skip >= int64(len(stores)) {
		return []models.Store{}, nil
	}
	stores = stores[skip:]
	if int64(len(stores)) > limit {
		stores = stores[:limit]
	}
	return stores, nil
}

func (r *memStoreRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.stores)), nil
}

func (r *memStoreRepo) CountSlugLike(ctx context.Context, base string) (int64, error) {
	re := regexp.MustCompile(fmt.Sprintf("(?i)^(%s)(-[0-9]*)?$", regexp.QuoteMeta(base)))
	var count int64
	for _, s := range r.all() {
		if re.MatchString(s.Slug) {
			count++
		}
	}
	return count, nil
}

func (r *memStoreRepo) ByTag(ctx context.Context, tag string) ([]models.Store, error) {
	matched := []models.Store{}
	for _, s := range r.all() {
		if tag == "" {
			if len(s.Tags) > 0 {
				matched = append(matched, s)
			}
			continue
		}
		for _, t := range s.Tags {
			if t == tag {
				matched = append(matched, s)
				break
			}
		}
	}
	return matched, nil
}

func (r *memStoreRepo) ByIDs(ctx context.Context, ids []string) ([]models.Store, error) {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	matched := []models.Store{}
	for _, s := range r.all() {
		if wanted[s.ID.Hex()] {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

func (r *memStoreRepo) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	counts := map[string]int{}
	for _, s := range r.all() {
		for _, t := range s.Tags {
			counts[t]++
		}
	}
	tags := make([]models.TagCount, 0, len(counts))
	for tag, count := range counts {
		tags = append(tags, models.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Count > tags[j].Count })
	return tags, nil
}

func (r *memStoreRepo) Search(ctx context.Context, query string, limit int64) ([]models.Store, error) {
	q := strings.ToLower(query)
	matched := []models.Store{}
	for _, s := range r.all() {
		if strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.Description), q) {
			matched = append(matched, s)
		}
		if int64(len(matched)) == limit {
			break
		}
	}
	return matched, nil
}

func (r *memStoreRepo) Near(ctx context.Context, lng, lat, maxDistanceMeters float64, limit int64) ([]models.StoreSummary, error) {
	type withDist struct {
		summary models.StoreSummary
		dist    float64
	}
	var candidates []withDist
	for _, s := range r.all() {
		if len(s.Location.Coordinates) != 2 {
			continue
		}
		d := metersBetween(lng, lat, s.Location.Coordinates[0], s.Location.Coordinates[1])
		if d > maxDistanceMeters {
			continue
		}
		candidates = append(candidates, withDist{
			summary: models.StoreSummary{
				Slug:        s.Slug,
				Name:        s.Name,
				Description: s.Description,
				Location:    s.Location,
				Photo:       s.Photo,
			},
			dist: d,
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].dist < candidates[j].dist })
	if int64(len(candidates)) > limit {
		candidates = candidates[:limit]
	}
	out := make([]models.StoreSummary, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.summary)
	}
	return out, nil
}

func metersBetween(lng1, lat1, lng2, lat2 float64) float64 {
	const earthRadius = 6371000
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadius * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

func (r *memStoreRepo) TopRated(ctx context.Context, minReviews, limit int) ([]models.RatedStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byStore := map[primitive.ObjectID][]int{}
	for _, rev := range r.reviews {
		byStore[rev.Store] = append(byStore[rev.Store], rev.Rating)
	}
	var rated []models.RatedStore
	for _, s := range r.stores {
		ratings := byStore[s.ID]
		if len(ratings) < minReviews {
			continue
		}
		sum := 0
		for _, v := range ratings {
			sum += v
		}
		rated = append(rated, models.RatedStore{
			ID:            s.ID,
			Name:          s.Name,
			Slug:          s.Slug,
			Photo:         s.Photo,
			ReviewCount:   len(ratings),
			AverageRating: float64(sum) / float64(len(ratings)),
		})
	}
	sort.Slice(rated, func(i, j int) bool { return rated[i].AverageRating < rated[j].AverageRating })
	if len(rated) > limit {
		rated = rated[:limit]
	}
	return rated, nil
}

func (r *memStoreRepo) AddReview(ctx context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review.ID = primitive.NewObjectID()
	copied := *review
	r.reviews = append(r.reviews, &copied)
	return nil
}

// memSessionStore is an in-memory SessionStore.
type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.User
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: map[string]*models.User{}}
}

func (s *memSessionStore) Put(ctx context.Context, sid string, user *models.User, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *user
	s.sessions[sid] = &copied
	return nil
}

func (s *memSessionStore) Get(ctx context.Context, sid string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.sessions[sid]
	if !ok {
		return nil, errors.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *memSessionStore) Delete(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}
