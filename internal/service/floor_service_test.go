package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostelworks/hms-api/internal/models"
	"github.com/hostelworks/hms-api/internal/repository"
	appErrors "github.com/hostelworks/hms-api/pkg/errors"
)

type fakeFloorRepo struct {
	floors    map[string]*models.Floor
	rooms     map[string][]models.Room
	listCalls int
}

func newFakeFloorRepo() *fakeFloorRepo {
	return &fakeFloorRepo{floors: make(map[string]*models.Floor), rooms: make(map[string][]models.Room)}
}

func (f *fakeFloorRepo) Create(ctx context.Context, floor *models.Floor) error {
	for _, existing := range f.floors {
		if existing.Name == floor.Name {
			return repository.ErrDuplicateName
		}
	}
	if floor.ID == "" {
		floor.ID = uuid.NewString()
	}
	clone := *floor
	f.floors[floor.ID] = &clone
	return nil
}

func (f *fakeFloorRepo) FindByID(ctx context.Context, id string) (*models.Floor, error) {
	floor, ok := f.floors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *floor
	return &clone, nil
}

func (f *fakeFloorRepo) FindByName(ctx context.Context, name string) (*models.Floor, error) {
	for _, floor := range f.floors {
		if floor.Name == name {
			clone := *floor
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeFloorRepo) ListWithRooms(ctx context.Context) ([]models.FloorWithRooms, error) {
	f.listCalls++
	var listing []models.FloorWithRooms
	for _, floor := range f.floors {
		listing = append(listing, models.FloorWithRooms{Floor: *floor, Rooms: f.rooms[floor.ID]})
	}
	return listing, nil
}

// fakeListingCache stores marshalled values the way the redis-backed
// cache does, so Get exercises the same decode path.
type fakeListingCache struct {
	entries map[string][]byte
	deletes []string
}

func newFakeListingCache() *fakeListingCache {
	return &fakeListingCache{entries: make(map[string][]byte)}
}

func (f *fakeListingCache) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeListingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeListingCache) DeleteByPattern(ctx context.Context, pattern string) error {
	f.deletes = append(f.deletes, pattern)
	f.entries = make(map[string][]byte)
	return nil
}

func TestFloorServiceCreate(t *testing.T) {
	repo := newFakeFloorRepo()
	cache := newFakeListingCache()
	svc := NewFloorService(repo, cache, 0, nil, nil)

	floor, err := svc.Create(context.Background(), CreateFloorRequest{Name: "Ground Floor"})
	require.NoError(t, err)
	assert.NotEmpty(t, floor.ID)
	assert.Contains(t, cache.deletes, "floors:*")
}

func TestFloorServiceCreateDuplicate(t *testing.T) {
	repo := newFakeFloorRepo()
	svc := NewFloorService(repo, nil, 0, nil, nil)

	_, err := svc.Create(context.Background(), CreateFloorRequest{Name: "Ground Floor"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateFloorRequest{Name: "Ground Floor"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestFloorServiceListUsesCache(t *testing.T) {
	repo := newFakeFloorRepo()
	cache := newFakeListingCache()
	svc := NewFloorService(repo, cache, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), CreateFloorRequest{Name: "Ground Floor"})
	require.NoError(t, err)

	first, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.listCalls)

	// Second listing is served from the cache.
	second, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestFloorServiceCreateInvalidatesListing(t *testing.T) {
	repo := newFakeFloorRepo()
	cache := newFakeListingCache()
	svc := NewFloorService(repo, cache, time.Minute, nil, nil)

	_, err := svc.Create(context.Background(), CreateFloorRequest{Name: "Ground Floor"})
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateFloorRequest{Name: "First Floor"})
	require.NoError(t, err)

	listing, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, listing, 2)
	assert.Equal(t, 2, repo.listCalls)
}

func TestFloorServiceListWithoutCache(t *testing.T) {
	repo := newFakeFloorRepo()
	svc := NewFloorService(repo, nil, 0, nil, nil)

	_, err := svc.Create(context.Background(), CreateFloorRequest{Name: "Ground Floor"})
	require.NoError(t, err)

	_, err = svc.List(context.Background())
	require.NoError(t, err)
	_, err = svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
}
