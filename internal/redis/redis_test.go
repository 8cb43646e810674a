package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

func setupTestRedis(t *testing.T) (*TimingsStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewTimingsStore(client), mr
}

func sample() model.StoredTimings {
	return model.StoredTimings{
		Location: model.Location{Name: "Chicago", Admin: "Illinois", Country: "US", Latitude: 41.8781, Longitude: -87.6298},
		Items: model.RawTiming{
			model.Fajr:    "04:25",
			model.Sunrise: "05:52",
			model.Dhuhr:   "12:56",
			model.Asr:     "16:52",
			model.Maghrib: "19:59",
			model.Isha:    "21:26",
		},
		LastUpdated: time.Date(2025, 8, 5, 9, 0, 0, 0, time.UTC),
	}
}

func TestLoadEmpty(t *testing.T) {
	store, _ := setupTestRedis(t)
	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestSaveAndLoad(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))
	assert.True(t, mr.Exists(TimingsKey))
	assert.Zero(t, mr.TTL(TimingsKey))

	st, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, st)
	assert.Equal(t, sample().Location, st.Location)
	assert.Equal(t, sample().Items, st.Items)
	assert.True(t, sample().LastUpdated.Equal(st.LastUpdated))
}

func TestStoredJSONUsesPrayerNames(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, store.Save(context.Background(), sample()))

	raw, err := mr.Get(TimingsKey)
	require.NoError(t, err)
	assert.Contains(t, raw, `"Fajr":"04:25"`)
	assert.Contains(t, raw, `"Maghrib":"19:59"`)
}

func TestSaveOverwrites(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))
	next := sample()
	next.Location.Name = "Evanston"
	next.Items[model.Isha] = "21:30"
	require.NoError(t, store.Save(ctx, next))

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Evanston", st.Location.Name)
	assert.Equal(t, "21:30", st.Items[model.Isha])
}

func TestClear(t *testing.T) {
	store, mr := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sample()))
	require.NoError(t, store.Clear(ctx))
	assert.False(t, mr.Exists(TimingsKey))

	st, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestLoadUnreadableRecordIsAbsent(t *testing.T) {
	store, mr := setupTestRedis(t)
	require.NoError(t, mr.Set(TimingsKey, "{not json"))

	st, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, st)
}

func TestLoadConnectionErrorIsReturned(t *testing.T) {
	store, mr := setupTestRedis(t)
	mr.Close()

	_, err := store.Load(context.Background())
	assert.Error(t, err)
}

func TestNewClientConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), mr.Addr(), "", "")
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Ping(context.Background()).Err())
}

func TestNewClientGivesUpWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err := NewClient(ctx, "127.0.0.1:1", "", "")
	assert.Error(t, err)
}
