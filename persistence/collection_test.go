package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/junaidrashid-git/swiftcart-api/config"
	"github.com/junaidrashid-git/swiftcart-api/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type note struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	Tag  string `json:"tag,omitempty"`
}

func newNotes(st store.Store, remote *Remote) *Collection[note] {
	return NewCollection[note](st, remote, zap.NewNop(), Options{
		Name:           "notes",
		Version:        "v2",
		LegacyVersions: []string{"v1"},
		SchemaVersion:  1,
		Migrations: map[int]Migration{
			0: func(raw json.RawMessage) (json.RawMessage, error) {
				var old []map[string]interface{}
				if err := json.Unmarshal(raw, &old); err != nil {
					return nil, err
				}
				for _, rec := range old {
					if _, ok := rec["tag"]; !ok {
						rec["tag"] = "legacy"
					}
				}
				return json.Marshal(old)
			},
		},
		RemotePath: "/notes",
	})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "swiftcart_orders_v1", Key("orders", "v1"))
}

func TestCollectionRoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	banners := NewCollection[string](store.NewMemoryStore(), nil, zap.NewNop(), Options{Name: "banners", Version: "v4", SchemaVersion: 1})

	empty, err := banners.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	want := []string{"https://img/3.jpg", "https://img/1.jpg", "https://img/2.jpg"}
	require.NoError(t, banners.Save(ctx, want))

	got, err := banners.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCollectionMigratesLegacyKey(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	_, err := st.Put(ctx, Key("notes", "v1"), []byte(`[{"id":"n1","text":"hello"}]`))
	require.NoError(t, err)

	c := newNotes(st, nil)
	got, err := c.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "legacy", got[0].Tag)

	current, err := st.Get(ctx, c.Key())
	require.NoError(t, err)
	require.True(t, current.Exists())
	assert.JSONEq(t, `{"schemaVersion":1,"records":[{"id":"n1","text":"hello","tag":"legacy"}]}`, string(current.Value))

	old, err := st.Get(ctx, Key("notes", "v1"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"n1","text":"hello"}]`, string(old.Value), "legacy key is left as it was")
}

func TestCollectionRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	c := newNotes(st, nil)
	_, err := st.Put(ctx, c.Key(), []byte(`{"schemaVersion":7,"records":[]}`))
	require.NoError(t, err)

	_, err = c.Load(ctx)
	assert.ErrorIs(t, err, ErrNewerSchema)
}

// Two writers that read the same snapshot and overwrite the whole collection lose
// one update. The conditional write turns the second overwrite into a conflict.
func TestWholeCollectionOverwriteLosesUpdates(t *testing.T) {
	ctx := context.Background()
	c := newNotes(store.NewMemoryStore(), nil)
	require.NoError(t, c.Save(ctx, []note{{ID: "a", Text: "open"}, {ID: "b", Text: "open"}}))

	first, rev1, err := c.Snapshot(ctx)
	require.NoError(t, err)
	second, rev2, err := c.Snapshot(ctx)
	require.NoError(t, err)
	first[0].Text = "closed"
	second[1].Text = "closed"

	t.Run("unconditional save", func(t *testing.T) {
		require.NoError(t, c.Save(ctx, first))
		require.NoError(t, c.Save(ctx, second))

		got, err := c.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "open", got[0].Text, "first writer's update was lost")
		assert.Equal(t, "closed", got[1].Text)
	})

	t.Run("conditional save", func(t *testing.T) {
		require.NoError(t, c.Save(ctx, []note{{ID: "a", Text: "open"}, {ID: "b", Text: "open"}}))
		first, rev1, err = c.Snapshot(ctx)
		require.NoError(t, err)
		second, rev2, err = c.Snapshot(ctx)
		require.NoError(t, err)
		first[0].Text = "closed"
		second[1].Text = "closed"

		_, err = c.SaveIf(ctx, first, rev1)
		require.NoError(t, err)
		_, err = c.SaveIf(ctx, second, rev2)
		assert.ErrorIs(t, err, store.ErrConflict)
	})
}

func TestMutateAppliesEveryConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	c := newNotes(store.NewMemoryStore(), nil)

	const writers = 6
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := c.Mutate(ctx, func(list []note) ([]note, error) {
				return append(list, note{ID: fmt.Sprint(i)}), nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, writers)
}

func TestMutateSkipWrite(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	c := newNotes(st, nil)

	got, err := c.Mutate(ctx, func([]note) ([]note, error) { return nil, ErrSkipWrite })
	require.NoError(t, err)
	assert.Empty(t, got)

	e, err := st.Get(ctx, c.Key())
	require.NoError(t, err)
	assert.False(t, e.Exists())
}

func TestLoadPrefersRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"remote","text":"from api"}]`))
	}))
	defer srv.Close()

	remote := NewRemote(config.RemoteConfig{Enabled: true, BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	c := newNotes(store.NewMemoryStore(), remote)
	require.NoError(t, c.Save(context.Background(), []note{{ID: "local"}}))

	got, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "remote", got[0].ID)
}

func TestLoadFallsBackSilentlyOnRemoteFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	remote := NewRemote(config.RemoteConfig{Enabled: true, BaseURL: srv.URL, Timeout: time.Second}, zap.NewNop())
	c := newNotes(store.NewMemoryStore(), remote)
	require.NoError(t, c.Save(context.Background(), []note{{ID: "local"}}))

	got, err := c.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "local", got[0].ID)

	assert.False(t, c.TryRemote(context.Background(), http.MethodPost, "/notes", note{ID: "x"}, nil))
}

func TestTryRemoteDisabled(t *testing.T) {
	c := newNotes(store.NewMemoryStore(), nil)
	assert.False(t, c.TryRemote(context.Background(), http.MethodPost, "/notes", nil, nil))
}
