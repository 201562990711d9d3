package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reqcheck/internal/shared/testutil"
	"reqcheck/pkg/contracts/domain"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewStore(ttl, Preferences{ExportFormat: "xlsx"}, testutil.DiscardLogger())
	store.now = func() time.Time { return now }
	return store, &now
}

func TestStore_CreateAndGet(t *testing.T) {
	store, now := newTestStore(time.Hour)

	sess := store.Create()
	assert.Len(t, sess.ID, 36)
	assert.Equal(t, *now, sess.CreatedAt)
	assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)
	assert.Equal(t, Preferences{ExportFormat: "xlsx"}, sess.Preferences)

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, got.ID)

	_, err = store.Get("unknown")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestStore_Expiry(t *testing.T) {
	store, now := newTestStore(time.Hour)
	sess := store.Create()

	*now = now.Add(59 * time.Minute)
	_, err := store.Get(sess.ID)
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The expired session is gone afterwards.
	_, err = store.Get(sess.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, store.Len())
}

func TestStore_CreateSweepsExpired(t *testing.T) {
	store, now := newTestStore(time.Minute)
	store.Create()
	store.Create()
	assert.Equal(t, 2, store.Len())

	*now = now.Add(2 * time.Minute)
	store.Create()
	assert.Equal(t, 1, store.Len())
}

func TestStore_PreferencesAndReport(t *testing.T) {
	store, now := newTestStore(time.Hour)
	sess := store.Create()

	updated, err := store.UpdatePreferences(sess.ID, Preferences{ExportFormat: "csv", ShowDebug: true})
	require.NoError(t, err)
	assert.Equal(t, "csv", updated.Preferences.ExportFormat)
	assert.True(t, updated.Preferences.ShowDebug)

	report := &StoredReport{Report: &domain.Report{ID: "r1"}}
	require.NoError(t, store.SetReport(sess.ID, report))

	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Same(t, report, got.Report)

	store.Delete(sess.ID)
	assert.ErrorIs(t, store.SetReport(sess.ID, report), ErrSessionNotFound)

	expiring := store.Create()
	*now = now.Add(2 * time.Hour)
	_, err = store.UpdatePreferences(expiring.ID, Preferences{})
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	store, _ := newTestStore(time.Hour)
	sess := store.Create()

	sess.Preferences.ExportFormat = "csv"
	got, err := store.Get(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "xlsx", got.Preferences.ExportFormat)
}

func TestStore_Concurrent(t *testing.T) {
	store := NewStore(time.Hour, Preferences{}, testutil.DiscardLogger())

	var wg sync.WaitGroup
	ids := make(chan string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess := store.Create()
			_, _ = store.UpdatePreferences(sess.ID, Preferences{ExportFormat: "csv"})
			ids <- sess.ID
		}()
	}
	wg.Wait()
	close(ids)

	for id := range ids {
		got, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, "csv", got.Preferences.ExportFormat)
	}
	assert.Equal(t, 50, store.Len())
}
