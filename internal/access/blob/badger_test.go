// SPDX-License-Identifier: MIT

package blob

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...StoreOption) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.CreateContainer(ctx, "sheba"))

	payload := []byte("raw instrument bytes")
	require.NoError(t, s.Put(ctx, "sheba", "mmcr/raw/1997/D1997-11-04T00-00-00.mrg.ncdf", payload))

	got, err := s.Get(ctx, "sheba", "mmcr/raw/1997/D1997-11-04T00-00-00.mrg.ncdf")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStoreCreateContainerTwice(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.CreateContainer(ctx, "eureka"))
	assert.NoError(t, s.CreateContainer(ctx, "eureka"))
}

func TestStoreMissingContainer(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	err := s.Put(ctx, "nowhere", "x.ncdf", []byte("x"))
	assert.ErrorIs(t, err, ErrNoContainer)

	_, err = s.Get(ctx, "nowhere", "x.ncdf")
	assert.ErrorIs(t, err, ErrNoContainer)

	_, err = s.List(ctx, "nowhere", "")
	assert.ErrorIs(t, err, ErrNoContainer)
}

func TestStoreMissingBlob(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.CreateContainer(ctx, "sheba"))
	_, err := s.Get(ctx, "sheba", "absent.ncdf")
	assert.ErrorIs(t, err, ErrNoBlob)
}

func TestStoreListSortedWithPrefix(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.CreateContainer(ctx, "sheba"))
	for _, name := range []string{
		"mmcr/raw/1997/D1997-11-05T00-00-00.mrg.ncdf",
		"mmcr/raw/1997/D1997-11-04T00-00-00.mrg.ncdf",
		"dabul/raw/1997/D1997-11-04T00-31-00.BHAR.ncdf",
	} {
		require.NoError(t, s.Put(ctx, "sheba", name, []byte(name)))
	}

	all, err := s.List(ctx, "sheba", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"dabul/raw/1997/D1997-11-04T00-31-00.BHAR.ncdf",
		"mmcr/raw/1997/D1997-11-04T00-00-00.mrg.ncdf",
		"mmcr/raw/1997/D1997-11-05T00-00-00.mrg.ncdf",
	}, all)

	mmcr, err := s.List(ctx, "sheba", "mmcr/raw/1997/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"mmcr/raw/1997/D1997-11-04T00-00-00.mrg.ncdf",
		"mmcr/raw/1997/D1997-11-05T00-00-00.mrg.ncdf",
	}, mmcr)
}

func TestStoreListingCacheInvalidatedOnPut(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithListingTTL(time.Hour))

	require.NoError(t, s.CreateContainer(ctx, "sheba"))
	require.NoError(t, s.Put(ctx, "sheba", "a.ncdf", []byte("a")))

	first, err := s.List(ctx, "sheba", "")
	require.NoError(t, err)
	require.Equal(t, []string{"a.ncdf"}, first)

	// A write must not leave the cached listing stale.
	require.NoError(t, s.Put(ctx, "sheba", "b.ncdf", []byte("b")))

	second, err := s.List(ctx, "sheba", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ncdf", "b.ncdf"}, second)
}

// listingLookups reads the current lookup counter for one result label.
func listingLookups(t *testing.T, result string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "arcobs_listing_cache_lookups_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "result" && l.GetValue() == result {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestStoreListRecordsCacheLookups(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithListingTTL(time.Hour))

	require.NoError(t, s.CreateContainer(ctx, "sheba"))
	require.NoError(t, s.Put(ctx, "sheba", "a.ncdf", []byte("a")))

	misses := listingLookups(t, "miss")
	hits := listingLookups(t, "hit")

	_, err := s.List(ctx, "sheba", "")
	require.NoError(t, err)
	assert.Equal(t, misses+1, listingLookups(t, "miss"))

	_, err = s.List(ctx, "sheba", "")
	require.NoError(t, err)
	assert.Equal(t, hits+1, listingLookups(t, "hit"))
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.CreateContainer(ctx, "sheba"))
	require.NoError(t, s.Put(ctx, "sheba", "a.ncdf", []byte("a")))
	require.NoError(t, s.Delete(ctx, "sheba", "a.ncdf"))

	_, err := s.Get(ctx, "sheba", "a.ncdf")
	assert.ErrorIs(t, err, ErrNoBlob)

	// Deleting again is a no-op.
	assert.NoError(t, s.Delete(ctx, "sheba", "a.ncdf"))
}
