// SPDX-License-Identifier: MIT

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rinman24/arcobs/internal/access/blob"
)

// newStore opens a badger-backed store. Callers defer Close themselves
// so the leak check at the top of each test sees the store torn down.
func newStore(t *testing.T) *blob.Store {
	t.Helper()
	store, err := blob.Open(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestWatcherIngestsDroppedFile(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newStore(t)
	defer func() { require.NoError(t, store.Close()) }()
	inbox := t.TempDir()
	w, err := New(inbox, store, []Route{
		{Observatory: "sheba", Instrument: "mmcr", Format: "mmddhhmm", Year: 1997},
	}, WithSettle(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	path := filepath.Join(inbox, "sheba", "mmcr", "11040000.mmcr.ncdf")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o600))

	require.Eventually(t, func() bool {
		names, err := store.List(ctx, "sheba", "mmcr/raw/1997/")
		return err == nil && len(names) == 1
	}, 5*time.Second, 10*time.Millisecond)

	names, err := store.List(ctx, "sheba", "mmcr/raw/1997/")
	require.NoError(t, err)
	require.Equal(t, []string{"mmcr/raw/1997/D1997-11-04T00-00-00.mmcr.ncdf"}, names)

	data, err := store.Get(ctx, "sheba", names[0])
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), data)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))

	cancel()
	require.NoError(t, w.Close())
}

func TestWatcherSweepsPreexistingFiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newStore(t)
	defer func() { require.NoError(t, store.Close()) }()
	inbox := t.TempDir()
	dir := filepath.Join(inbox, "utqiagvik", "kazr")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "kazr.D2014-08-28T06-30-00.ncdf"), []byte("x"), 0o600))

	w, err := New(inbox, store, []Route{
		{Observatory: "utqiagvik", Instrument: "kazr"},
	}, WithSettle(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	require.Eventually(t, func() bool {
		names, err := store.List(ctx, "utqiagvik", "kazr/raw/2014/")
		return err == nil && len(names) == 1
	}, 5*time.Second, 10*time.Millisecond)

	names, err := store.List(ctx, "utqiagvik", "kazr/raw/2014/")
	require.NoError(t, err)
	require.Equal(t, []string{"kazr/raw/2014/kazr.D2014-08-28T06-30-00.ncdf"}, names)

	cancel()
	require.NoError(t, w.Close())
}

func TestWatcherSkipsUnrecognisedNames(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	store := newStore(t)
	defer func() { require.NoError(t, store.Close()) }()
	inbox := t.TempDir()
	w, err := New(inbox, store, []Route{
		{Observatory: "sheba", Instrument: "dabul", Format: "mmddhhmm", Year: 1997},
	}, WithSettle(20*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	path := filepath.Join(inbox, "sheba", "dabul", "readme.txt")
	require.NoError(t, os.WriteFile(path, []byte("not data"), 0o600))

	// Skipped files stay in the inbox.
	require.Never(t, func() bool {
		_, err := os.Stat(path)
		return err != nil
	}, 300*time.Millisecond, 25*time.Millisecond)

	cancel()
	require.NoError(t, w.Close())
}

func TestWatcherRequiresRoutes(t *testing.T) {
	store := newStore(t)
	defer func() { require.NoError(t, store.Close()) }()
	_, err := New(t.TempDir(), store, nil)
	require.Error(t, err)
}
