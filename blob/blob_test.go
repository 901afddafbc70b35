package blob

import (
	"strings"
	"testing"

	"atomgram-service/errors"

	"github.com/stretchr/testify/require"
)

// Minimal valid PNG header, enough for content sniffing.
var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestValidateSize(t *testing.T) {
	limits := Limits{MaxSize: 4}

	_, err := limits.Validate([]byte("12345"))
	require.ErrorIs(t, err, errors.ErrFileTooLarge)

	_, err = limits.Validate([]byte("1234"))
	require.NoError(t, err)
}

func TestValidateMimePrefix(t *testing.T) {
	limits := Limits{AllowedMime: []string{"image/"}}

	mime, err := limits.Validate(pngBytes)
	require.NoError(t, err)
	require.Equal(t, "image/png", mime)

	_, err = limits.Validate([]byte("plain text, not an image"))
	require.ErrorIs(t, err, errors.ErrInvalidFileType)
}

func TestValidateEmptyAllowListAcceptsAnything(t *testing.T) {
	limits := Limits{}

	mime, err := limits.Validate([]byte("anything at all"))
	require.NoError(t, err)
	require.NotEmpty(t, mime)
}

func TestPutGetDelete(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	locator, err := store.Put([]byte("hello"), "notes.txt")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(locator, "/uploads/"))
	require.True(t, strings.HasSuffix(locator, "_notes.txt"))

	data, err := store.Get(locator)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), data)

	require.True(t, store.Delete(locator))
	require.False(t, store.Delete(locator))

	_, err = store.Get(locator)
	require.ErrorIs(t, err, errors.ErrMessageNotFound)
}

func TestPutSanitizesHostileNames(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	locator, err := store.Put([]byte("x"), "../../etc/passwd")
	require.NoError(t, err)
	require.NotContains(t, locator, "..")

	data, err := store.Get(locator)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), data)
}

func TestSweepRemovesOnlyOrphans(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	kept, err := store.Put([]byte("keep"), "keep.txt")
	require.NoError(t, err)
	orphanA, err := store.Put([]byte("a"), "a.txt")
	require.NoError(t, err)
	orphanB, err := store.Put([]byte("b"), "b.txt")
	require.NoError(t, err)

	removed, err := store.Sweep(map[string]struct{}{kept: {}})
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	_, err = store.Get(kept)
	require.NoError(t, err)
	_, err = store.Get(orphanA)
	require.Error(t, err)
	_, err = store.Get(orphanB)
	require.Error(t, err)
}
