package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmorales/gastosbot/internal/common"
)

func TestLocalStore(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("stores under per-user directory", func(t *testing.T) {
		ref, err := store.Store(ctx, 42, []byte("jpeg-bytes"))
		require.NoError(t, err)

		assert.Equal(t, "42", filepath.Base(filepath.Dir(ref)))
		assert.Equal(t, ".jpg", filepath.Ext(ref))

		data, err := os.ReadFile(ref)
		require.NoError(t, err)
		assert.Equal(t, []byte("jpeg-bytes"), data)
	})

	t.Run("references are unique", func(t *testing.T) {
		a, err := store.Store(ctx, 1, []byte("a"))
		require.NoError(t, err)
		b, err := store.Store(ctx, 1, []byte("b"))
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		ref, err := store.Store(ctx, 7, []byte("photo"))
		require.NoError(t, err)

		require.NoError(t, store.Delete(ctx, ref))
		assert.NoFileExists(t, ref)

		assert.ErrorIs(t, store.Delete(ctx, ref), common.ErrNotFound)
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := store.Store(ctx, 0, []byte("photo"))
		assert.Error(t, err)

		_, err = store.Store(ctx, 1, nil)
		assert.Error(t, err)
	})
}

func TestNewLocalRequiresDir(t *testing.T) {
	_, err := NewLocal("")
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestParseGCSRef(t *testing.T) {
	tests := []struct {
		name       string
		ref        string
		wantBucket string
		wantObject string
		wantErr    bool
	}{
		{
			name:       "valid reference",
			ref:        "gs://receipts-bucket/receipts/42/abc.jpg",
			wantBucket: "receipts-bucket",
			wantObject: "receipts/42/abc.jpg",
		},
		{"missing scheme", "receipts-bucket/abc.jpg", "", "", true},
		{"no object path", "gs://receipts-bucket", "", "", true},
		{"empty object", "gs://receipts-bucket/", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, object, err := parseGCSRef(tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantObject, object)
		})
	}
}
