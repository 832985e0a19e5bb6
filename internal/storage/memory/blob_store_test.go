package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutObjectStoresCopy(t *testing.T) {
	store := New()

	data := []byte("screenshot")
	uri, err := store.PutObject(context.Background(), "a/b.png", "image/png", data)
	require.NoError(t, err)
	assert.Equal(t, "mem://a/b.png", uri)

	data[0] = 'X'
	obj, ok := store.Get("a/b.png")
	require.True(t, ok)
	assert.Equal(t, []byte("screenshot"), obj.Data)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, 1, store.Len())
}

func TestPutObjectRequiresPath(t *testing.T) {
	store := New()
	_, err := store.PutObject(context.Background(), "  ", "image/png", nil)
	assert.Error(t, err)
}
