package embeddings_test

import (
	"testing"

	"github.com/govscout/gov-index/internal/embeddings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedder_Deterministic(t *testing.T) {
	e := embeddings.NewLocal(8)
	v1, err := e.EmbedQuery("hello")
	require.NoError(t, err)
	v2, err := e.EmbedQuery("hello")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 8)
}

func TestLocalEmbedder_Normalized(t *testing.T) {
	e := embeddings.NewLocal(16)
	v, err := e.EmbedQuery("governance")
	require.NoError(t, err)
	sim, err := embeddings.Similarity(v, v)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-5)

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestLocalEmbedder_BatchOrder(t *testing.T) {
	e := embeddings.NewLocal(8)
	texts := []string{"a", "b", "c"}
	vecs, err := e.EmbedTexts(texts)
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for i, text := range texts {
		single, err := e.EmbedQuery(text)
		require.NoError(t, err)
		assert.Equal(t, single, vecs[i])
	}
}
