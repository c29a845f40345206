package embeddings

// Embedder maps text to fixed-dimension normalized vectors. Implementations
// are constructed once and shared for the life of the process.
type Embedder interface {
	EmbedTexts(texts []string) ([][]float32, error)
	EmbedQuery(text string) ([]float32, error)
	Dimension() int
	ModelName() string
}
