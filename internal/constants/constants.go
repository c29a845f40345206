package constants

const (
	// DefaultSubgraphURL is the governance subgraph endpoint queried by sync.
	DefaultSubgraphURL = "https://api.goldsky.com/api/public/project_nouns/subgraphs/nouns/prod/gn"

	// DefaultEmbedURL is the local embedding service endpoint.
	DefaultEmbedURL = "http://localhost:8000/embed"

	// VectorDimension is the embedding dimension produced by the model.
	// All stored vectors and query vectors must match it.
	VectorDimension = 384

	// EmbedBatchSize bounds peak memory during embedding generation.
	EmbedBatchSize = 8

	// ChunkMaxSize and ChunkOverlap control proposal text chunking.
	ChunkMaxSize = 500
	ChunkOverlap = 50

	// SyncPageSize is the page size used by full sync pagination.
	SyncPageSize = 50

	// SearchDefaultLimit, SearchMaxLimit and SearchDefaultThreshold
	// control semantic search result shaping.
	SearchDefaultLimit     = 5
	SearchMaxLimit         = 20
	SearchDefaultThreshold = 0.3
)
