package embeddings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/govscout/gov-index/internal/constants"
)

const requestTimeout = 60 * time.Second

// ApiEmbedder calls an HTTP embedding service. Texts are sent in fixed-size
// batches to bound the service's peak memory; batches run serially and the
// output preserves input order. Responses are L2-normalized so a dot
// product equals cosine similarity.
type ApiEmbedder struct {
	url       string
	dim       int
	batchSize int
	client    *http.Client
}

func NewApi(url string) *ApiEmbedder {
	return &ApiEmbedder{
		url:       url,
		dim:       constants.VectorDimension,
		batchSize: constants.EmbedBatchSize,
		client:    &http.Client{Timeout: requestTimeout},
	}
}

func (e *ApiEmbedder) ModelName() string { return "api" }

func (e *ApiEmbedder) Dimension() int { return e.dim }

func (e *ApiEmbedder) EmbedTexts(texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedRequest(texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(vecs) != end-start {
			return nil, fmt.Errorf("embed service returned %d vectors for %d texts", len(vecs), end-start)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *ApiEmbedder) EmbedQuery(text string) ([]float32, error) {
	vecs, err := e.embedRequest([]string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed service returned %d vectors for 1 text", len(vecs))
	}
	return vecs[0], nil
}

type embedRequest struct {
	Sentences []string `json:"sentences"`
}

func (e *ApiEmbedder) embedRequest(texts []string) ([][]float32, error) {
	body, err := json.Marshal(&embedRequest{Sentences: texts})
	if err != nil {
		return nil, err
	}
	response, err := e.client.Post(e.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed request: %w", err)
	}
	defer func() { _ = response.Body.Close() }()
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed service status %d", response.StatusCode)
	}
	var vecs [][]float32
	if err := json.NewDecoder(response.Body).Decode(&vecs); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	for i, v := range vecs {
		if len(v) != e.dim {
			return nil, fmt.Errorf("%w: embed service returned dimension %d, want %d",
				ErrDimensionMismatch, len(v), e.dim)
		}
		Normalize(vecs[i])
	}
	return vecs, nil
}
