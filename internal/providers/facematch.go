package providers

import (
	"context"
	"math"
	"net/http"
	"time"
)

type faceClient struct {
	baseURL    string
	httpClient *http.Client
}

func newFaceClient(baseURL string, timeout time.Duration) *faceClient {
	return &faceClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *faceClient) ExtractEmbedding(ctx context.Context, image []byte) ([]float64, error) {
	var result struct {
		Faces []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"faces"`
	}
	if err := postImage(ctx, c.httpClient, c.baseURL+"/embed", image, nil, &result); err != nil {
		return nil, err
	}
	if len(result.Faces) == 0 {
		return nil, ErrNoFaceFound
	}
	// The largest face is returned first by the embedding service.
	return result.Faces[0].Embedding, nil
}

// Similarity computes the cosine similarity of two embeddings.
// Mismatched or zero-length vectors score 0.
func (c *faceClient) Similarity(a, b []float64) float64 {
	return CosineSimilarity(a, b)
}

// CosineSimilarity is exported so fakes and tests score embeddings the
// same way the client does.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
