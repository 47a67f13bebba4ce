package providers

import (
	"context"
	"net/http"
	"time"
)

type authenticityClient struct {
	baseURL    string
	httpClient *http.Client
}

func newAuthenticityClient(baseURL string, timeout time.Duration) *authenticityClient {
	return &authenticityClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *authenticityClient) Classify(ctx context.Context, image []byte) (Classification, error) {
	var result struct {
		ConfidenceReal float64 `json:"confidence_real"`
	}
	if err := postImage(ctx, c.httpClient, c.baseURL+"/classify", image, nil, &result); err != nil {
		return Classification{}, err
	}
	return Classification{ConfidenceReal: result.ConfidenceReal}, nil
}
