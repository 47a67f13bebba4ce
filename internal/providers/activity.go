package providers

import (
	"context"
	"net/http"
	"time"
)

type activityClient struct {
	baseURL    string
	httpClient *http.Client
}

func newActivityClient(baseURL string, timeout time.Duration) *activityClient {
	return &activityClient{
		baseURL:    baseURL,
		httpClient: newHTTPClient(timeout),
	}
}

func (c *activityClient) Detect(ctx context.Context, image []byte, detectorRef string) ([]Detection, error) {
	var result struct {
		Detections []struct {
			EntityClass string  `json:"entity_class"`
			Confidence  float64 `json:"confidence"`
		} `json:"detections"`
	}
	fields := map[string]string{"model": detectorRef}
	if err := postImage(ctx, c.httpClient, c.baseURL+"/detect", image, fields, &result); err != nil {
		return nil, err
	}

	detections := make([]Detection, 0, len(result.Detections))
	for _, d := range result.Detections {
		detections = append(detections, Detection{
			EntityClass: d.EntityClass,
			Confidence:  d.Confidence,
		})
	}
	return detections, nil
}
