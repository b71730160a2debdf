package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type ShoeInfo struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Brand string `json:"brand"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

// CatalogClient fetches shoe details from the catalog service. The cart only
// needs name, brand, price and image; everything else about the catalog is
// outside this service.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *CatalogClient) GetShoeByID(ctx context.Context, id uint64) (*ShoeInfo, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/shoes/%d", c.baseURL, id), nil)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog service returned status %d", resp.StatusCode)
	}

	var s ShoeInfo
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
