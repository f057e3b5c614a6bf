// Package catalog holds clients for the external catalogs the sync
// endpoints pull from.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultTVMazeURL = "https://api.tvmaze.com"

// Show is one TVMaze show entry, reduced to the fields Movify keeps.
type Show struct {
	Name      string   `json:"name"`
	Genres    []string `json:"genres"`
	Image     string   `json:"image"`
	Premiered string   `json:"premiered"`
}

type TVMazeClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewTVMazeClient(baseURL string) *TVMazeClient {
	if baseURL == "" {
		baseURL = defaultTVMazeURL
	}
	return &TVMazeClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *TVMazeClient) Shows(ctx context.Context, page int) ([]Show, error) {
	url := fmt.Sprintf("%s/shows?page=%d", c.BaseURL, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tvmaze: build request: %w", err)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tvmaze: fetch shows: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tvmaze: unexpected status %s", res.Status)
	}

	var raw []struct {
		Name   string   `json:"name"`
		Genres []string `json:"genres"`
		Image  *struct {
			Medium   string `json:"medium"`
			Original string `json:"original"`
		} `json:"image"`
		Premiered string `json:"premiered"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("tvmaze: decode shows: %w", err)
	}

	shows := make([]Show, 0, len(raw))
	for _, s := range raw {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		image := ""
		if s.Image != nil {
			image = s.Image.Original
			if image == "" {
				image = s.Image.Medium
			}
		}
		shows = append(shows, Show{
			Name:      name,
			Genres:    s.Genres,
			Image:     image,
			Premiered: s.Premiered,
		})
	}
	return shows, nil
}
