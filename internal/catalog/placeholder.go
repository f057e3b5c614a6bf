package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultPlaceholderURL = "https://jsonplaceholder.typicode.com"

// Person is one JSONPlaceholder user flattened to member fields.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	City  string `json:"city"`
}

type PlaceholderClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewPlaceholderClient(baseURL string) *PlaceholderClient {
	if baseURL == "" {
		baseURL = defaultPlaceholderURL
	}
	return &PlaceholderClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *PlaceholderClient) Users(ctx context.Context) ([]Person, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/users", nil)
	if err != nil {
		return nil, fmt.Errorf("placeholder: build request: %w", err)
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("placeholder: fetch users: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("placeholder: unexpected status %s", res.Status)
	}

	var raw []struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Address struct {
			City string `json:"city"`
		} `json:"address"`
	}
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("placeholder: decode users: %w", err)
	}

	people := make([]Person, 0, len(raw))
	for _, u := range raw {
		p := Person{
			Name:  strings.TrimSpace(u.Name),
			Email: strings.TrimSpace(u.Email),
			City:  strings.TrimSpace(u.Address.City),
		}
		if p.Name == "" || p.Email == "" || p.City == "" {
			continue
		}
		people = append(people, p)
	}
	return people, nil
}
