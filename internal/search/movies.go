package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/aryabov/movify/internal/models"
)

// MovieIndex wraps the movies index. A nil client makes every call a no-op
// so indexing stays best-effort when Elasticsearch is not configured.
type MovieIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewMovieIndex(es *elasticsearch.Client, index string) *MovieIndex {
	return &MovieIndex{ES: es, Index: index}
}

func (m *MovieIndex) Search(ctx context.Context, query string, from, size int) (int64, []models.Movie, error) {
	if m == nil || m.ES == nil {
		return 0, nil, fmt.Errorf("search: elasticsearch not configured")
	}

	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "genres"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := m.ES.Search(
		m.ES.Search.WithContext(ctx),
		m.ES.Search.WithIndex(m.Index),
		m.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Movie `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	movies := make([]models.Movie, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		movies[i] = hit.Source
	}
	return r.Hits.Total.Value, movies, nil
}

func (m *MovieIndex) IndexMovie(ctx context.Context, movie *models.Movie) error {
	if m == nil || m.ES == nil {
		return nil
	}
	data, err := json.Marshal(movie)
	if err != nil {
		return fmt.Errorf("search: marshal movie: %w", err)
	}
	res, err := m.ES.Index(
		m.Index,
		bytes.NewReader(data),
		m.ES.Index.WithDocumentID(strconv.FormatUint(uint64(movie.ID), 10)),
		m.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index movie: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index movie: %s", res.Status())
	}
	return nil
}

func (m *MovieIndex) DeleteMovie(ctx context.Context, id uint) error {
	if m == nil || m.ES == nil {
		return nil
	}
	res, err := m.ES.Delete(
		m.Index,
		strconv.FormatUint(uint64(id), 10),
		m.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: delete movie: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete movie: %s", res.Status())
	}
	return nil
}
