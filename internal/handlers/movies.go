package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/catalog"
	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/logging"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/repo"
	"github.com/aryabov/movify/internal/search"
)

type MovieHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
	Index    *search.MovieIndex
	Catalog  *catalog.TVMazeClient
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}

// index mirrors the movie into Elasticsearch best-effort.
func (h *MovieHandler) index(c echo.Context, m *models.Movie) {
	if err := h.Index.IndexMovie(c.Request().Context(), m); err != nil {
		logging.FromContext(c.Request().Context()).Error("movie index failed", "movie_id", m.ID, "error", err)
	}
}

func (h *MovieHandler) ListMovies(c echo.Context) error {
	movies, err := h.Repo.ListMovies(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, movies)
}

func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}

	movie, err := h.Repo.GetMovieByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Movie not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) CreateMovie(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Name      string   `json:"name"`
		Genres    []string `json:"genres"`
		Image     string   `json:"image"`
		Premiered string   `json:"premiered"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Field 'name' is required")
	}

	movie := models.Movie{
		Name:      name,
		Genres:    normalizeGenres(req.Genres),
		Image:     strings.TrimSpace(req.Image),
		Premiered: strings.TrimSpace(req.Premiered),
	}
	if err := h.Repo.CreateMovie(ctx, &movie); err != nil {
		if errors.Is(err, repo.ErrMovieExists) {
			return echo.NewHTTPError(http.StatusConflict, "Movie already exists")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	h.index(c, &movie)
	publish(c, h.Producer, events.TopicMovieEvents, fmt.Sprint(movie.ID), map[string]any{
		"type":    "movie_created",
		"movieID": movie.ID,
		"name":    movie.Name,
	})

	return c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}

	var req struct {
		Name      *string   `json:"name"`
		Genres    *[]string `json:"genres"`
		Image     *string   `json:"image"`
		Premiered *string   `json:"premiered"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Genres != nil {
		fields["genres"] = normalizeGenres(*req.Genres)
	}
	if req.Image != nil {
		fields["image"] = *req.Image
	}
	if req.Premiered != nil {
		fields["premiered"] = *req.Premiered
	}
	if len(fields) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "No valid fields to update")
	}

	movie, err := h.Repo.UpdateMovieFields(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Movie not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	h.index(c, movie)
	publish(c, h.Producer, events.TopicMovieEvents, fmt.Sprint(movie.ID), map[string]any{
		"type":    "movie_updated",
		"movieID": movie.ID,
		"name":    movie.Name,
	})

	return c.JSON(http.StatusOK, movie)
}

func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}

	if err := h.Repo.DeleteMovie(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Movie not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if err := h.Index.DeleteMovie(ctx, id); err != nil {
		logging.FromContext(ctx).Error("movie unindex failed", "movie_id", id, "error", err)
	}
	publish(c, h.Producer, events.TopicMovieEvents, fmt.Sprint(id), map[string]any{
		"type":    "movie_deleted",
		"movieID": id,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Movie deleted successfully"})
}

// SyncMovies pulls one TVMaze page and stores the shows that are not
// already present.
func (h *MovieHandler) SyncMovies(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 0)
	shows, err := h.Catalog.Shows(ctx, page)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "catalog fetch failed")
	}

	created := []models.Movie{}
	for _, s := range shows {
		movie := models.Movie{
			Name:      s.Name,
			Genres:    normalizeGenres(s.Genres),
			Image:     s.Image,
			Premiered: s.Premiered,
		}
		if err := h.Repo.CreateMovie(ctx, &movie); err != nil {
			if errors.Is(err, repo.ErrMovieExists) {
				continue
			}
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
		}
		h.index(c, &movie)
		created = append(created, movie)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":      "Movies synchronized successfully",
		"createdCount": len(created),
		"created":      created,
	})
}

func (h *MovieHandler) SearchMovies(c echo.Context) error {
	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter 'q' is required")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), 10)
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}
	from := (page - 1) * size

	total, movies, err := h.Index.Search(c.Request().Context(), q, from, size)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"total": total, "movies": movies})
}
