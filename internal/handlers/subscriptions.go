package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/repo"
)

type SubscriptionHandler struct {
	Repo     *repo.GormRepo
	Producer *events.Producer
}

func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
	subs, err := h.Repo.ListSubscriptions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *SubscriptionHandler) ListMemberSubscriptions(c echo.Context) error {
	memberID, err := parseID(c, "memberId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid member id")
	}

	subs, err := h.Repo.ListMemberSubscriptions(c.Request().Context(), memberID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *SubscriptionHandler) ListByMovie(c echo.Context) error {
	movieID, err := parseID(c, "movieId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}

	subs, err := h.Repo.ListSubscriptionsByMovie(c.Request().Context(), movieID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, subs)
}

func (h *SubscriptionHandler) CreateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		MemberID uint `json:"memberId"`
		Movies   []struct {
			MovieID uint       `json:"movieId"`
			Date    *time.Time `json:"date"`
		} `json:"movies"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.MemberID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "memberId is required")
	}

	sub := models.Subscription{MemberID: req.MemberID}
	for _, m := range req.Movies {
		date := time.Now()
		if m.Date != nil {
			date = *m.Date
		}
		sub.Movies = append(sub.Movies, models.SubscriptionMovie{MovieID: m.MovieID, Date: date})
	}

	if err := h.Repo.CreateSubscription(ctx, &sub); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	created, err := h.Repo.GetSubscriptionByID(ctx, sub.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicSubscriptionEvents, fmt.Sprint(sub.ID), map[string]any{
		"type":           "subscription_created",
		"subscriptionID": sub.ID,
		"memberID":       sub.MemberID,
	})

	return c.JSON(http.StatusCreated, created)
}

// AddMovie appends one movie entry to an existing subscription.
func (h *SubscriptionHandler) AddMovie(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription id")
	}

	var req struct {
		MovieID uint       `json:"movieId"`
		Date    *time.Time `json:"date"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.MovieID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "movieId is required")
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	sub, err := h.Repo.AddSubscriptionMovie(ctx, id, req.MovieID, date)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicSubscriptionEvents, fmt.Sprint(id), map[string]any{
		"type":           "subscription_movie_added",
		"subscriptionID": id,
		"movieID":        req.MovieID,
	})

	return c.JSON(http.StatusOK, sub)
}

func (h *SubscriptionHandler) RemoveMovie(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription id")
	}

	var req struct {
		MovieID uint `json:"movieId"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.MovieID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "movieId is required")
	}

	return h.removeMovie(c, ctx, id, req.MovieID)
}

// DeleteMovieEntry is the path-parameter variant of RemoveMovie.
func (h *SubscriptionHandler) DeleteMovieEntry(c echo.Context) error {
	subID, err := parseID(c, "subId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid subscription id")
	}
	movieID, err := parseID(c, "movieId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid movie id")
	}
	return h.removeMovie(c, c.Request().Context(), subID, movieID)
}

func (h *SubscriptionHandler) removeMovie(c echo.Context, ctx context.Context, subID, movieID uint) error {
	sub, err := h.Repo.RemoveSubscriptionMovie(ctx, subID, movieID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Subscription not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	publish(c, h.Producer, events.TopicSubscriptionEvents, fmt.Sprint(subID), map[string]any{
		"type":           "subscription_movie_removed",
		"subscriptionID": subID,
		"movieID":        movieID,
	})

	return c.JSON(http.StatusOK, sub)
}
