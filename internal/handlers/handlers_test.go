package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aryabov/movify/internal/catalog"
	"github.com/aryabov/movify/internal/events"
	"github.com/aryabov/movify/internal/handlers"
	"github.com/aryabov/movify/internal/hash"
	authmw "github.com/aryabov/movify/internal/middleware/auth"
	"github.com/aryabov/movify/internal/models"
	"github.com/aryabov/movify/internal/perms"
	"github.com/aryabov/movify/internal/repo"
	"github.com/aryabov/movify/internal/search"
	"github.com/aryabov/movify/internal/service"
	httpserver "github.com/aryabov/movify/internal/transport/http"
)

type testEnv struct {
	T    *testing.T
	E    *echo.Echo
	DB   *gorm.DB
	Repo *repo.GormRepo
	Svc  *service.AuthService
	Deps *httpserver.Deps
}

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Member{},
		&models.Subscription{},
		&models.SubscriptionMovie{},
	))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := initTestDB(t)
	r := repo.New(db)
	svc := &service.AuthService{
		Repo:      r,
		Perms:     perms.Default(),
		JWTSecret: []byte("test-jwt-secret"),
		TokenTTL:  2 * time.Hour,
	}

	prod := events.NewProducer(nil)
	deps := &httpserver.Deps{
		Guard:               authmw.NewGuard(svc),
		AuthHandler:         &handlers.AuthHandler{Svc: svc, Producer: prod},
		UserHandler:         &handlers.UserHandler{Svc: svc, Repo: r, Producer: prod},
		MovieHandler:        &handlers.MovieHandler{Repo: r, Producer: prod, Index: search.NewMovieIndex(nil, "movies"), Catalog: catalog.NewTVMazeClient("")},
		MemberHandler:       &handlers.MemberHandler{Repo: r, Producer: prod, Catalog: catalog.NewPlaceholderClient("")},
		SubscriptionHandler: &handlers.SubscriptionHandler{Repo: r, Producer: prod},
	}

	e := echo.New()
	httpserver.Register(e, deps)

	return &testEnv{T: t, E: e, DB: db, Repo: r, Svc: svc, Deps: deps}
}

func (env *testEnv) createUser(username, password, role string) *models.User {
	env.T.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)

	user := models.User{
		Username:           username,
		PasswordHash:       pwHash,
		Role:               role,
		MustChangePassword: true,
		PasswordVersion:    1,
	}
	require.NoError(env.T, env.Repo.CreateUser(context.Background(), &user))
	return &user
}

func (env *testEnv) token(username, password string) string {
	env.T.Helper()

	res, err := env.Svc.Login(context.Background(), username, password)
	require.NoError(env.T, err)
	return res.AccessToken
}

func (env *testEnv) doJSON(method, path string, body any, token string) *httptest.ResponseRecorder {
	env.T.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}
