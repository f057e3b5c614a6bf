package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aryabov/movify/internal/handlers"
	authmw "github.com/aryabov/movify/internal/middleware/auth"
	"github.com/aryabov/movify/internal/perms"
)

type Deps struct {
	Guard               *authmw.Guard
	AuthHandler         *handlers.AuthHandler
	UserHandler         *handlers.UserHandler
	MovieHandler        *handlers.MovieHandler
	MemberHandler       *handlers.MemberHandler
	SubscriptionHandler *handlers.SubscriptionHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	g := d.Guard
	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/register", d.AuthHandler.Register, g.RequireAuth, g.RequirePermission(perms.ManageUsers))
	auth.PUT("/change-password", d.AuthHandler.ChangePassword, g.RequireAuth)

	users := api.Group("/users", g.RequireAuth, g.RequirePermission(perms.ManageUsers))
	users.GET("", d.UserHandler.ListUsers)
	users.GET("/:id", d.UserHandler.GetUser)
	users.PUT("/:id", d.UserHandler.UpdateRole)
	users.PUT("/edit/:id", d.UserHandler.EditUser)
	users.DELETE("/:id", d.UserHandler.DeleteUser)

	movies := api.Group("/movies", g.RequireAuth)
	movies.GET("", d.MovieHandler.ListMovies, g.RequirePermission(perms.ViewMovies))
	movies.GET("/search", d.MovieHandler.SearchMovies, g.RequirePermission(perms.ViewMovies))
	movies.GET("/:id", d.MovieHandler.GetMovie, g.RequirePermission(perms.ViewMovies))
	movies.POST("", d.MovieHandler.CreateMovie, g.RequirePermission(perms.CreateMovies))
	movies.PUT("/:id", d.MovieHandler.UpdateMovie, g.RequirePermission(perms.CreateMovies))
	movies.DELETE("/:id", d.MovieHandler.DeleteMovie, g.RequirePermission(perms.DeleteMovies))
	movies.POST("/sync", d.MovieHandler.SyncMovies, g.RequirePermission(perms.SyncMembers))

	members := api.Group("/members", g.RequireAuth)
	members.GET("", d.MemberHandler.ListMembers, g.RequirePermission(perms.ViewMembers))
	members.GET("/:id", d.MemberHandler.GetMember, g.RequirePermission(perms.HandleMembers))
	members.POST("", d.MemberHandler.CreateMember, g.RequirePermission(perms.HandleMembers))
	members.PUT("/:id", d.MemberHandler.UpdateMember, g.RequirePermission(perms.HandleMembers))
	members.DELETE("/:id", d.MemberHandler.DeleteMember, g.RequirePermission(perms.HandleMembers))
	members.POST("/sync", d.MemberHandler.SyncMembers, g.RequirePermission(perms.SyncMembers))

	subs := api.Group("/subscriptions", g.RequireAuth)
	subs.GET("", d.SubscriptionHandler.ListSubscriptions, g.RequirePermission(perms.ViewSubscriptions))
	subs.GET("/by-movie/:movieId", d.SubscriptionHandler.ListByMovie, g.RequirePermission(perms.ViewSubscriptions))
	subs.GET("/:memberId", d.SubscriptionHandler.ListMemberSubscriptions, g.RequirePermission(perms.ViewSubscriptions))
	subs.POST("", d.SubscriptionHandler.CreateSubscription, g.RequirePermission(perms.ManageSubscriptions))
	subs.PUT("/remove-movie/:id", d.SubscriptionHandler.RemoveMovie, g.RequirePermission(perms.ManageSubscriptions))
	subs.PUT("/:id", d.SubscriptionHandler.AddMovie, g.RequirePermission(perms.ManageSubscriptions))
	subs.DELETE("/:subId/movies/:movieId", d.SubscriptionHandler.DeleteMovieEntry, g.RequirePermission(perms.ManageSubscriptions))
}
