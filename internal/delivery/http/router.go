package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"talkmaster/internal/delivery/http/controllers"
	"talkmaster/internal/delivery/http/middleware"
	"talkmaster/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Auth     *controllers.AuthController
	Talks    *controllers.TalkController
	Planning *controllers.PlanningController
	Rooms    *controllers.RoomController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /api/auth/register", c.Auth.Register)
	mux.HandleFunc("POST /api/auth/token", c.Auth.Login)
	mux.HandleFunc("GET /api/auth/me", auth(c.Auth.Me))
	mux.HandleFunc("GET /api/roles", c.Auth.ListRoles)

	// Rooms
	mux.HandleFunc("GET /api/rooms", c.Rooms.ListRooms)
	mux.HandleFunc("GET /api/rooms/{roomID}", c.Rooms.GetRoom)
	mux.HandleFunc("POST /api/rooms", auth(c.Rooms.CreateRoom))

	// Talks
	mux.HandleFunc("GET /api/talks", auth(c.Talks.ListTalks))
	mux.HandleFunc("GET /api/talks/me", auth(c.Talks.ListMyTalks))
	mux.HandleFunc("POST /api/talks", auth(c.Talks.SubmitTalk))
	mux.HandleFunc("GET /api/talks/{talkID}", auth(c.Talks.GetTalk))
	mux.HandleFunc("PUT /api/talks/{talkID}", auth(c.Talks.EditTalk))
	mux.HandleFunc("DELETE /api/talks/{talkID}", auth(c.Talks.DeleteTalk))
	mux.HandleFunc("PATCH /api/talks/{talkID}/status", auth(c.Talks.SetTalkStatus))

	// Planning
	mux.HandleFunc("PATCH /api/talks/{talkID}/schedule", auth(c.Planning.ScheduleTalk))
	mux.HandleFunc("DELETE /api/talks/{talkID}/schedule", auth(c.Planning.ClearSchedule))
	mux.HandleFunc("GET /api/plannings", auth(c.Planning.ListPlanning))
	mux.HandleFunc("GET /api/plannings/filter", auth(c.Planning.FilterPlanning))
	mux.HandleFunc("GET /api/plannings/calendar.ics", c.Planning.ExportCalendar)
	mux.HandleFunc("PUT /api/plannings/{planningID}", auth(c.Planning.UpdatePlanning))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// Options configures the middleware wrapped around the router.
type Options struct {
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
}

// NewHandler wraps the mux with CORS, rate limiting and request logging.
// Logging is outermost so rejected requests are logged too.
func NewHandler(mux http.Handler, opts Options, logger *slog.Logger) http.Handler {
	var h http.Handler = mux
	if opts.RateLimiter != nil {
		h = opts.RateLimiter.Middleware(logger, h)
	}
	h = middleware.CORS(opts.AllowedOrigins, h)
	return middleware.LoggingMiddleware(logger, h)
}
