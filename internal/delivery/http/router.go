package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	"nomineetracker/internal/delivery/http/controllers"
	"nomineetracker/internal/delivery/http/helpers"
	"nomineetracker/internal/delivery/http/middleware"
	"nomineetracker/internal/domain"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterConfig holds the controllers and collaborators the router wires together.
type RouterConfig struct {
	Events   *controllers.EventController
	Nominees *controllers.NomineeController
	Feedback *controllers.FeedbackController
	Public   *controllers.PublicController
	Verifier domain.TokenVerifier
	DB       Pinger
	Logger   *slog.Logger
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(cfg.Verifier, cfg.Logger)

	// Events
	mux.HandleFunc("GET /events", auth(cfg.Events.ListEvents))
	mux.HandleFunc("POST /events", auth(cfg.Events.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", auth(cfg.Events.GetEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(cfg.Events.DeleteEvent))

	// Nominees
	mux.HandleFunc("GET /events/{eventID}/nominees", auth(cfg.Nominees.ListNominees))
	mux.HandleFunc("POST /events/{eventID}/nominees", auth(cfg.Nominees.AddNominees))
	mux.HandleFunc("PUT /nominees/{nomineeID}/attend", auth(cfg.Nominees.MarkAttended))
	mux.HandleFunc("DELETE /nominees/{nomineeID}", auth(cfg.Nominees.DeleteNominee))

	// Feedback (admin)
	mux.HandleFunc("POST /events/{eventID}/feedback-requests", auth(cfg.Feedback.SendFeedbackRequests))
	mux.HandleFunc("GET /events/{eventID}/feedback", auth(cfg.Feedback.ListFeedback))
	mux.HandleFunc("GET /events/{eventID}/feedback.csv", auth(cfg.Feedback.ExportFeedbackCSV))

	// Public links
	mux.HandleFunc("GET /respond/{token}/{decision}", cfg.Public.Respond)
	mux.HandleFunc("GET /feedback/{token}", cfg.Public.GetFeedbackForm)
	mux.HandleFunc("POST /feedback/{token}", cfg.Public.SubmitFeedback)

	mux.HandleFunc("GET /healthz", healthz(cfg.DB))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// healthz godoc
// @Summary Liveness and database check
// @Tags health
// @Produce json
// @Success 200 {object} helpers.APIResponse
// @Failure 503 {object} helpers.APIResponse
// @Router /healthz [get]
func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "unchecked"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			helpers.WriteJSONError(w, http.StatusServiceUnavailable, "unavailable", "database unreachable")
			return
		}
		helpers.WriteJSONSuccess(w, http.StatusOK, HealthResponse{Status: "ok", Database: "ok"})
	}
}
