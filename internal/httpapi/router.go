package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"marketplace/internal/admin"
	"marketplace/internal/api"
	"marketplace/internal/audit"
	"marketplace/internal/auth"
	"marketplace/internal/booking"
	"marketplace/internal/cart"
	"marketplace/internal/emailfilter"
	"marketplace/internal/events"
	"marketplace/internal/installs"
	"marketplace/internal/order"
	"marketplace/internal/storage"
	"marketplace/internal/user"
	"marketplace/pkg/config"
)

type Dependencies struct {
	Cfg config.Config
	DB  *pgxpool.Pool
	Log zerolog.Logger

	Bus       *events.Bus
	CartStore cart.Store
	Blobs     storage.Store // nil disables attachment uploads
	Signer    *storage.Signer
	Filter    *emailfilter.Filter
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	intakeValidator, err := booking.NewValidator()
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	usersRepo := user.NewRepository(deps.DB)
	bookingsRepo := booking.NewRepository(deps.DB)
	installsRepo := &installs.Repository{Pool: deps.DB}

	authHandlers := auth.Handlers{
		Users:    usersRepo,
		Filter:   deps.Filter,
		Secret:   deps.Cfg.Auth.Secret,
		TokenTTL: time.Duration(deps.Cfg.Auth.TokenTTLHours) * time.Hour,
		Log:      deps.Log,
	}
	bookingHandlers := booking.Handlers{
		Store:         bookingsRepo,
		Blobs:         deps.Blobs,
		Validator:     intakeValidator,
		AdminWhatsApp: deps.Cfg.AdminWhatsApp,
		Log:           deps.Log,
	}
	orderHandlers := order.Handlers{
		Bookings:      bookingsRepo,
		Blobs:         deps.Blobs,
		Signer:        deps.Signer,
		Bus:           deps.Bus,
		PublicBaseURL: deps.Cfg.PublicBaseURL,
		Log:           deps.Log,
	}
	cartHandlers := cart.Handlers{Store: deps.CartStore}
	installHandlers := installs.Handlers{Store: installsRepo}
	adminHandlers := admin.Handlers{
		Bookings: bookingsRepo,
		Users:    usersRepo,
		Bus:      deps.Bus,
		Audit:    audit.NewRepository(deps.DB),
		Log:      deps.Log,
	}

	r.Route("/v1", func(r chi.Router) {
		// The whole API is consumed from the browser frontend; only the
		// configured origins get CORS.
		r.Use(api.CORSMiddleware(api.CORSOptions{
			AllowedOrigins: deps.Cfg.AllowedOrigins,
			AllowedHeaders: []string{"Content-Type", "Authorization", "X-Cart-ID"},
			MaxAgeSeconds:  600,
		}))

		// Public
		r.Post("/auth/signup", authHandlers.Signup)
		r.Post("/auth/signin", authHandlers.Signin)
		r.Post("/installs", installHandlers.Record)
		r.Get("/files/{token}", orderHandlers.Download)

		// Intake accepts both anonymous and signed-in submissions; a
		// valid token links the booking to the account.
		r.Group(func(r chi.Router) {
			r.Use(api.OptionalAuth(deps.Cfg.Auth.Secret))
			r.Post("/bookings", bookingHandlers.Create)

			r.Get("/cart", cartHandlers.Get)
			r.Put("/cart", cartHandlers.Put)
			r.Post("/cart/items", cartHandlers.AddItem)
			r.Delete("/cart/items/{id}", cartHandlers.RemoveItem)
			r.Delete("/cart", cartHandlers.Clear)
		})

		// Authenticated
		r.Group(func(r chi.Router) {
			r.Use(api.BearerAuth(deps.Cfg.Auth.Secret))

			r.Get("/auth/me", authHandlers.Me)

			r.Get("/orders/{id}", orderHandlers.Get)
			r.Get("/orders/{id}/events", orderHandlers.Stream)
			r.Post("/orders/{id}/attachments/sign", orderHandlers.Sign)
		})

		// Operator
		r.Route("/admin", func(r chi.Router) {
			r.Use(api.BearerAuth(deps.Cfg.Auth.Secret))
			r.Use(api.RequireAdmin)

			r.Get("/bookings", adminHandlers.ListBookings)
			r.Get("/bookings/{id}", adminHandlers.GetBooking)
			r.Patch("/bookings/{id}/status", adminHandlers.UpdateStatus)
			r.Post("/bookings/{id}/timeline", adminHandlers.AppendTimeline)

			r.Get("/users", adminHandlers.ListUsers)
			r.Patch("/users/{id}", adminHandlers.UpdateUser)

			r.Get("/installs/stats", installHandlers.GetStats)
		})
	})

	return r, nil
}
