package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/api"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/auth"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/backgroundcheck"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/booking"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/dispute"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/document"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/messaging"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/metrics"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/movein"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/payment"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/portal"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/property"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/user"
	"github.com/Abdl-Azeez/JulaazNG-sub001/internal/webhook"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/config"
	"github.com/Abdl-Azeez/JulaazNG-sub001/pkg/paystack"
)

type Dependencies struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Registry *prometheus.Registry
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	registry := deps.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	m := metrics.New(registry)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	paystackClient := paystack.Client{
		BaseURL:   deps.Cfg.Paystack.BaseURL,
		SecretKey: deps.Cfg.Paystack.SecretKey,
	}

	usersRepo := user.NewRepository(deps.DB)
	propertyRepo := property.NewRepository(deps.DB)
	bookingStore := booking.NewRepository(deps.DB)
	paymentRepo := payment.NewRepository(deps.DB)
	disputeRepo := dispute.NewRepository(deps.DB)
	checkRepo := backgroundcheck.NewRepository(deps.DB)
	threads := messaging.NewRepository(deps.DB)

	var docs document.Generator
	if deps.Cfg.DocgenBaseURL != "" {
		docs = document.HTTPGenerator{BaseURL: deps.Cfg.DocgenBaseURL}
	} else {
		docs = document.StaticGenerator{}
	}

	bookingService := &booking.Service{
		Store: bookingStore,
		Processor: payment.PaystackProcessor{
			Client:   paystackClient,
			DB:       deps.DB,
			Currency: deps.Cfg.Currency,
		},
		Documents: docs,
		Notifier:  messaging.BookingNotifier{Store: threads},
		Metrics:   m,
	}

	authHandlers := auth.Handlers{Cfg: deps.Cfg, Users: usersRepo}
	propertyHandlers := property.Handlers{Cfg: deps.Cfg, Repo: propertyRepo}
	bookingHandlers := booking.Handlers{
		Cfg:        deps.Cfg,
		DB:         deps.DB,
		Service:    bookingService,
		Properties: propertyRepo,
		Links:      portal.Issuer{DB: deps.DB},
	}
	paymentHandlers := payment.Handlers{Cfg: deps.Cfg, DB: deps.DB, Repo: paymentRepo, Bookings: bookingStore, Client: paystackClient}
	disputeHandlers := dispute.Handlers{Cfg: deps.Cfg, DB: deps.DB, Repo: disputeRepo, Threads: threads}
	checkHandlers := backgroundcheck.Handlers{Cfg: deps.Cfg, DB: deps.DB, Repo: checkRepo}
	messagingHandlers := messaging.Handlers{Store: threads}
	moveinHandlers := movein.Handlers{}
	webhookHandler := webhook.Handler{Cfg: deps.Cfg, DB: deps.DB, Bookings: bookingService, Metrics: m}
	portalHandlers := portal.Handlers{DB: deps.DB, Bookings: bookingService}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/auth/register", authHandlers.Register)
		r.Post("/auth/login", authHandlers.Login)

		// Authenticated APIs.
		r.Group(func(r chi.Router) {
			r.Use(api.SessionAuth(deps.Cfg, usersRepo))

			r.Get("/properties", propertyHandlers.List)
			r.Post("/properties", propertyHandlers.Create)
			r.Get("/properties/{id}", propertyHandlers.Get)
			r.Patch("/properties/{id}/listed", propertyHandlers.SetListed)

			r.Get("/bookings", bookingHandlers.List)
			r.Post("/bookings", bookingHandlers.Create)
			r.Get("/bookings/{id}", bookingHandlers.Get)
			r.Post("/bookings/{id}/actions", bookingHandlers.Act)
			r.Post("/bookings/{id}/request-payment", paymentHandlers.RequestPayment)

			r.Post("/movein/quote", moveinHandlers.Quote)

			r.Get("/threads", messagingHandlers.ListThreads)
			r.Get("/threads/{id}/messages", messagingHandlers.ListMessages)
			r.Post("/threads/{id}/messages", messagingHandlers.PostMessage)

			r.Get("/disputes", disputeHandlers.List)
			r.Post("/disputes", disputeHandlers.Create)
			r.Get("/disputes/{id}", disputeHandlers.Get)

			r.Get("/verification", checkHandlers.GetMine)
			r.Post("/verification/documents", checkHandlers.SubmitDocument)

			// Admin oversight.
			r.Group(func(r chi.Router) {
				r.Use(api.RequireRole(user.RoleAdmin))

				r.Post("/admin/bookings/{id}/cancel", bookingHandlers.ForceCancel)

				r.Get("/admin/payments", paymentHandlers.List)
				r.Get("/admin/payments/{id}", paymentHandlers.Get)
				r.Patch("/admin/payments/{id}/status", paymentHandlers.UpdateStatus)

				r.Patch("/admin/disputes/{id}/status", disputeHandlers.Advance)
				r.Post("/admin/disputes/{id}/resolve", disputeHandlers.Resolve)
				r.Post("/admin/disputes/{id}/close", disputeHandlers.Close)

				r.Get("/admin/background-checks", checkHandlers.List)
				r.Get("/admin/background-checks/{id}", checkHandlers.Get)
				r.Post("/admin/background-checks/{id}/documents/{docId}/review", checkHandlers.ReviewDocument)
				r.Post("/admin/background-checks/{id}/decision", checkHandlers.Decide)
			})
		})

		// Agreement portal: public, token-based, served to a separate frontend
		// domain. Only allow CORS for explicitly configured origins.
		r.Route("/agreements", func(r chi.Router) {
			r.Use(api.CORSMiddleware(api.CORSOptions{
				AllowedOrigins: deps.Cfg.PortalAllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type"},
				MaxAgeSeconds:  600,
			}))

			r.Get("/{token}", portalHandlers.View)
			r.Post("/{token}/sign", portalHandlers.Sign)
		})

		// Webhooks.
		r.Post("/webhooks/paystack", webhookHandler.ServeHTTP)
	})

	return r
}
