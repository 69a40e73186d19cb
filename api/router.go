package api

import (
	"net/http"
	"time"

	"github.com/Goofygiraffe06/otprelay/internal/i18n"
	"github.com/Goofygiraffe06/otprelay/internal/logging"
	"github.com/Goofygiraffe06/otprelay/internal/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Verifier is the SMS provider as the relay uses it.
type Verifier interface {
	OTPSender
	OTPChecker
}

// Deps are the collaborators the relay routes need.
type Deps struct {
	Directory      Directory
	SMS            Verifier
	Locales        *i18n.Bundle
	Manager        *manager.WorkManager
	AllowedOrigins []string
	MaxBodyBytes   int64
}

// NewRouter wires middleware and routes.
func NewRouter(d Deps) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/", RootHandler)
	router.Get("/health", HealthHandler)
	if d.Locales != nil {
		router.Get("/locales/{lang}/{file}", LocalesHandler(d.Locales))
	}

	router.Route("/api", func(r chi.Router) {
		if d.MaxBodyBytes > 0 {
			r.Use(middleware.RequestSize(d.MaxBodyBytes))
		}
		r.Post("/check-phone", CheckPhoneHandler(d.Directory, d.Manager))
		r.Post("/send-otp", SendOTPHandler(d.SMS, d.Manager))
		r.Post("/verify-otp", VerifyOTPHandler(d.SMS, d.Manager))
	})

	return router
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		switch status := ww.Status(); {
		case status >= http.StatusInternalServerError:
			logging.Error("http request", fields...)
		case status >= http.StatusBadRequest:
			logging.Warn("http request", fields...)
		case r.URL.Path == "/health":
			// health checks poll this constantly
			logging.Debug("http request", fields...)
		default:
			logging.Info("http request", fields...)
		}
	})
}
