package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/bizzpass/crm-backend-go/internal/handler/http/middleware"
	"github.com/bizzpass/crm-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	jwtService jwt.Service,
	frontendURL string,
	payrollHandler PayrollHandler,
	graceHandler GraceHandler,
	overtimeHandler OvertimeHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "bizzpass-crm"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{frontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/payroll", func(r chi.Router) {
				r.Route("/settings", func(r chi.Router) {
					r.Get("/", payrollHandler.GetSettings)
					r.Put("/", payrollHandler.UpsertSettings)
				})

				r.Route("/components", func(r chi.Router) {
					r.Get("/", payrollHandler.ListComponents)
					r.Post("/", payrollHandler.CreateComponent)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetComponent)
						r.Put("/", payrollHandler.UpdateComponent)
						r.Delete("/", payrollHandler.DeactivateComponent)
					})
				})

				r.Route("/salary-modals", func(r chi.Router) {
					r.Get("/", payrollHandler.ListSalaryModals)
					r.Post("/", payrollHandler.CreateSalaryModal)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetSalaryModal)
						r.Put("/", payrollHandler.UpdateSalaryModal)
						r.Delete("/", payrollHandler.DeleteSalaryModal)
					})
				})

				r.Route("/salary-structures", func(r chi.Router) {
					r.Get("/", payrollHandler.ListStructures)
					r.Post("/", payrollHandler.CreateStructure)
				})

				r.Route("/runs", func(r chi.Router) {
					r.Get("/", payrollHandler.ListRuns)
					r.Post("/", payrollHandler.CreateRun)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetRun)
						r.Post("/calculate", payrollHandler.CalculateRun)
						r.Post("/approve", payrollHandler.ApproveRun)
					})
				})

				r.Route("/transactions", func(r chi.Router) {
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", payrollHandler.GetTransaction)
						r.Patch("/", payrollHandler.UpdateTransaction)
					})
				})
			})

			r.Route("/grace", func(r chi.Router) {
				r.Post("/resolve", graceHandler.Resolve)
				r.Get("/config/{employeeId}", graceHandler.ResolveConfig)
			})

			r.Route("/fine-modals", func(r chi.Router) {
				r.Get("/", graceHandler.ListFineModals)
				r.Post("/", graceHandler.CreateFineModal)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", graceHandler.GetFineModal)
					r.Put("/", graceHandler.UpdateFineModal)
					r.Delete("/", graceHandler.DeleteFineModal)
				})
			})

			r.Route("/overtime-templates", func(r chi.Router) {
				r.Get("/", overtimeHandler.ListTemplates)
				r.Post("/", overtimeHandler.CreateTemplate)
				r.Get("/default", overtimeHandler.GetDefaultTemplate)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", overtimeHandler.GetTemplate)
					r.Put("/", overtimeHandler.UpdateTemplate)
					r.Delete("/", overtimeHandler.DeleteTemplate)
				})
			})
		})
	})
	return r
}
