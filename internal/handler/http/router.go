package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	// UploadsDir is served under /uploads when proofs are stored on local disk.
	UploadsDir string
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	employeeRepo employee.EmployeeRepository,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	reportHandler ReportHandler,
) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if cfg.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.ResolveScope(employeeRepo))

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.List)
				r.Post("/clock-in", attendanceHandler.ClockIn)
				r.Post("/clock-out", attendanceHandler.ClockOut)
				r.Get("/today/{employeeID}", attendanceHandler.GetToday)
				r.Get("/stats/{employeeID}", attendanceHandler.GetStats)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Get("/", leaveHandler.ListRequests)
				r.Post("/", leaveHandler.CreateRequest)
				r.Get("/balance/{employeeID}", leaveHandler.GetBalance)
				r.Get("/{id}", leaveHandler.GetRequest)

				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).
					Put("/{id}/status", leaveHandler.DecideRequest)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/summary/{employeeID}", reportHandler.GetEmployeeSummary)
				r.Get("/attendance/{employeeID}.xlsx", reportHandler.ExportAttendance)
				r.Get("/leave-balance/{employeeID}.pdf", reportHandler.ExportLeaveBalance)
			})
		})
	})
	return r
}
