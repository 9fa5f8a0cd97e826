package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/config"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-attendance/internal/handler/http"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/clock"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance/internal/pkg/storage"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/memory"
	"github.com/cmlabs-hris/hris-attendance/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-attendance/internal/service/attendance"
	"github.com/cmlabs-hris/hris-attendance/internal/service/file"
	leaveService "github.com/cmlabs-hris/hris-attendance/internal/service/leave"
	reportService "github.com/cmlabs-hris/hris-attendance/internal/service/report"
	"github.com/go-chi/httplog/v3"
)

type repositories struct {
	employees  employee.EmployeeRepository
	attendance attendance.AttendanceRepository
	leave      leave.LeaveRequestRepository
	close      func()
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("env", cfg.App.Env),
	)
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	clk := clock.System()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg, clk)
	if err != nil {
		return err
	}
	defer repos.close()

	var fileStorage storage.FileStorage
	var uploadsDir string
	switch cfg.Storage.Type {
	case config.StorageLocal:
		local, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize local storage: %w", err)
		}
		fileStorage = local
		uploadsDir = local.BasePath()
	case config.StorageMinio:
		fileStorage, err = storage.NewMinioStorage(ctx, storage.MinioConfig{
			Endpoint:  cfg.Storage.MinioEndpoint,
			AccessKey: cfg.Storage.MinioAccessKey,
			SecretKey: cfg.Storage.MinioSecretKey,
			Bucket:    cfg.Storage.MinioBucket,
			UseSSL:    cfg.Storage.MinioUseSSL,
			BaseURL:   cfg.Storage.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize minio storage: %w", err)
		}
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		return fmt.Errorf("failed to initialize jwt service: %w", err)
	}

	fileService := file.NewFileService(fileStorage)
	policy := attendance.Policy{Location: loc, LateAfter: cfg.Attendance.LateAfter}
	attendanceSvc := attendanceService.NewAttendanceService(repos.attendance, repos.employees, fileService, clk, policy)
	leaveSvc := leaveService.NewLeaveService(repos.leave, repos.employees, cfg.Leave.Entitlements, clk)
	reportSvc := reportService.NewReportService(attendanceSvc, leaveSvc, repos.employees, loc)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			Logger:         logger,
			AllowedOrigins: cfg.App.CORSAllowedOrigins,
			UploadsDir:     uploadsDir,
		},
		JWTService,
		repos.employees,
		appHTTP.NewAttendanceHandler(attendanceSvc, clk, loc),
		appHTTP.NewLeaveHandler(leaveSvc, clk, loc),
		appHTTP.NewReportHandler(reportSvc, clk, loc),
	)

	if interval := cfg.Attendance.MarkAbsentInterval; interval > 0 {
		scheduler := cron.NewScheduler(logger)
		cron.NewAttendanceJobs(repos.attendance, clk, loc).Register(scheduler, interval)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "db_driver", cfg.Database.Driver, "storage", cfg.Storage.Type, "timezone", loc.String())
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, clk clock.Clock) (repositories, error) {
	if cfg.Database.Driver == config.DriverMemory {
		store := memory.NewStore(clk)
		seeded, err := fixtures.SeedDemoEmployees(ctx, store.Employees())
		if err != nil {
			return repositories{}, err
		}
		slog.Info("Using in-memory store", "demo_employees", seeded)
		return repositories{
			employees:  store.Employees(),
			attendance: store.Attendance(),
			leave:      store.LeaveRequests(),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return repositories{}, fmt.Errorf("error connecting to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			db.Close()
			return repositories{}, err
		}
	}

	return repositories{
		employees:  postgresql.NewEmployeeRepository(db),
		attendance: postgresql.NewAttendanceRepository(db),
		leave:      postgresql.NewLeaveRequestRepository(db),
		close:      db.Close,
	}, nil
}
