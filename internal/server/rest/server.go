// Package rest exposes the auth flow and the admin catalog as a JSON API on
// top of fiber.
package rest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/logging"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 10 * time.Second

type AuthService interface {
	Signup(ctx context.Context, in services.SignupInput) (int64, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, in services.ResetInput) error
}

type CatalogService interface {
	ListCategories(ctx context.Context, q models.ListQuery) (*models.ListResult[models.Category], error)
	CreateCategory(ctx context.Context, c models.Category) (*models.Category, error)
	UpdateCategory(ctx context.Context, id int64, p models.CategoryPatch) (bool, error)
	DeleteCategory(ctx context.Context, id int64) error
	ListPlants(ctx context.Context, q models.ListQuery) (*services.PlantList, error)
	GetPlant(ctx context.Context, id int64) (*models.Plant, error)
	CreatePlant(ctx context.Context, p models.Plant) (*models.Plant, error)
	UpdatePlant(ctx context.Context, id int64, p models.PlantPatch) (bool, error)
	DeletePlant(ctx context.Context, id int64) error
	ListSystems(ctx context.Context) ([]models.System, error)
}

type HTTPServer struct {
	address       string
	tlsCert       string
	tlsKey        string
	useTLS        bool
	cookieSecure  bool
	tokenValidity time.Duration
	jwtSecret     []byte

	auth    AuthService
	catalog CatalogService
	logger  logging.Logger
	app     *fiber.App
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, auth AuthService, catalog CatalogService) *HTTPServer {
	s := &HTTPServer{
		address:       cfg.EndpointAddrHTTP,
		tlsCert:       cfg.TLSCertFile,
		tlsKey:        cfg.TLSKeyFile,
		useTLS:        cfg.HasTLS(),
		cookieSecure:  cfg.CookieSecure,
		tokenValidity: cfg.TokenValidityDuration,
		jwtSecret:     []byte(cfg.SecretKey),
		auth:          auth,
		catalog:       catalog,
		logger:        l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "herbalgarden",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(s.requestLogger)
	s.app.Use(recover.New())
	s.app.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	s.routes()

	return s
}

func (s *HTTPServer) routes() {
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	a := s.app.Group("/api/auth")
	a.Post("/signup", s.signup)
	a.Post("/login", s.login)
	a.Post("/logout", s.logout)
	a.Post("/forgot-password", s.forgotPassword)
	a.Post("/verify-otp", s.verifyOTP)
	a.Post("/reset-password", s.resetPassword)

	admin := s.app.Group("/api/admin", s.requireAdmin)
	admin.Get("/categories", s.listCategories)
	admin.Post("/categories", s.createCategory)
	admin.Put("/categories/:id", s.updateCategory)
	admin.Delete("/categories/:id", s.deleteCategory)
	admin.Get("/plants", s.listPlants)
	admin.Post("/plants", s.createPlant)
	admin.Get("/plants/:id", s.getPlant)
	admin.Put("/plants/:id", s.updatePlant)
	admin.Delete("/plants/:id", s.deletePlant)
	admin.Get("/systems", s.listSystems)
}

// App exposes the underlying fiber app (used by tests).
func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// Run serves until ctx is cancelled, then drains in-flight requests. It
// returns only after the drain has finished.
func (s *HTTPServer) Run(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address, "tls", s.useTLS)

	var err error
	if s.useTLS {
		err = s.app.ListenTLS(s.address, s.tlsCert, s.tlsKey)
	} else {
		err = s.app.Listen(s.address)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	// Listen returns as soon as the listener closes; handlers may still run.
	<-drained
	return nil
}

// errorHandler renders errors that escape handlers (unknown routes, body
// limits, recovered panics) as {message}.
func (s *HTTPServer) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := msgServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	}
	if code >= fiber.StatusInternalServerError {
		s.log(c).Error(c.UserContext(), "unhandled error", "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}

// corsConfig allows credentials only for an explicit origin list; fiber
// rejects credentials combined with a wildcard.
func corsConfig(origins []string) cors.Config {
	allow := strings.Join(origins, ",")
	return cors.Config{
		AllowOrigins:     allow,
		AllowHeaders:     "Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: allow != "" && !slices.Contains(origins, "*"),
	}
}
