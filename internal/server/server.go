package server

import (
	"errors"
	"time"

	"lab-inventory/internal/config"
	"lab-inventory/internal/handler"
	"lab-inventory/internal/middleware"
	"lab-inventory/internal/model"
	"lab-inventory/internal/repository"
	"lab-inventory/internal/service"
	"lab-inventory/internal/ws"
	"lab-inventory/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services is everything the route table dispatches to.
type Services struct {
	Auth        service.AuthService
	Users       service.UserService
	Materials   service.MaterialService
	Transaction service.TransactionService
	Suppliers   service.SupplierService
	Categories  service.CategoryService
	Dashboard   service.DashboardService
	Roles       repository.RoleRepository
	Privileges  repository.PrivilegeRepository
}

// Options carries the optional collaborators. A nil RateCounter disables
// rate limiting and a nil Hub disables /ws.
type Options struct {
	Hub         *ws.Hub
	RateCounter middleware.WindowCounter
	Registry    *prometheus.Registry
}

// New builds the fiber application with every route mounted.
func New(cfg *config.Config, svc Services, opts Options) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.Server.AppName,
		BodyLimit:    cfg.Server.BodyLimitMB * 1024 * 1024,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(requestid.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.Server.AllowOrigins}))

	if opts.Registry != nil {
		metrics, err := middleware.NewHTTPMetrics(opts.Registry)
		if err != nil {
			return nil, err
		}
		app.Use(metrics.Handler())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{})))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	if opts.Hub != nil {
		mountWebsocket(app, svc.Auth, opts.Hub)
	}

	authHandler := handler.NewAuthHandler(svc.Auth)
	userHandler := handler.NewUserHandler(svc.Users)
	invHandler := handler.NewInventoryHandler(svc.Materials)
	txHandler := handler.NewTransactionHandler(svc.Transaction)
	supplierHandler := handler.NewSupplierHandler(svc.Suppliers)
	categoryHandler := handler.NewCategoryHandler(svc.Categories)
	dashHandler := handler.NewDashboardHandler(svc.Dashboard)
	roleHandler := handler.NewRoleHandler(svc.Roles, svc.Privileges)

	limit := rateLimit(opts.RateCounter, cfg)

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	api.Post("/register", limit("register"), authHandler.Register)
	api.Put("/verify", limit("verify"), authHandler.VerifyOTP)
	api.Post("/resend-otp", limit("resend-otp"), authHandler.ResendOTP)
	api.Post("/login", limit("login"), authHandler.Login)
	api.Post("/auth/validate-token", authHandler.ValidateToken)
	// The registration form needs the laboratory list before any account exists.
	api.Get("/laboratories", categoryHandler.GetLaboratories)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(svc.Auth))

	protected.Post("/auth/heartbeat", authHandler.Heartbeat)
	protected.Get("/me", authHandler.Me)
	protected.Put("/:id/change-password", authHandler.ChangePassword)

	// User management
	protected.Post("/admin-register", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	protected.Get("/all-users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/user/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	protected.Delete("/user/:id", middleware.RequirePrivilege(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Put("/update-user/:id", middleware.RequirePrivilege(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Put("/users/:id/privileges", middleware.SuperAdminOnly(), userHandler.UpdateUserPrivileges)
	protected.Get("/roles", middleware.RequirePrivilege(model.PrivUserView), roleHandler.GetRoles)
	protected.Get("/privileges", middleware.RequirePrivilege(model.PrivUserView), roleHandler.GetPrivileges)

	// Materials
	protected.Get("/material/all", middleware.RequirePrivilege(model.PrivMaterialView), invHandler.GetMaterials)
	protected.Post("/material/create", middleware.RequirePrivilege(model.PrivMaterialCreate), invHandler.CreateMaterial)
	protected.Put("/material/update/:id", middleware.RequirePrivilege(model.PrivMaterialUpdate), invHandler.UpdateMaterial)
	protected.Get("/material/:id", middleware.RequirePrivilege(model.PrivMaterialView), invHandler.GetMaterial)

	// Transaction forms
	txView := middleware.RequirePrivilege(model.PrivTransactionView)
	txCreate := middleware.RequirePrivilege(model.PrivTransactionCreate)
	protected.Get("/borrow", txView, txHandler.GetBorrows)
	protected.Post("/borrow", txCreate, txHandler.Borrow)
	protected.Put("/borrow/:id/return", txCreate, txHandler.ReturnBorrow)
	protected.Get("/disposal", txView, txHandler.GetDispositions)
	protected.Post("/disposal/create", txCreate, txHandler.Dispose)
	protected.Get("/reagents-dispense", txView, txHandler.GetDispenses)
	protected.Post("/reagents-dispense", txCreate, txHandler.Dispense)
	protected.Get("/calibration", txView, txHandler.GetCalibrations)
	protected.Post("/calibration", txCreate, txHandler.Calibrate)
	protected.Get("/incident-forms", txView, txHandler.GetIncidents)
	protected.Post("/incident-forms", txCreate, txHandler.ReportIncident)

	// Suppliers, categories
	protected.Post("/supplier/create", middleware.RequirePrivilege(model.PrivSupplierManage), supplierHandler.CreateSupplier)
	protected.Put("/supplier/update/:id", middleware.RequirePrivilege(model.PrivSupplierManage), supplierHandler.UpdateSupplier)
	protected.Get("/supplier/unfiltered/:userId", middleware.RequirePrivilege(model.PrivSupplierView), supplierHandler.GetAllSuppliers)
	protected.Get("/filtered-suppliers/:userId", middleware.RequirePrivilege(model.PrivSupplierView), supplierHandler.GetActiveSuppliers)
	protected.Post("/category/create", middleware.RequirePrivilege(model.PrivCategoryManage), categoryHandler.CreateCategory)
	protected.Get("/category/categories", categoryHandler.GetCategories)

	// Inventory log, dashboard
	protected.Get("/inventory-log", middleware.RequirePrivilege(model.PrivLogView), invHandler.GetLogs)
	protected.Post("/inventory-log", middleware.RequirePrivilege(model.PrivLogCreate), invHandler.CreateAdjustment)
	protected.Get("/dashboard/stats", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetStockMovement)

	return app, nil
}

func rateLimit(counter middleware.WindowCounter, cfg *config.Config) func(prefix string) fiber.Handler {
	return func(prefix string) fiber.Handler {
		if counter == nil || cfg.Server.RateLimit <= 0 {
			return func(c *fiber.Ctx) error { return c.Next() }
		}
		window := time.Duration(cfg.Server.RateLimitSecs) * time.Second
		return middleware.NewRateLimiter(counter, prefix, cfg.Server.RateLimit, window).Middleware()
	}
}

// mountWebsocket serves /ws. Browsers cannot set headers on the upgrade
// request, so the token travels in the "token" query parameter.
func mountWebsocket(app *fiber.App, auth service.AuthService, hub *ws.Hub) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		if _, err := auth.Authenticate(c.UserContext(), c.Query("token")); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		if !hub.Join(c) {
			c.Close()
			return
		}
		defer hub.Leave(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		logger.Error(c.UserContext()).Err(err).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
