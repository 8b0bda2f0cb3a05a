package web

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nastradacha/inventory-app/config"
	"github.com/nastradacha/inventory-app/web/handlers"
	"github.com/nastradacha/inventory-app/web/middleware"
)

// Server represents the web server
type Server struct {
	app *fiber.App
}

// NewServer creates a new Fiber server
func NewServer(cfg *config.Config) *Server {
	handlers.Configure(cfg)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.Printf("ERROR [%s %s]: %v", c.Method(), c.Path(), err)
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path} ${error}\n",
	}))

	// Setup routes
	setupRoutes(app, cfg)

	return &Server{app: app}
}

// Start starts the server
func (s *Server) Start(port string) error {
	log.Printf("Server starting on http://localhost:%s", port)
	return s.app.Listen(":" + port)
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, cfg *config.Config) {
	api := app.Group("/api")

	// Public
	api.Post("/login", handlers.Login)

	// Everything below needs a valid token
	authed := api.Group("", middleware.RequireAuth(&cfg.Auth))

	// Product catalog
	products := authed.Group("/products")
	products.Get("/", handlers.ProductList)
	products.Get("/:id", handlers.ProductView)
	products.Put("/:id", handlers.ProductUpdate)
	products.Delete("/:id", middleware.RequireManager(), handlers.ProductDelete)
	products.Post("/:id/adjust", middleware.RequireManager(), handlers.ProductAdjust)

	// Stock intake with duplicate screening
	stock := authed.Group("/stock")
	stock.Post("/", handlers.StockIntake)
	stock.Get("/pending", handlers.PendingIntakeView)
	stock.Post("/pending/:token/confirm", handlers.PendingIntakeConfirm)
	stock.Delete("/pending/:token", handlers.PendingIntakeCancel)

	// Sales
	sales := authed.Group("/sales")
	sales.Get("/", handlers.SaleList)
	sales.Post("/", handlers.SaleRecord)
	sales.Put("/:id", handlers.SaleEdit)
	sales.Delete("/:id", handlers.SaleVoid)

	// Shifts
	shifts := authed.Group("/shifts")
	shifts.Get("/current", handlers.ShiftCurrent)
	shifts.Post("/open", handlers.ShiftOpen)
	shifts.Post("/close", handlers.ShiftClose)

	// Batch spreadsheet import (manager only)
	batch := authed.Group("/batch", middleware.RequireManager())
	batch.Post("/preview", handlers.BatchPreview)
	batch.Post("/confirm", handlers.BatchConfirm)
	batch.Get("/template", handlers.BatchTemplate)

	// Reports
	reports := authed.Group("/reports")
	reports.Get("/dashboard", handlers.ReportsDashboard)
	reports.Get("/sales", middleware.RequireManager(), handlers.ReportsSales)

	// Audit trail (manager only)
	authed.Get("/logs", middleware.RequireManager(), handlers.LogList)
	authed.Get("/price-changes", middleware.RequireManager(), handlers.PriceChangeList)

	// User management (manager only)
	users := authed.Group("/users", middleware.RequireManager())
	users.Get("/", handlers.UserList)
	users.Post("/", handlers.UserCreate)
	users.Put("/:id/password", handlers.UserResetPassword)
}
