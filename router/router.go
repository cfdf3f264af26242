package router

import (
	"github.com/minnehack2026-blugolds/backend/cache"
	"github.com/minnehack2026-blugolds/backend/config"
	"github.com/minnehack2026-blugolds/backend/handlers"
	"github.com/minnehack2026-blugolds/backend/middleware"
	"github.com/minnehack2026-blugolds/backend/services"
	"github.com/minnehack2026-blugolds/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the shared resources every handler is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Log    *zap.Logger
	Tokens *utils.TokenManager
	Cache  cache.Cache // optional
}

// New builds the fiber app with middleware, routes and the 404 fallback.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Campus Marketplace",
		ServerHeader: "Campus Marketplace Server/1.0",
		ErrorHandler: middleware.ErrorHandler,
	})

	middleware.SetupMiddleware(app, d.Config)
	SetupRoutes(app, d)
	middleware.SetupErrorHandler(app)

	return app
}

func SetupRoutes(app *fiber.App, d Deps) {
	chat := services.NewChatService(d.DB, services.NewPostReader(d.DB), d.Log)
	locations := services.NewLocationService(d.DB, d.Cache, d.Log)

	authHandler := handlers.NewAuthHandler(d.DB, d.Tokens, d.Config, d.Log)
	userHandler := handlers.NewUserHandler(d.DB, d.Log)
	postHandler := handlers.NewPostHandler(d.DB, d.Log)
	uploadHandler := handlers.NewUploadHandler(d.Config.UploadDir, d.Log)
	transactionHandler := handlers.NewTransactionHandler(d.DB, d.Log)
	ratingHandler := handlers.NewRatingHandler(d.DB, d.Log)
	chatHandler := handlers.NewChatHandler(chat, d.Log)
	locationHandler := handlers.NewLocationHandler(locations, d.Config, d.Log)

	requireAuth := middleware.RequireAuth(d.Tokens, d.DB)

	// Health Check Endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})

	app.Static("/uploads", d.Config.UploadDir)

	auth := app.Group("/auth")
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/login", authHandler.Login)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)

	app.Get("/users/:id/average-rating", userHandler.AverageRating)

	posts := app.Group("/posts")
	posts.Get("/", postHandler.ListPosts)
	posts.Post("/", requireAuth, postHandler.CreatePost)
	posts.Get("/mine", requireAuth, postHandler.GetMyPosts)
	posts.Get("/:id", postHandler.GetPost)
	posts.Patch("/:id", requireAuth, postHandler.UpdatePost)
	posts.Delete("/:id", requireAuth, postHandler.DeletePost)

	app.Post("/uploads/images", requireAuth, uploadHandler.UploadImage)

	transactions := app.Group("/transactions", requireAuth)
	transactions.Post("/", transactionHandler.CreateTransaction)
	transactions.Get("/", transactionHandler.ListTransactions)
	transactions.Patch("/:id", transactionHandler.UpdateTransaction)

	app.Post("/ratings", requireAuth, ratingHandler.CreateRating)

	conversations := app.Group("/chat/conversations", requireAuth)
	conversations.Post("/", chatHandler.CreateConversation)
	conversations.Get("/", chatHandler.ListConversations)
	conversations.Get("/:id/messages", chatHandler.ListMessages)
	conversations.Post("/:id/messages", chatHandler.SendMessage)
	conversations.Post("/:id/read", chatHandler.MarkRead)

	location := app.Group("/api/location")
	location.Post("/set", locationHandler.SetLocation)
	location.Get("/schools", locationHandler.GetSchools)
	location.Put("/radius", locationHandler.UpdateRadius)
}
