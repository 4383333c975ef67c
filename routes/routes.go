package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "askline/controllers"
	"askline/middleware"
	"askline/utils"
)

func SetupAuthRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize logger
	authLogger := log.New(os.Stdout, "AUTH: ", log.Ldate|log.Ltime|log.Lshortfile)

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Public auth endpoints (no authentication required)
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/forgot-password", controller.ForgotPassword)
	auth.Post("/verify-reset-otp", controller.VerifyResetOTP)
	auth.Post("/reset-password", controller.ResetPassword)
	auth.Post("/refresh", controller.RefreshToken)

	// Protected auth endpoints (require valid JWT)
	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Post("/change-password", controller.ChangePassword)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	authLogger.Println("Authentication routes initialized successfully")
}

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	accountController := controller.NewAccountController(db, log.New(os.Stdout, "ACCOUNT: ", log.LstdFlags))
	questionController := controller.NewQuestionController(db, log.New(os.Stdout, "QUESTION: ", log.LstdFlags))
	routeController := controller.NewRouteController(db, log.New(os.Stdout, "ROUTE: ", log.LstdFlags))
	triggerController := controller.NewTriggerController(db, log.New(os.Stdout, "TRIGGER: ", log.LstdFlags))
	flowController := controller.NewFlowController(db, log.New(os.Stdout, "FLOW: ", log.LstdFlags))
	messageController := controller.NewMessageController(db, log.New(os.Stdout, "MESSAGE: ", log.LstdFlags))
	duplicateController := controller.NewDuplicateController(db, log.New(os.Stdout, "DUPLICATE: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))
	actionController := controller.NewActionController(db, log.New(os.Stdout, "ACTION: ", log.LstdFlags))
	respondentController := controller.NewRespondentController(db, log.New(os.Stdout, "RESPONDENT: ", log.LstdFlags))
	uploadController := controller.NewUploadController(db, utils.NewLocalStorage(), log.New(os.Stdout, "UPLOAD: ", log.LstdFlags))
	masterController := controller.NewMasterController(db, log.New(os.Stdout, "MASTER: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Account routes
	api.Post("/accounts", accountController.CreateAccount)
	api.Get("/accounts", accountController.GetAccounts)

	account := api.Group("/accounts/:accountId")
	account.Get("/", accountController.GetAccount)
	account.Put("/", accountController.UpdateAccount)
	account.Delete("/", accountController.DeleteAccount)

	// Dashboard routes
	account.Get("/dashboard/stats", dashboardController.GetDashboardStats)
	account.Get("/dashboard/timeline", dashboardController.GetAnswerTimeline)

	// Question and option routes
	question := account.Group("/questions")
	question.Get("/", questionController.ListQuestions)
	question.Post("/", questionController.CreateQuestion)
	question.Get("/:questionId", questionController.GetQuestion)
	question.Put("/:questionId", questionController.UpdateQuestion)
	question.Delete("/:questionId", questionController.DeleteQuestion)
	question.Post("/:questionId/options", questionController.CreateOption)
	question.Put("/:questionId/options/:optionId", questionController.UpdateOption)
	question.Delete("/:questionId/options/:optionId", questionController.DeleteOption)

	// Route and condition routes
	route := account.Group("/routes")
	route.Get("/", routeController.ListRoutes)
	route.Post("/", routeController.CreateRoute)
	route.Put("/:routeId", routeController.UpdateRoute)
	route.Delete("/:routeId", routeController.DeleteRoute)

	// Start trigger routes
	trigger := account.Group("/triggers")
	trigger.Get("/", triggerController.ListTriggers)
	trigger.Post("/", triggerController.CreateTrigger)
	trigger.Put("/:triggerId", triggerController.UpdateTrigger)
	trigger.Delete("/:triggerId", triggerController.DeleteTrigger)

	// Flow visualization and respondent routes
	flow := account.Group("/flow")
	flow.Get("/tree", flowController.GetFlowTree)
	flow.Get("/grid", flowController.GetFlowGrid)
	flow.Get("/matrix", flowController.GetResponseMatrix)

	// Question action routes
	action := account.Group("/actions")
	action.Get("/", actionController.ListActions)
	action.Post("/", actionController.CreateAction)
	action.Put("/:actionId", actionController.UpdateAction)
	action.Delete("/:actionId", actionController.DeleteAction)

	// Respondent routes
	respondent := account.Group("/line-users")
	respondent.Get("/", respondentController.ListLineUsers)
	respondent.Get("/:lineUserId/answers", respondentController.GetLineUserAnswers)

	// Scheduled message routes
	message := account.Group("/messages")
	message.Get("/", messageController.ListScheduledMessages)
	message.Post("/", messageController.CreateScheduledMessage)
	message.Put("/:messageId", messageController.UpdateScheduledMessage)
	message.Delete("/:messageId", messageController.DeleteScheduledMessage)

	// Email template routes; test sends are rate limited per account
	template := account.Group("/templates")
	template.Get("/", messageController.ListEmailTemplates)
	template.Post("/", messageController.CreateEmailTemplate)
	template.Put("/:templateId", messageController.UpdateEmailTemplate)
	template.Delete("/:templateId", messageController.DeleteEmailTemplate)
	template.Post("/:templateId/test-send", middleware.TestSendRateLimiter(), messageController.SendTestEmail)

	// Master duplication
	account.Post("/duplicate", duplicateController.DuplicateMaster)

	// Upload routes with rate limiting
	account.Post("/uploads", middleware.UploadRateLimiter(), uploadController.UploadImage)
	account.Get("/option-images", uploadController.ListOptionImages)
	account.Post("/option-images", uploadController.SetOptionImage)
	account.Delete("/option-images/:imageId", uploadController.DeleteOptionImage)

	// WebSocket route for the flow preview simulator
	app.Get("/api/v1/accounts/:accountId/flow/preview", middleware.Protected(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return websocket.New(flowController.PreviewFlow)(c)
		}
		return fiber.ErrUpgradeRequired
	})

	// Master data routes (admin only)
	master := api.Group("/master", middleware.AdminOnly())
	master.Get("/questions", masterController.ListMasterQuestions)
	master.Post("/questions", masterController.CreateMasterQuestion)
	master.Put("/questions/:questionId", masterController.UpdateMasterQuestion)
	master.Delete("/questions/:questionId", masterController.DeleteMasterQuestion)
	master.Post("/questions/:questionId/options", masterController.CreateMasterOption)
	master.Put("/questions/:questionId/options/:optionId", masterController.UpdateMasterOption)
	master.Delete("/questions/:questionId/options/:optionId", masterController.DeleteMasterOption)
	master.Get("/routes", masterController.ListMasterRoutes)
	master.Post("/routes", masterController.CreateMasterRoute)
	master.Put("/routes/:routeId", masterController.UpdateMasterRoute)
	master.Delete("/routes/:routeId", masterController.DeleteMasterRoute)
	master.Get("/triggers", masterController.ListMasterTriggers)
	master.Post("/triggers", masterController.CreateMasterTrigger)
	master.Delete("/triggers/:triggerId", masterController.DeleteMasterTrigger)
	master.Get("/templates", masterController.ListMasterTemplates)
	master.Post("/templates", masterController.CreateMasterTemplate)
	master.Put("/templates/:templateId", masterController.UpdateMasterTemplate)
	master.Delete("/templates/:templateId", masterController.DeleteMasterTemplate)
	master.Get("/messages", masterController.ListMasterMessages)
	master.Post("/messages", masterController.CreateMasterMessage)
	master.Put("/messages/:messageId", masterController.UpdateMasterMessage)
	master.Delete("/messages/:messageId", masterController.DeleteMasterMessage)

	log.Println("API routes initialized successfully")
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Setup auth routes
	SetupAuthRoutes(app, db)

	// Setup API routes
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
