package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"studyai/internal/bootstrap"
	"studyai/internal/metrics"
	"studyai/internal/transport/http/handler"
	"studyai/internal/transport/http/middleware"
)

const (
	// maxMediaBytes caps the optional recitation media part.
	maxMediaBytes = 25 << 20
	// maxRecitationBodyBytes caps a whole multipart recitation request.
	maxRecitationBodyBytes = 100 << 20
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(
		middleware.RequestLogger(app.Logger.Named("http")),
		middleware.Metrics(metrics.Default()),
		gin.Recovery(),
		middleware.CORS(),
	)

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/health", healthHandler.Live)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chatHandler := handler.NewChatHandler(app.Chat, app.Logger)
	quizHandler := handler.NewQuizHandler(app.Quiz, app.Logger)
	reciteHandler := handler.NewReciteHandler(app.Recite, maxMediaBytes, maxRecitationBodyBytes, app.Logger)

	api := router.Group("/api")

	chats := api.Group("/chats")
	chats.GET("", chatHandler.ListChats)
	chats.POST("", chatHandler.CreateChat)
	chats.GET("/:id", chatHandler.GetChat)
	chats.PUT("/:id", chatHandler.UpdateChat)
	chats.DELETE("/:id", chatHandler.DeleteChat)
	chats.POST("/:id/upload", chatHandler.UploadMaterial)
	chats.POST("/:id/materials", chatHandler.AddMaterial)

	materials := api.Group("/materials")
	materials.GET("/:id/content", chatHandler.MaterialContent)
	materials.DELETE("/:id", chatHandler.DeleteMaterial)

	quiz := api.Group("/quiz")
	quiz.POST("/generate", quizHandler.Generate)
	quiz.POST("/evaluate", quizHandler.Evaluate)
	quiz.POST("/:id/score", quizHandler.Score)

	api.POST("/recite/evaluate", reciteHandler.Evaluate)

	return router
}
