package server

import (
	"context"
	"net/http"
	"time"

	"github.com/chakri8826/Student-Interview-App/internal/activity"
	"github.com/chakri8826/Student-Interview-App/internal/ai"
	"github.com/chakri8826/Student-Interview-App/internal/auth"
	"github.com/chakri8826/Student-Interview-App/internal/config"
	"github.com/chakri8826/Student-Interview-App/internal/conversation"
	"github.com/chakri8826/Student-Interview-App/internal/document"
	"github.com/chakri8826/Student-Interview-App/internal/notify"
	"github.com/chakri8826/Student-Interview-App/internal/role"
	"github.com/chakri8826/Student-Interview-App/internal/screening"
	"github.com/chakri8826/Student-Interview-App/internal/session"
	"github.com/chakri8826/Student-Interview-App/internal/user"
	"github.com/chakri8826/Student-Interview-App/internal/wallet"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, notifier *notify.Service, store document.ObjectStore) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	walletRepo := wallet.NewRepository(db)
	roleRepo := role.NewRepository(db)
	cvRepo := document.NewRepository(db)
	sessionRepo := session.NewRepository(db)

	convClient := conversation.NewClient(cfg)
	analyzer := ai.NewClient(cfg)

	sessionService := session.NewService(sessionRepo, walletRepo, roleRepo, userRepo, convClient, notifier, cfg)
	screeningService := screening.NewService(sessionRepo, walletRepo, cvRepo, store, analyzer)

	userHandler := user.NewHandler(db, cfg.JWTSecret)
	walletHandler := wallet.NewHandler(db)
	roleHandler := role.NewHandler(db)
	documentHandler := document.NewHandler(db, store)
	sessionHandler := session.NewHandler(sessionService)
	screeningHandler := screening.NewHandler(screeningService)
	activityHandler := activity.NewHandler(db)
	webhookHandler := session.NewWebhookHandler(sessionRepo, userRepo, notifier)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	// Vendor callback. Unauthenticated: the vendor signs nothing and
	// the handler acknowledges everything.
	router.POST("/interviews/webhook", webhookHandler.Handle)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)

		protected.GET("/wallet", walletHandler.GetWallet)
		protected.POST("/payments/order", walletHandler.CreateOrder)
		protected.GET("/transactions", walletHandler.ListTransactions)

		protected.GET("/roles", roleHandler.ListRoles)
		protected.GET("/my/roles", roleHandler.ListSelections)
		protected.POST("/my/roles", roleHandler.AddSelections)
		protected.POST("/my/roles/set", roleHandler.SetSelections)

		protected.POST("/cv/upload", documentHandler.Upload)
		protected.GET("/cv", documentHandler.List)

		protected.POST("/screenings/run", screeningHandler.Run)
		protected.GET("/screenings/:screeningID", screeningHandler.Get)

		protected.POST("/interviews/start", sessionHandler.StartInterview)
		protected.GET("/interviews", sessionHandler.ListInterviews)
		protected.GET("/interviews/:sessionID", sessionHandler.GetInterview)

		protected.GET("/activities", activityHandler.List)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
