package routes

import (
	"net/http"
	"strings"
	"time"

	checkoutapi "mimo-api/internal/api/checkout"
	creatorsapi "mimo-api/internal/api/creators"
	"mimo-api/internal/api/functions"
	mediaapi "mimo-api/internal/api/media"
	packagesapi "mimo-api/internal/api/packages"
	rewardsapi "mimo-api/internal/api/rewards"
	stripewebhooks "mimo-api/internal/api/stripewebhook"
	withdrawalsapi "mimo-api/internal/api/withdrawals"
	"mimo-api/internal/app/http/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers is everything RegisterRoutes mounts.
type Handlers struct {
	Verifier middleware.Verifier
	Creators middleware.CreatorLookup

	Packages    *packagesapi.Handler
	Profiles    *creatorsapi.Handler
	Checkout    *checkoutapi.Handler
	Rewards     *rewardsapi.Handler
	Functions   *functions.Handler
	Webhook     *stripewebhooks.Handler
	Withdrawals *withdrawalsapi.Handler
	Media       *mediaapi.Handler
}

// functionHeaders are the request headers browser clients of hosted
// functions send.
var functionHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// CORS serves the API to the web app origin and the hosted functions under
// /functions/ to any origin. It has to be installed with Engine.Use so that
// pre-flight requests reach it.
func CORS(apiOrigin string) gin.HandlerFunc {
	api := cors.New(cors.Config{
		AllowOrigins:     []string{apiOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
	fn := cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodPost, http.MethodOptions},
		AllowHeaders:    functionHeaders,
	})
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/functions/") {
			fn(c)
			return
		}
		api(c)
	}
}

func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.POST("/webhook", h.Webhook.StripeWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	fn := r.Group("/functions/v1")
	fn.POST("/verify-payment", h.Functions.VerifyPayment)
	fn.OPTIONS("/verify-payment", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	public := r.Group("/")
	public.Use(middleware.OptionalAuth(h.Verifier))
	public.GET("/creators/:username", h.Profiles.Public)
	public.GET("/creators/:username/packages", h.Packages.ByUsername)
	public.GET("/rewards/:token", h.Rewards.Redeem)
	public.POST("/checkout/:username",
		middleware.SanitizeAndCleanInputMiddleware("fan_email", "package_id"),
		h.Checkout.Create)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(h.Verifier))
	auth.GET("/packages", h.Packages.List)
	auth.PUT("/packages", h.Packages.Save)
	auth.DELETE("/packages/:id", h.Packages.Delete)
	auth.GET("/profile", h.Profiles.Me)
	auth.PUT("/profile", h.Profiles.Update)
	auth.POST("/media", h.Media.Upload)

	// Creators with a profile
	creators := auth.Group("/")
	creators.Use(middleware.RequireCreator(h.Creators))
	creators.GET("/balance", h.Withdrawals.Balance)
	creators.GET("/withdrawals", h.Withdrawals.List)
	creators.POST("/withdrawals",
		middleware.SanitizeAndCleanInputMiddleware(),
		h.Withdrawals.Create)
}
