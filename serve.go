package main

import (
	"context"
	"time"

	"mimo-api/config"
	"mimo-api/database"
	checkoutapi "mimo-api/internal/api/checkout"
	creatorsapi "mimo-api/internal/api/creators"
	"mimo-api/internal/api/functions"
	mediaapi "mimo-api/internal/api/media"
	packagesapi "mimo-api/internal/api/packages"
	rewardsapi "mimo-api/internal/api/rewards"
	stripewebhooks "mimo-api/internal/api/stripewebhook"
	withdrawalsapi "mimo-api/internal/api/withdrawals"
	"mimo-api/internal/app/checkout"
	"mimo-api/internal/app/earnings"
	routes "mimo-api/internal/app/http"
	"mimo-api/internal/app/http/middleware"
	"mimo-api/internal/app/mirror"
	"mimo-api/internal/app/packages"
	"mimo-api/internal/app/profile"
	"mimo-api/internal/app/rewards"
	"mimo-api/internal/domain/billing"
	"mimo-api/internal/infra/objectstore"
	"mimo-api/internal/infra/postgres"
	"mimo-api/internal/infra/redis"
	"mimo-api/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

func makeServeCMD() cli.Command {
	return cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves the API",
		Action:  serve,
	}
}

func serve(c *cli.Context) error {
	cfg := config.C
	logger := log.StandardLogger()

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	store := postgres.NewCatalogStore(db)

	rdb := redis.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer rdb.Close()
	var storage mirror.Storage = redis.NewStorage(rdb)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("redis unavailable, local mirror kept in memory")
		storage = mirror.NewMemoryStorage()
	}
	cancel()
	mir := mirror.New(storage, cfg.AppPrefix, logger)

	verifier, err := makeVerifier(cfg.Auth)
	if err != nil {
		return err
	}

	sync := packages.New(store, mir,
		packages.WithTimeout(cfg.SyncTimeout),
		packages.WithLogger(logger),
	)
	profiles := profile.NewService(store, mir, cfg.SyncTimeout, logger)

	var (
		issuerGateway   rewards.PaymentGateway
		checkoutGateway checkout.Gateway
	)
	if gw, err := stripe.NewGateway(cfg.Stripe.SecretKey); err == nil {
		issuerGateway, checkoutGateway = gw, gw
	} else {
		log.WithError(err).Warn("payments disabled")
		issuerGateway = unavailableGateway{}
	}
	issuer := rewards.NewIssuer(store, issuerGateway, cfg.RewardTTL, logger)

	var uploads mediaapi.Uploader
	if cfg.S3Enabled() {
		objects, err := objectstore.New(objectstore.Config{
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			UseSSL:    cfg.S3.UseSSL,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			return err
		}
		uploads = objects
	} else {
		log.Warn("S3 not configured, media uploads disabled")
	}

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(routes.CORS(cfg.CORSOrigin))

	routes.RegisterRoutes(r, routes.Handlers{
		Verifier:    verifier,
		Creators:    store,
		Packages:    packagesapi.NewHandler(sync),
		Profiles:    creatorsapi.NewHandler(profiles),
		Checkout:    checkoutapi.NewHandler(checkout.NewService(store, checkoutGateway, cfg.Stripe.Currency, cfg.AppURL, logger)),
		Rewards:     rewardsapi.NewHandler(issuer),
		Functions:   functions.NewHandler(issuer),
		Webhook:     stripewebhooks.NewHandler(cfg.Stripe.WebhookSecret, issuer, store),
		Withdrawals: withdrawalsapi.NewHandler(earnings.NewService(store)),
		Media:       mediaapi.NewHandler(uploads),
	})

	log.WithField("port", cfg.Port).Info("serving")
	return r.Run(":" + cfg.Port)
}

// makeVerifier accepts hosted-auth ID tokens when an issuer is configured and
// HMAC tokens when a secret is, trying OIDC first.
func makeVerifier(cfg config.AuthConfig) (middleware.Verifier, error) {
	var vs middleware.AnyVerifier
	if cfg.OIDCIssuer != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		v, err := middleware.NewOIDCVerifier(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	if cfg.JWTSecret != "" {
		vs = append(vs, middleware.NewHMACVerifier(cfg.JWTSecret))
	}
	return vs, nil
}

// unavailableGateway answers every verification with an error while Stripe
// is not configured.
type unavailableGateway struct{}

func (unavailableGateway) SessionStatus(context.Context, string) (*billing.PaymentSession, error) {
	return nil, stripe.ErrNotConfigured
}
