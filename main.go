package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/qehclinic/portal-backend/handlers"
	"github.com/qehclinic/portal-backend/internal/audit"
	"github.com/qehclinic/portal-backend/internal/config"
	contenthandler "github.com/qehclinic/portal-backend/internal/content/handler"
	contentrepo "github.com/qehclinic/portal-backend/internal/content/repository"
	contentservice "github.com/qehclinic/portal-backend/internal/content/service"
	"github.com/qehclinic/portal-backend/internal/database"
	"github.com/qehclinic/portal-backend/internal/oidc"
	"github.com/qehclinic/portal-backend/internal/sessions"
	"github.com/qehclinic/portal-backend/internal/storage"
	"github.com/qehclinic/portal-backend/internal/team"
	"github.com/qehclinic/portal-backend/internal/users"
	"github.com/qehclinic/portal-backend/pkg/logger"
	"github.com/qehclinic/portal-backend/pkg/metrics"
	"github.com/qehclinic/portal-backend/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// shared runtime vars used by handlers/readiness
	var verifier middleware.Verifier
	var userSvc *users.Service
	var sessionsSvc *sessions.Service

	// Connect to Redis early so the rate limiter and token blacklist can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("Connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness endpoint — 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if sessionsSvc == nil {
			deps["sessions"] = false
			ready = false
		} else {
			deps["sessions"] = true
			deps["users"] = (userSvc != nil)
		}

		if cfg.Keycloak.URL != "" {
			if verifier == nil {
				deps["oidc"] = false
				ready = false
			} else {
				deps["oidc"] = true
			}
		} else {
			deps["oidc"] = true
		}

		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": time.Since(startTime).String()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Keycloak OIDC verifier
	ctx := context.Background()
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		ver, err := oidc.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	} else if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" {
		// older deployments may expose the realm path in URL
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.URL, cfg.Keycloak.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier (fallback): %v", err)
		} else {
			verifier = ver
		}
	}

	// Insecure verifier for integration tests: parses claims without signature checks
	if verifier == nil && strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN"))) == "true" {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	// Prefer Redis-based sessions when available
	if redisClient != nil {
		srepo := sessions.NewRedisRepository(redisClient, "session:")
		sessionsSvc = sessions.NewService(srepo)
		logger.Infof("Using Redis for session storage")
	}

	// MongoDB-backed services: users, content, team, audit — plus sessions
	// when Redis did not claim them. Retry with backoff to tolerate startup races.
	var mongoDB *mongo.Database
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			mongoDB = client.Database(cfg.MongoDB.Database)
			userSvc = users.NewService(users.NewMongoUserRepository(mongoDB.Collection("users")))
			if sessionsSvc == nil {
				sessionsSvc = sessions.NewService(sessions.NewMongoRepository(mongoDB.Collection("sessions")))
			}
		}
	}

	// Object storage for editor image uploads (optional)
	var store *storage.MinIOStorage
	mcfg := storage.LoadMinIOConfig()
	if mcfg.Endpoint != "" {
		st, err := storage.NewMinIOStorage(mcfg)
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			store = st
		}
	}

	// Auth handlers need both user and session services
	if userSvc != nil && sessionsSvc != nil {
		h := handlers.NewAuthHandler(cfg, userSvc, sessionsSvc)
		h.Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because user/sessions services are unavailable")
	}
	handlers.RegisterSwagger(r)

	// Token middleware shared by every protected route
	var auth gin.HandlerFunc
	if verifier != nil {
		auth = middleware.AuthMiddleware(verifier)
	} else {
		auth = func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "authentication not configured"})
		}
	}

	// Content collections fall back to an in-memory store in dev mode
	var crepo contentrepo.Repository
	var trepo team.Repository
	var arepo audit.Repository
	if mongoDB != nil {
		crepo = contentrepo.NewMongoRepository(mongoDB)
		trepo = team.NewMongoRepository(mongoDB)
		arepo = audit.NewMongoRepository(mongoDB)
	} else {
		logger.Warnf("MongoDB unavailable: content served from in-memory stores")
		crepo = contentrepo.NewMemoryRepository()
		trepo = team.NewMemoryRepository()
		arepo = audit.NewMemoryRepository()
	}

	var contentImages contentservice.ImageRemover
	var teamImages team.ImageRemover
	if store != nil {
		contentImages = store
		teamImages = store
	}

	contenthandler.New(contentservice.NewService(crepo, contentImages)).RegisterRoutes(r, auth)
	team.NewHandler(team.NewService(trepo, teamImages)).RegisterRoutes(r, auth)
	audit.NewHandler(arepo).RegisterRoutes(r, auth)

	if store != nil {
		handlers.NewUploadHandler(store).Register(r, auth)
	} else {
		handlers.NewUploadHandler(nil).Register(r, auth)
	}

	api := r.Group("/api/v1")
	if verifier != nil {
		api.GET("/me", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
			claims, _ := c.Get("claims")
			if userSvc != nil {
				if cm, ok := claims.(map[string]interface{}); ok {
					u, err := userSvc.UpsertFromClaims(c.Request.Context(), cm)
					if err == nil && u != nil {
						c.JSON(http.StatusOK, gin.H{"user": u, "role": middleware.RoleFromContext(c).String()})
						return
					}
				}
			}
			c.JSON(http.StatusOK, gin.H{"claims": claims, "role": middleware.RoleFromContext(c).String()})
		})
	} else {
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "OIDC not configured"})
		})
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting portal backend on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
