package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"eventapi/config"
	"eventapi/images"
	"eventapi/metrics"
	"eventapi/middlewares"
	"eventapi/services"
	"eventapi/utils"
)

// AdminAuth holds what the login handler and the admin group need.
// PasswordHash empty disables login and the admin group with it.
type AdminAuth struct {
	PasswordHash string
	Secret       []byte
	TokenTTL     time.Duration
}

// adminSecret is nil while no password is configured, so tokens signed
// with a known secret never open the admin group.
func (a AdminAuth) adminSecret() []byte {
	if a.PasswordHash == "" {
		return nil
	}
	return a.Secret
}

type Options struct {
	Log       *slog.Logger
	BasePath  string
	Admin     *services.EventAdmin
	Registrar *services.Registrar
	Images    *images.Intake

	// ImageDir is served at ImagePublicPath when set (disk backend only).
	ImageDir        string
	ImagePublicPath string

	// Redis nil turns off the response cache and the registration quota.
	Redis       *redis.Client
	CacheTTL    time.Duration
	Limits      config.LimitsConfig
	Auth        AdminAuth
	CORSOrigins []string
	Metrics     *metrics.Metrics
}

// deps is what the handlers close over.
type deps struct {
	log       *slog.Logger
	admin     *services.EventAdmin
	registrar *services.Registrar
	images    *images.Intake
	inv       *utils.CacheInvalidator
	auth      AdminAuth
}

// NewServer builds the engine with the global middleware chain and every
// route mounted. ctx bounds the rate limiters' background janitors.
func NewServer(ctx context.Context, opts Options) *gin.Engine {
	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(middlewares.RequestLogger(opts.Log))
	if opts.Metrics != nil {
		server.Use(opts.Metrics.Middleware())
	}
	server.Use(middlewares.CORS(opts.CORSOrigins))

	RegisterRoutes(ctx, server, opts)
	return server
}

func RegisterRoutes(ctx context.Context, server *gin.Engine, opts Options) {
	d := &deps{
		log:       opts.Log,
		admin:     opts.Admin,
		registrar: opts.Registrar,
		images:    opts.Images,
		auth:      opts.Auth,
	}
	if opts.Redis != nil {
		d.inv = utils.NewCacheInvalidator(opts.Redis)
	}

	server.GET("/healthz", d.health)
	if opts.Metrics != nil {
		server.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.ImageDir != "" && opts.ImagePublicPath != "" {
		server.Static(opts.ImagePublicPath, opts.ImageDir)
	}

	api := server.Group(opts.BasePath)

	// global per-IP limit
	if opts.Limits.RPS > 0 {
		globalLimiter := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
			RPS:     opts.Limits.RPS,
			Burst:   opts.Limits.Burst,
			IdleTTL: 3 * time.Minute,
		})
		api.Use(globalLimiter.Middleware(func(c *gin.Context) string {
			return "ip:" + c.ClientIP()
		}))
	}

	public := api.Group("")
	if opts.Redis != nil {
		public.Use(middlewares.ResponseCache(opts.Redis, opts.CacheTTL))
	}
	public.GET("/events", d.getEvents)
	public.GET("/events/:id", d.getEvent)

	register := []gin.HandlerFunc{}
	if opts.Redis != nil && opts.Limits.RegisterQuota > 0 {
		register = append(register, middlewares.Quota(opts.Redis, middlewares.QuotaRule{
			Limit:  opts.Limits.RegisterQuota,
			Window: opts.Limits.RegisterWindow,
			KeyFn: func(c *gin.Context) string {
				return "quota:register:ip:" + c.ClientIP()
			},
		}))
	}
	register = append(register, d.registerForEvent)
	api.POST("/events/:id/register", register...)

	login := []gin.HandlerFunc{}
	if opts.Limits.LoginRPS > 0 {
		loginLimiter := middlewares.NewRateLimiter(ctx, middlewares.LimiterConfig{
			RPS:     opts.Limits.LoginRPS,
			Burst:   opts.Limits.LoginBurst,
			IdleTTL: 10 * time.Minute,
		})
		login = append(login, loginLimiter.Middleware(func(c *gin.Context) string {
			return "login:" + c.ClientIP()
		}))
	}
	login = append(login, d.adminLogin)
	api.POST("/admin/login", login...)

	admin := api.Group("")
	admin.Use(middlewares.AdminOnly(opts.Auth.adminSecret()))
	admin.GET("/admin/events", d.getAdminEvents)
	admin.POST("/admin/events", d.createEvent)
	admin.DELETE("/admin/events/:id", d.deleteEvent)
	admin.POST("/upload", d.uploadImage)
}

// purge drops cached reads after a write. A nil invalidator is a no-op.
func (d *deps) purge(c *gin.Context, id string) {
	ctx := c.Request.Context()
	d.inv.PurgeEventsList(ctx)
	if id != "" {
		d.inv.PurgeEventItem(ctx, id)
	}
}

func (d *deps) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := d.admin.Ping(ctx); err != nil {
		d.log.Warn("health check failed", utils.ErrAttr(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
