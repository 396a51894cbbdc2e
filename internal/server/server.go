// Package server wires the TaskHive modules into one HTTP application.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/taskhive/taskhive/biz/activity"
	activityrepo "github.com/taskhive/taskhive/biz/activity/data/repository"
	"github.com/taskhive/taskhive/biz/attachment"
	"github.com/taskhive/taskhive/biz/board"
	"github.com/taskhive/taskhive/biz/card"
	"github.com/taskhive/taskhive/biz/comment"
	"github.com/taskhive/taskhive/biz/reminder"
	"github.com/taskhive/taskhive/biz/tasklist"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/core/access"
	"github.com/taskhive/taskhive/core/auth"
	"github.com/taskhive/taskhive/core/user"
	"github.com/taskhive/taskhive/core/workspace"
	"github.com/taskhive/taskhive/ctxutil"
	"github.com/taskhive/taskhive/data"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/messaging/email"
	"github.com/taskhive/taskhive/metrics"
	"github.com/taskhive/taskhive/net/resp"
	"github.com/taskhive/taskhive/oss"
	"github.com/taskhive/taskhive/plugin/notification"
	"github.com/taskhive/taskhive/security/oauth"
	"github.com/taskhive/taskhive/tracing"
	"github.com/taskhive/taskhive/version"
)

// Module is a feature package that serves HTTP routes.
type Module interface {
	Name() string
	RegisterRoutes(r *gin.RouterGroup)
}

// Option overrides a dependency the server would otherwise build from
// configuration.
type Option func(*options)

type options struct {
	data    *data.Data
	sender  email.Sender
	storage oss.Interface
	oauth   auth.OAuthClient
}

// WithData uses an already migrated data layer. The caller closes it.
func WithData(d *data.Data) Option {
	return func(o *options) { o.data = d }
}

func WithEmailSender(s email.Sender) Option {
	return func(o *options) { o.sender = s }
}

func WithStorage(s oss.Interface) Option {
	return func(o *options) { o.storage = s }
}

// WithOAuthClient enables OAuth sign-in with c regardless of which
// providers are configured.
func WithOAuthClient(c auth.OAuthClient) Option {
	return func(o *options) { o.oauth = c }
}

type Server struct {
	config  *config.Config
	logger  *logger.Logger
	data    *data.Data
	storage oss.Interface
	metrics *metrics.Collector

	auth      *auth.Module
	public    []Module
	protected []Module
	reminders *reminder.Module

	engine   *gin.Engine
	cleanups []func(context.Context)
}

// New builds every module and the access guard shared by them.
func New(ctx context.Context, cfg *config.Config, l *logger.Logger, opts ...Option) (_ *Server, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if l == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{config: cfg, logger: l, metrics: metrics.NewCollector("", metrics.DefaultMaxSamples)}
	defer func() {
		if err != nil {
			s.Cleanup(context.Background())
		}
	}()

	if err = s.initData(ctx, o.data); err != nil {
		return nil, err
	}

	s.storage = o.storage
	if s.storage == nil {
		if s.storage, err = oss.NewStorage(ctx, cfg.Storage); err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
	}
	l.Info(ctx, "Attachment storage ready", "provider", s.storage.Name())

	sender := o.sender
	if sender == nil {
		if sender, err = email.NewSender(cfg.Email, l); err != nil {
			return nil, fmt.Errorf("failed to initialize email: %w", err)
		}
	}
	notifications := notification.New(sender, l)

	cacheTTL := time.Duration(0)
	if cfg.Data.Redis != nil {
		cacheTTL = cfg.Data.Redis.TTL
	}
	users, err := user.New(s.data, l)
	if err != nil {
		return nil, err
	}
	workspaces, err := workspace.New(s.data, l, cacheTTL)
	if err != nil {
		return nil, err
	}
	boards, err := board.New(s.data, l, cacheTTL)
	if err != nil {
		return nil, err
	}
	lists, err := tasklist.New(s.data, l)
	if err != nil {
		return nil, err
	}
	cards, err := card.New(s.data, l)
	if err != nil {
		return nil, err
	}
	comments, err := comment.New(s.data, l)
	if err != nil {
		return nil, err
	}
	attachments, err := attachment.New(s.data, l)
	if err != nil {
		return nil, err
	}

	guard := access.NewGuard(access.Finders{
		Workspaces:  workspaces.Repository(),
		Boards:      boards.Repository(),
		Lists:       lists.Repository(),
		Cards:       cards.Repository(),
		Comments:    comments.Repository(),
		Attachments: attachments.Repository(),
	})

	store, err := s.activityStore(ctx)
	if err != nil {
		return nil, err
	}
	activities := activity.New(store, guard, l)
	recorder := activities.Service()

	workspaces.Init(guard, users.Repository())
	workspaces.Service().SetCollaborators(notifications.Service(), recorder, s.storage)
	boards.Init(guard, recorder, s.storage)
	lists.Init(guard, recorder, s.storage)
	cards.Init(guard, recorder, s.storage)
	comments.Init(guard)
	attachments.Init(guard, s.storage, cfg.Storage.MaxUploadSize)

	s.auth = auth.New(cfg.Auth, users.Repository(), workspaces.Service(), s.data, l)
	s.auth.SetOTP(notifications.Service(), cfg.Auth)
	switch {
	case o.oauth != nil:
		s.auth.SetOAuth(o.oauth, cfg.OAuth)
	case cfg.OAuth != nil && (cfg.OAuth.Google.Enabled() || cfg.OAuth.Github.Enabled()):
		s.auth.SetOAuth(oauth.NewClient(cfg.OAuth), cfg.OAuth)
	}

	runner := reminder.NewRunner(cards.Repository(), users.Repository(), notifications.Service(), l, cfg.Reminder,
		reminder.WithMetrics(s.metrics))
	s.reminders = reminder.New(runner, cards.Repository(), workspaces.Service(), l)

	s.public = []Module{s.auth}
	s.protected = []Module{users, workspaces, boards, lists, cards, comments, attachments, activities, s.reminders}

	l.Info(ctx, "Modules initialized", "count", len(s.public)+len(s.protected)+1, "notification", notifications.Name())
	return s, nil
}

func (s *Server) initData(ctx context.Context, d *data.Data) error {
	if d != nil {
		s.data = d
		return nil
	}
	d, cleanup, err := data.New(s.config.Data, s.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize data layer: %w", err)
	}
	s.data = d
	s.cleanups = append(s.cleanups, func(context.Context) { cleanup() })

	if s.config.Data.Database.Migrate {
		applied, err := d.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		if len(applied) > 0 {
			s.logger.Info(ctx, "Migrations applied", "versions", applied)
		}
	}
	return nil
}

func (s *Server) activityStore(ctx context.Context) (activity.Store, error) {
	cfg := s.config.Activity
	if cfg == nil || cfg.Store != "mongo" {
		return activityrepo.NewSQLStore(s.data, s.logger)
	}
	coll, disconnect, err := activityrepo.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to connect activity store: %w", err)
	}
	s.cleanups = append(s.cleanups, func(ctx context.Context) {
		if err := disconnect(ctx); err != nil {
			s.logger.Warn(ctx, "Failed to disconnect mongo", "error", err)
		}
	})
	return activityrepo.NewMongoStore(coll, s.logger)
}

// Data returns the data layer.
func (s *Server) Data() *data.Data {
	return s.data
}

// Metrics returns the request and reminder metrics.
func (s *Server) Metrics() *metrics.Collector {
	return s.metrics
}

// Reminders returns the reminder module.
func (s *Server) Reminders() *reminder.Module {
	return s.reminders
}

// SetupRouter builds the gin engine. Public routes live under /api, the
// rest under /api behind the auth middleware.
func (s *Server) SetupRouter() *gin.Engine {
	if s.engine != nil {
		return s.engine
	}
	switch s.config.RunMode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(s.config.RunMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(tracing.Middleware(s.config.AppName))
	r.Use(s.loggerMiddleware())

	r.GET("/health", s.handleHealth)
	r.GET("/version", func(c *gin.Context) {
		resp.Success(c.Writer, version.GetVersionInfo())
	})
	r.GET("/metrics", func(c *gin.Context) {
		resp.Success(c.Writer, s.metrics.Snapshot())
	})

	api := r.Group("/api")
	for _, m := range s.public {
		m.RegisterRoutes(api)
	}
	protected := api.Group("", s.auth.Middleware().AuthMiddleware())
	for _, m := range s.protected {
		m.RegisterRoutes(protected)
	}

	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotFound("route not found"))
	})

	s.engine = r
	return r
}

// Handler is the router wrapped in the CORS handler.
func (s *Server) Handler() http.Handler {
	origins := []string{"*"}
	if s.config.Server != nil && len(s.config.Server.CORSOrigins) > 0 {
		origins = s.config.Server.CORSOrigins
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{tracing.TraceIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(s.SetupRouter())
}

// Start launches the background reminder scan when it is enabled.
func (s *Server) Start(ctx context.Context) {
	if s.config.Reminder != nil && !s.config.Reminder.Enabled {
		s.logger.Info(ctx, "Reminder scheduler disabled")
		return
	}
	s.reminders.Runner().Start(ctx)
}

// Cleanup stops the reminder scan and closes connections in reverse order.
func (s *Server) Cleanup(ctx context.Context) {
	if s.reminders != nil {
		s.reminders.Runner().Stop()
	}
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i](ctx)
	}
	s.cleanups = nil
}

func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	status := s.data.Health(ctx)
	status["version"] = version.Version
	if status["status"] != "healthy" {
		resp.WithStatusCode(c.Writer, http.StatusServiceUnavailable, status)
		return
	}
	resp.Success(c.Writer, status)
}

func (s *Server) loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		ctx := c.Request.Context()
		elapsed := time.Since(start)
		s.metrics.AddCounter("http_requests_total", 1)
		s.metrics.RecordDuration("http_request_seconds", elapsed)
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.metrics.AddCounter("http_errors_total", 1)
		}

		fields := []any{
			"method", method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", elapsed.String(),
		}
		if uid := ctxutil.GetUserID(c); uid != "" {
			fields = append(fields, "user_id", uid)
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error(ctx, "HTTP request", fields...)
			return
		}
		s.logger.Info(ctx, "HTTP request", fields...)
	}
}
