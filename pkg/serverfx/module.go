package serverfx

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/joeydtaylor/steeze-rpc/pkg/audit"
	"github.com/joeydtaylor/steeze-rpc/pkg/bundlefx"
	"github.com/joeydtaylor/steeze-rpc/pkg/core"
	"github.com/joeydtaylor/steeze-rpc/pkg/dispatch"
	"github.com/joeydtaylor/steeze-rpc/pkg/manifest"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/auth"
	"github.com/joeydtaylor/steeze-rpc/pkg/middleware/logger"
	hmetrics "github.com/joeydtaylor/steeze-rpc/pkg/middleware/metrics"
	"github.com/joeydtaylor/steeze-rpc/pkg/observability"
	"github.com/joeydtaylor/steeze-rpc/pkg/registry"
	"github.com/joeydtaylor/steeze-rpc/pkg/transport/httpx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ---------- Options ----------

type Config struct {
	Service       string // for logs only
	ConfigFile    string // explicit path; wins over ConfigEnv
	ConfigEnv     string // e.g., STEEZE_RPC_CONFIG
	DefaultConfig string // used when ConfigEnv is unset and the file exists
	Registrars    []func(*registry.Registry) error
}

type Option func(*Config)

func WithService(s string) Option          { return func(c *Config) { c.Service = s } }
func WithConfigEnv(k string) Option        { return func(c *Config) { c.ConfigEnv = k } }
func WithConfigFile(path string) Option    { return func(c *Config) { c.ConfigFile = path } }
func WithDefaultConfig(path string) Option { return func(c *Config) { c.DefaultConfig = path } }

// WithRegistry adds a hook that registers functions before the registry is frozen.
func WithRegistry(fn func(*registry.Registry) error) Option {
	return func(c *Config) { c.Registrars = append(c.Registrars, fn) }
}

func defaultConfig() Config {
	return Config{
		Service:       "steeze-rpc",
		ConfigEnv:     "STEEZE_RPC_CONFIG",
		DefaultConfig: "steeze-rpc.toml",
	}
}

// Module returns a complete Fx option set serving the bridge.
func Module(opts ...Option) fx.Option {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return fx.Options(
		fx.Provide(func() Config { return cfg }),
		fx.Provide(provideManifest),
		// Core middleware
		bundlefx.Module,
		// Router impl
		fx.Provide(httpx.NewChi),
		fx.Provide(provideRegistry),
		fx.Provide(provideAudit),
		fx.Provide(provideDispatcher),
		fx.Provide(fx.Annotate(
			provideRouter,
			fx.ParamTags(``, ``, ``, `name:"metrics"`, ``, ``, ``), // man,a,lm,m,d,r,zl
			fx.ResultTags(`name:"app"`),
		)),
		// Lifecycle
		fx.Invoke(registerTracing),
		fx.Invoke(registerHooks),
	)
}

// ConfigPath resolves which document to load: ConfigFile, the env var, the
// default file when present, else none (defaults plus environment).
func (c Config) ConfigPath() string {
	if c.ConfigFile != "" {
		return c.ConfigFile
	}
	if v := os.Getenv(c.ConfigEnv); c.ConfigEnv != "" && v != "" {
		return v
	}
	if fileExists(c.DefaultConfig) {
		return c.DefaultConfig
	}
	return ""
}

func provideManifest(cfg Config) (manifest.Config, error) {
	return core.LoadConfig(cfg.ConfigPath())
}

// ---------- Registry / dispatch ----------

func provideRegistry(cfg Config, man manifest.Config, zl *zap.Logger) (*registry.Registry, error) {
	reg := registry.New()
	for _, fn := range cfg.Registrars {
		if err := fn(reg); err != nil {
			return nil, err
		}
	}
	if len(man.Dispatch.Functions) > 0 {
		sub, err := reg.Subset(man.Dispatch.Functions)
		if err != nil {
			return nil, err
		}
		reg = sub
	}
	reg.Freeze()
	zl.Info("registry frozen", zap.String("service", cfg.Service), zap.Strings("functions", reg.Names()))
	return reg, nil
}

func provideAudit(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) (audit.Publisher, error) {
	if len(man.Audit.Targets) == 0 {
		return audit.Noop{}, nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	pub, err := audit.NewRelayPublisher(ctx, audit.RelayOptions{
		Targets:        man.Audit.Targets,
		Topic:          man.Audit.Topic,
		CompressSnappy: man.Audit.CompressSnappy,
		StaticHeaders:  man.Audit.StaticHeaders,
		TLSEnable:      man.Audit.TLS.Enable,
		TLSClientCrt:   man.Audit.TLS.ClientCert,
		TLSClientKey:   man.Audit.TLS.ClientKey,
		TLSCA:          man.Audit.TLS.CA,

		AESKeyHex:         man.Audit.AESKeyHex,
		OAuthIssuer:       man.Audit.OAuth.Issuer,
		OAuthJWKSURL:      man.Audit.OAuth.JWKSURL,
		OAuthClientID:     man.Audit.OAuth.ClientID,
		OAuthClientSecret: man.Audit.OAuth.ClientSecret,
		OAuthScopes:       man.Audit.OAuth.Scopes,
		OAuthLeeway:       man.AuditOAuthLeeway(),
	})
	if err != nil {
		cancel()
		return nil, err
	}
	zl.Info("audit relay started", zap.Strings("targets", man.Audit.Targets), zap.String("topic", man.Audit.Topic))
	lc.Append(fx.Hook{OnStop: func(context.Context) error { cancel(); return nil }})
	return pub, nil
}

func provideDispatcher(reg *registry.Registry, pub audit.Publisher, zl *zap.Logger) *dispatch.Dispatcher {
	// the HTTP routes carry the per-invocation deadline
	return dispatch.New(reg, dispatch.Options{Logger: zl, Audit: pub})
}

// ---------- Router ----------

func provideRouter(
	man manifest.Config,
	a *auth.Middleware,
	lm *logger.Middleware,
	/* name:"metrics" */ m http.Handler,
	d *dispatch.Dispatcher,
	r httpx.Router,
	zl *zap.Logger,
) (http.Handler, error) {
	hmetrics.SetPathNormalizer(hmetrics.RoutePattern)
	h, err := core.BuildRouter(man, core.BuildDeps{
		Auth:       a,
		LogMW:      lm,
		Metrics:    m,
		Router:     r,
		Dispatcher: d,
	})
	if err != nil {
		return nil, err
	}
	_ = r.Walk(func(method, route string) {
		zl.Debug("route", zap.String("method", method), zap.String("path", route))
	})
	return h, nil
}

// ---------- Lifecycle (tracing + HTTP server) ----------

func registerTracing(lc fx.Lifecycle, man manifest.Config, zl *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			err := observability.Init(ctx, observability.Config{
				Enabled:     man.Tracing.Enabled,
				Endpoint:    man.Tracing.Endpoint,
				ServiceName: man.Tracing.ServiceName,
				SampleRate:  man.Tracing.SampleRate,
			})
			if err != nil {
				return err
			}
			if man.Tracing.Enabled {
				zl.Info("tracing enabled", zap.String("endpoint", man.Tracing.Endpoint))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return observability.Shutdown(ctx)
		},
	})
}

type serverDeps struct {
	fx.In
	Logger *zap.Logger
	App    http.Handler `name:"app"`
}

func registerHooks(lc fx.Lifecycle, man manifest.Config, d serverDeps) {
	addr := man.Server.Listen
	cert, key := man.Server.TLSCert, man.Server.TLSKey

	srv := &http.Server{
		Addr:         addr,
		Handler:      d.App,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: man.DispatchTimeout() + 30*time.Second,
		IdleTimeout:  60 * time.Second,
		TLSConfig:    &tls.Config{MinVersion: tls.VersionTLS13, MaxVersion: tls.VersionTLS13},
	}
	useTLS := fileExists(cert) && fileExists(key)
	if man.TLSEnabled() && !useTLS {
		d.Logger.Warn("tls files not found; serving plaintext", zap.String("cert", cert), zap.String("key", key))
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if useTLS {
				d.Logger.Info("server starting (TLS)", zap.String("addr", addr), zap.String("cert", cert))
				go func() {
					if err := srv.ListenAndServeTLS(cert, key); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			} else {
				d.Logger.Info("server starting (PLAINTEXT)", zap.String("addr", addr))
				srv.TLSConfig = nil
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						d.Logger.Fatal("server failed", zap.Error(err))
					}
				}()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			d.Logger.Info("server stopping")
			return srv.Shutdown(ctx)
		},
	})
}

// ---------- tiny helpers ----------

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
