// Command gatewayserver wires the configuration, storage adapter,
// identity verifier, and generic handler into a running HTTP server,
// registering one route per specification path object.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bitechdev/specgateway/pkg/common"
	"github.com/bitechdev/specgateway/pkg/common/adapters/router"
	"github.com/bitechdev/specgateway/pkg/config"
	"github.com/bitechdev/specgateway/pkg/cursor"
	"github.com/bitechdev/specgateway/pkg/errortracking"
	"github.com/bitechdev/specgateway/pkg/gateway"
	"github.com/bitechdev/specgateway/pkg/identity"
	"github.com/bitechdev/specgateway/pkg/logger"
	"github.com/bitechdev/specgateway/pkg/metrics"
	"github.com/bitechdev/specgateway/pkg/middleware"
	"github.com/bitechdev/specgateway/pkg/openapi"
	"github.com/bitechdev/specgateway/pkg/server"
	"github.com/bitechdev/specgateway/pkg/specdoc"
	"github.com/bitechdev/specgateway/pkg/storage"
	"github.com/bitechdev/specgateway/pkg/storage/docstore"
	"github.com/bitechdev/specgateway/pkg/storage/keystore"
	"github.com/bitechdev/specgateway/pkg/tracing"
)

func main() {
	cfgMgr := config.NewManager()
	if err := cfgMgr.Load(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	cfg, err := cfgMgr.GetConfig()
	if err != nil {
		log.Fatalf("Failed to get configuration: %v", err)
	}

	logger.Init(cfg.Logger.Dev)
	if cfg.Logger.Path != "" {
		logger.UpdateLoggerPath(cfg.Logger.Path, cfg.Logger.Dev)
	}
	logger.Info("specgateway starting")
	logger.Info("Configuration loaded - Server will listen on: %s", cfg.Server.Addr)

	if cfg.ErrorTracking.Enabled {
		tracker, err := errortracking.NewProviderFromConfig(cfg.ErrorTracking)
		if err != nil {
			logger.Error("Failed to initialize error tracking: %v", err)
		} else {
			logger.InitErrorTracking(tracker)
		}
	}

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := tracing.InitTracer(tracing.Config{
			ServiceName:    cfg.Tracing.ServiceName,
			ServiceVersion: cfg.Tracing.ServiceVersion,
			Endpoint:       cfg.Tracing.Endpoint,
		})
		if err != nil {
			logger.Error("Failed to initialize tracing: %v", err)
		} else {
			defer func() {
				if err := shutdownTracer(ctx); err != nil {
					logger.Warn("Failed to shut down tracer: %v", err)
				}
			}()
		}
	}

	metrics.SetProvider(metrics.NewPrometheusProvider(metrics.DefaultConfig()))

	doc, err := specdoc.Load(cfg.Spec.Path)
	if err != nil {
		logger.Error("Failed to load specification document: %v", err)
		os.Exit(1)
	}
	resolver := specdoc.NewResolver(doc)

	adapter, closeAdapter, err := initStorage(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage adapter: %v", err)
		os.Exit(1)
	}
	defer closeAdapter()

	cursorCodec, err := initCursorCodec(cfg)
	if err != nil {
		logger.Error("Failed to initialize cursor codec: %v", err)
		os.Exit(1)
	}

	verifier := identity.NewVerifier(identity.Config{
		Issuer:   cfg.Identity.Issuer,
		Audience: cfg.Identity.Audience,
		JWKSURL:  cfg.Identity.JWKSURL,
	})

	handler := gateway.NewHandler(resolver, adapter, cursorCodec, verifier)

	muxRouter := mux.NewRouter()
	registerRoutes(muxRouter, doc, handler)
	registerDocsRoutes(muxRouter, cfg.Spec.Path)

	chain := buildMiddlewareChain(cfg, muxRouter)

	mgr := server.NewManager()

	host, port, err := splitAddr(cfg.Server.Addr)
	if err != nil {
		logger.Error("Invalid server address: %s", cfg.Server.Addr)
		os.Exit(1)
	}

	_, err = mgr.Add(server.Config{
		Name:            "gateway",
		Host:            host,
		Port:            port,
		Handler:         chain,
		GZIP:            true,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		DrainTimeout:    cfg.Server.DrainTimeout,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
	})
	if err != nil {
		logger.Error("Failed to add server: %v", err)
		os.Exit(1)
	}

	mgr.RegisterShutdownCallback(func(ctx context.Context) error {
		return logger.CloseErrorTracking()
	})

	logger.Info("Starting server on %s", cfg.Server.Addr)
	if err := mgr.ServeWithGracefulShutdown(); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

// registerRoutes binds the generic handler to one route per specification
// path object, using each path's own declared template: route resolution
// needs the template a request's URL was matched against, not the literal
// incoming path, so a single catch-all registration cannot work here.
func registerRoutes(muxRouter *mux.Router, doc *specdoc.Document, handler *gateway.Handler) {
	adapter := router.NewMuxAdapter(muxRouter)
	for template, path := range doc.Paths {
		methods := make([]string, 0, len(path.Operations))
		for method := range path.Operations {
			methods = append(methods, method)
		}
		if len(methods) == 0 {
			continue
		}
		adapter.HandleFunc(template, handler.Route(template)).Methods(methods...)
		adapter.HandleFunc(template+"/pages/{cursor}", handler.Route(template)).Methods(http.MethodGet)
	}
}

// registerDocsRoutes serves the raw specification document and an
// interactive UI over it, so the same document that drives routing is
// also what operators browse.
func registerDocsRoutes(muxRouter *mux.Router, specPath string) {
	muxRouter.HandleFunc("/openapi", func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(specPath)
		if err != nil {
			http.Error(w, "specification document unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(data)
	}).Methods(http.MethodGet)

	openapi.SetupUIRoute(muxRouter, "/docs", openapi.UIConfig{
		UIType:  openapi.SwaggerUI,
		SpecURL: "/openapi",
		Title:   "Gateway API Documentation",
	})
}

// buildMiddlewareChain wraps the router with the ambient request
// pipeline, outermost first: tracing (when enabled), CORS/security
// headers, rate limiting, size limiting, panic recovery, and input
// sanitization.
func buildMiddlewareChain(cfg *config.Config, next http.Handler) http.Handler {
	h := next

	sanitizer := middleware.DefaultSanitizer()
	h = sanitizer.Middleware(h)

	h = middleware.PanicRecovery(h)

	if cfg.Middleware.MaxRequestSize > 0 {
		h = middleware.NewRequestSizeLimiter(cfg.Middleware.MaxRequestSize).Middleware(h)
	}

	if cfg.Middleware.RateLimitRPS > 0 {
		h = middleware.NewRateLimiter(cfg.Middleware.RateLimitRPS, cfg.Middleware.RateLimitBurst).Middleware(h)
	}

	h = common.SecurityMiddleware(common.DefaultCORSConfig(cfg))(h)

	if cfg.Tracing.Enabled {
		h = tracing.Middleware(h)
	}

	return h
}

// initStorage selects and connects the active storage.Adapter per
// Storage.Type, returning a close function that releases the
// underlying connection.
func initStorage(ctx context.Context, cfg *config.Config) (storage.Adapter, func(), error) {
	switch cfg.Storage.Type {
	case "docstore":
		clientOpts := options.Client().ApplyURI(cfg.Storage.Docstore.URI)
		client, err := mongo.Connect(ctx, clientOpts)
		if err != nil {
			return nil, nil, fmt.Errorf("connect mongodb: %w", err)
		}
		db := client.Database(cfg.Storage.Docstore.Database)
		auditWriter := docstore.NewAuditWriter(db, cfg.Audit.Name)
		adapter := docstore.New(db, auditWriter)
		closeFn := func() {
			if err := client.Disconnect(ctx); err != nil {
				logger.Warn("Failed to disconnect mongodb: %v", err)
			}
		}
		return adapter, closeFn, nil

	case "keystore", "":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Keystore.Addr,
			Password: cfg.Storage.Keystore.Password,
			DB:       cfg.Storage.Keystore.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		auditWriter := keystore.NewAuditWriter(client, cfg.Audit.Name)
		adapter := keystore.New(client, auditWriter)
		closeFn := func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close redis client: %v", err)
			}
		}
		return adapter, closeFn, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

// initCursorCodec builds the cursor encryption codec. An unconfigured
// KMS falls back to a no-op pass-through; otherwise a local AEAD
// stand-in is used, keyed by KMS.LocalKey under the KMS.KeyRing name.
func initCursorCodec(cfg *config.Config) (*cursor.Codec, error) {
	info := cursor.KeyInfo{
		KeyRing:  cfg.KMS.KeyRing,
		Key:      cfg.KMS.Key,
		Location: cfg.KMS.Location,
		Project:  cfg.KMS.Project,
	}

	if cfg.KMS.KeyInfo == "" || cfg.KMS.LocalKey == "" {
		return cursor.NewCodec(cursor.NoopKMS{}, cursor.KeyInfo{}), nil
	}

	client, err := cursor.NewLocalAEADKMS(map[string]string{cfg.KMS.KeyRing: cfg.KMS.LocalKey})
	if err != nil {
		return nil, fmt.Errorf("build local cursor KMS: %w", err)
	}
	return cursor.NewCodec(client, info), nil
}

// splitAddr parses a "host:port" or ":port" server address.
func splitAddr(addr string) (string, int, error) {
	host := ""
	port := 8080
	if addr == "" {
		return host, port, nil
	}
	if addr[0] == ':' {
		if _, err := fmt.Sscanf(addr, ":%d", &port); err != nil {
			return "", 0, err
		}
		return host, port, nil
	}
	sep := len(addr) - 1
	for sep >= 0 && addr[sep] != ':' {
		sep--
	}
	if sep < 0 {
		return "", 0, fmt.Errorf("address %q has no port", addr)
	}
	host = addr[:sep]
	if _, err := fmt.Sscanf(addr[sep+1:], "%d", &port); err != nil {
		return "", 0, err
	}
	return host, port, nil
}
