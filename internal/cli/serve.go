package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowplan/flowplan/pkg/cache"
	"github.com/flowplan/flowplan/pkg/pipeline"
	"github.com/flowplan/flowplan/pkg/server"
	"github.com/flowplan/flowplan/pkg/store"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string // listen address
	storeKind  string // memory or mongo
	mongoURI   string // mongo connection string
	cacheKind  string // none, file, or redis
	redisAddr  string // redis address
	redisDB    int    // redis database number
	cacheScope string // optional key namespace
}

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		storeKind: "memory",
		cacheKind: "file",
		redisAddr: "localhost:6379",
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP planning API",
		Long: `Run the HTTP planning API.

Plans are computed against the builtin catalog and persisted in the
configured store. Pipeline results are cached per stage; in multi-instance
deployments point --cache at a shared Redis.

Examples:
  flowplan serve
  flowplan serve --addr :9000 --cache redis --redis-addr cache:6379
  flowplan serve --store mongo --mongo-uri mongodb://localhost:27017`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.storeKind, "store", opts.storeKind, "plan store backend: memory or mongo")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo-uri", "", "MongoDB connection string (required with --store mongo)")
	cmd.Flags().StringVar(&opts.cacheKind, "cache", opts.cacheKind, "pipeline cache backend: none, file, or redis")
	cmd.Flags().StringVar(&opts.redisAddr, "redis-addr", opts.redisAddr, "Redis address (with --cache redis)")
	cmd.Flags().IntVar(&opts.redisDB, "redis-db", 0, "Redis database number")
	cmd.Flags().StringVar(&opts.cacheScope, "cache-scope", "", "namespace prefix for cache keys")

	return cmd
}

func runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	c, err := newServeCache(cmd, opts)
	if err != nil {
		return err
	}

	var keyer cache.Keyer
	if opts.cacheScope != "" {
		keyer = cache.NewScopedKeyer(cache.NewDefaultKeyer(), opts.cacheScope)
	}
	runner := pipeline.NewRunner(c, keyer, logger)
	defer runner.Close()

	st, err := newServeStore(cmd, opts)
	if err != nil {
		return err
	}
	defer st.Close(ctx)

	srv := server.New(server.Config{
		Addr:   opts.addr,
		Runner: runner,
		Store:  st,
		Logger: logger,
	})
	return srv.ListenAndServe(ctx)
}

func newServeCache(cmd *cobra.Command, opts serveOpts) (cache.Cache, error) {
	switch opts.cacheKind {
	case "none":
		return cache.NewNullCache(), nil
	case "file":
		dir, err := cacheDir()
		if err != nil {
			return nil, fmt.Errorf("get cache dir: %w", err)
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(cmd.Context(), cache.RedisConfig{
			Addr: opts.redisAddr,
			DB:   opts.redisDB,
		})
	default:
		return nil, fmt.Errorf("unknown cache backend %q (must be none, file, or redis)", opts.cacheKind)
	}
}

func newServeStore(cmd *cobra.Command, opts serveOpts) (store.Store, error) {
	switch opts.storeKind {
	case "memory":
		return store.NewMemoryStore(), nil
	case "mongo":
		if opts.mongoURI == "" {
			return nil, fmt.Errorf("--mongo-uri is required with --store mongo")
		}
		return store.NewMongoStore(cmd.Context(), store.MongoConfig{URI: opts.mongoURI})
	default:
		return nil, fmt.Errorf("unknown store backend %q (must be memory or mongo)", opts.storeKind)
	}
}
