package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hzerrad/cronsched/internal/cronx"
	"github.com/hzerrad/cronsched/internal/executor"
	"github.com/hzerrad/cronsched/internal/logging"
	"github.com/hzerrad/cronsched/internal/manifest"
	"github.com/hzerrad/cronsched/internal/registry"
	"github.com/hzerrad/cronsched/internal/store"
	"github.com/hzerrad/cronsched/internal/store/memstore"
	"github.com/hzerrad/cronsched/internal/store/mongostore"
	"github.com/hzerrad/cronsched/internal/store/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// RunCommand wraps cobra.Command for the "run" subcommand, which loads
// a manifest and actually starts the scheduler instead of just
// inspecting it.
type RunCommand struct {
	*cobra.Command
	file          string
	storeBackend  string
	mongoURI      string
	mongoDB       string
	mongoColl     string
	redisAddr     string
	logLevel      string
	env           string
	utc           bool
	ttl           int
	shutdownGrace time.Duration
}

func newRunCommand() *RunCommand {
	rc := &RunCommand{}
	rc.Command = &cobra.Command{
		Use:   "run",
		Short: "Start the scheduler from a manifest",
		Long: `Load a manifest and run its jobs for real: resolve every entry's
schedule, wire its handler, and drive it through the registry until
interrupted.

Since a manifest names handlers by string rather than embedding Go
code, jobs run against a logging stand-in handler that records each
firing — wire your own handler table in-process via the registry
package for production use.

Examples:
  cronsched run --file manifest.yaml
  cronsched run --file manifest.yaml --store redis --redis-addr localhost:6379
  cronsched run --file manifest.yaml --store mongo --mongo-uri mongodb://localhost:27017`,
		RunE: rc.runRun,
		Args: cobra.NoArgs,
	}

	rc.Flags().StringVarP(&rc.file, "file", "f", "", "Path to manifest file (required)")
	rc.Flags().StringVar(&rc.storeBackend, "store", "mem", "History store backend: 'mem', 'mongo', or 'redis'")
	rc.Flags().StringVar(&rc.mongoURI, "mongo-uri", "mongodb://localhost:27017", "Mongo connection URI (--store mongo)")
	rc.Flags().StringVar(&rc.mongoDB, "mongo-db", "cronsched", "Mongo database name (--store mongo)")
	rc.Flags().StringVar(&rc.mongoColl, "mongo-collection", "history", "Mongo collection name (--store mongo)")
	rc.Flags().StringVar(&rc.redisAddr, "redis-addr", "localhost:6379", "Redis address (--store redis)")
	rc.Flags().StringVar(&rc.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rc.Flags().StringVar(&rc.env, "env", "dev", "Logging environment: 'dev' or 'prod'")
	rc.Flags().BoolVar(&rc.utc, "utc", false, "Evaluate schedules in UTC instead of local time")
	rc.Flags().IntVar(&rc.ttl, "ttl", 0, "History collection TTL in seconds (0 disables, minimum 300)")
	rc.Flags().DurationVar(&rc.shutdownGrace, "shutdown-grace", 10*time.Second, "Time to wait for in-flight jobs on shutdown")
	_ = rc.MarkFlagRequired("file")

	return rc
}

func init() {
	rootCmd.AddCommand(newRunCommand().Command)
}

func (rc *RunCommand) runRun(_ *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	m, err := loadManifest(rc.file)
	if err != nil {
		return err
	}

	if !logging.IsValidLogLevel(rc.logLevel) {
		return fmt.Errorf("invalid --log-level: %s", rc.logLevel)
	}
	logger, err := logging.Build(rc.logLevel, rc.env)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	st, closeStore, err := rc.buildStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := registry.New(registry.Options{
		Store:         st,
		Logger:        logger,
		UTC:           rc.utc,
		CollectionTTL: rc.ttl,
	})

	parser := cronx.NewParserWithLocale(GetLocale())
	handlers := loggingHandlerTable(m, logger)

	for _, entry := range m.Jobs {
		config, err := entry.ToJobConfig(parser, handlers)
		if err != nil {
			return fmt.Errorf("failed to configure job %q: %w", entry.Name, err)
		}
		if err := reg.Add(config); err != nil {
			return fmt.Errorf("failed to register job %q: %w", entry.Name, err)
		}
	}

	if err := reg.Start(ctx); err != nil {
		return fmt.Errorf("failed to start registry: %w", err)
	}

	rc.Printf("running %d job(s) from %s, press Ctrl-C to stop\n", len(m.Jobs), rc.file)

	<-ctx.Done()

	rc.Println("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), rc.shutdownGrace)
	defer shutdownCancel()
	return reg.GracefulShutdown(shutdownCtx, rc.shutdownGrace)
}

// buildStore constructs the history store named by --store, returning
// a close func the caller must always invoke.
func (rc *RunCommand) buildStore(ctx context.Context) (store.Store, func(), error) {
	switch rc.storeBackend {
	case "", "mem":
		return memstore.New(), func() {}, nil
	case "mongo":
		client, err := mongostore.Connect(ctx, rc.mongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		s := mongostore.New(client, rc.mongoDB, rc.mongoColl)
		return s, func() { _ = s.Close(context.Background()) }, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: rc.redisAddr})
		s := redisstore.New(client, redisstore.Options{})
		return s, func() { _ = s.Close(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("invalid --store: %s (must be 'mem', 'mongo', or 'redis')", rc.storeBackend)
	}
}

// loggingHandlerTable builds a stub executor.Job for every distinct
// handler name m's entries reference, recording the firing through
// logger rather than doing real work. Real deployments replace this
// table by constructing a Registry in-process with their own handlers.
func loggingHandlerTable(m *manifest.Manifest, logger logging.Logger) map[string]executor.Job {
	handlers := make(map[string]executor.Job)
	for _, entry := range m.Jobs {
		if _, ok := handlers[entry.Handler]; ok {
			continue
		}
		handlerName := entry.Handler
		handlers[handlerName] = func(_ context.Context, intendedAt time.Time, name string) (any, error) {
			logger.Info("job fired", map[string]any{
				"job":        name,
				"handler":    handlerName,
				"intendedAt": intendedAt.Format(time.RFC3339),
			})
			return nil, nil
		}
	}
	return handlers
}
