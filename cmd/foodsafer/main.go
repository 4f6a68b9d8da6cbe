package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/rryowa/foodsafer/internal/client"
	"github.com/rryowa/foodsafer/internal/migrations"
	"github.com/rryowa/foodsafer/internal/storage"
	"github.com/rryowa/foodsafer/internal/storage/file"
	"github.com/rryowa/foodsafer/internal/storage/memory"
	"github.com/rryowa/foodsafer/internal/storage/postgres"
	"github.com/rryowa/foodsafer/internal/storage/redis"
	"github.com/rryowa/foodsafer/internal/util"
)

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	name, rest := args[0], args[1:]
	cmd, ok := commands()[name]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", name)
		printUsage(stderr)
		return errUsage
	}

	cfg := util.NewClientConfig()
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.BaseURL, "api-url", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.Profile, "profile", cfg.Profile, "credential profile")
	fs.StringVar(&cfg.CredentialStore, "store", cfg.CredentialStore, "credential store: memory, file, redis or postgres")
	fs.StringVar(&cfg.CredentialsFile, "credentials-file", cfg.CredentialsFile, "credentials file for the file store")
	fs.DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	cmd.bind(fs)

	if err := fs.Parse(rest); err != nil {
		return err
	}

	logger := util.NewZapLogger(util.GetLogLevel())
	defer logger.Sync() //nolint:errcheck // stderr sync errors are noise

	store, cleanup := newCredentialStore(ctx, cfg, logger)
	defer cleanup()

	c := client.New(cfg, store, logger)
	return cmd.run(ctx, c, fs.Args(), stdout)
}

// newCredentialStore falls back to memory when the configured backend is
// unreachable, matching the store's fail-open reads.
func newCredentialStore(ctx context.Context, cfg *util.ClientConfig, logger *zap.SugaredLogger) (storage.CredentialStore, func()) {
	noop := func() {}

	switch cfg.CredentialStore {
	case util.CredentialStoreMemory:
		return memory.NewCredentialStore(), noop
	case util.CredentialStoreFile:
		return file.NewCredentialStore(cfg.CredentialsFile, cfg.Profile, logger), noop
	case util.CredentialStoreRedis:
		redisClient, cleanup, err := util.NewRedisClient(ctx, logger, util.NewRedisConfig())
		if err != nil {
			logger.Warnw("redis credential store unavailable, using memory", "error", err)
			return memory.NewCredentialStore(), noop
		}
		return redis.NewCredentialStore(redisClient, cfg.Profile, logger), cleanup
	case util.CredentialStorePostgres:
		db, cleanup, err := util.NewDBConnection(logger, util.NewDBConfig())
		if err != nil {
			logger.Warnw("postgres credential store unavailable, using memory", "error", err)
			return memory.NewCredentialStore(), noop
		}
		if err := migrations.RunMigrations(db, logger); err != nil {
			logger.Warnw("postgres credential store migrations failed, using memory", "error", err)
			cleanup()
			return memory.NewCredentialStore(), noop
		}
		return postgres.NewCredentialStore(db, cfg.Profile, logger), cleanup
	default:
		logger.Warnw("unknown credential store, using memory", "store", cfg.CredentialStore)
		return memory.NewCredentialStore(), noop
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: foodsafer <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, cmds[name].summary())
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'foodsafer <command> --help' for command flags.")
	fmt.Fprintln(w, "Environment: "+strings.Join([]string{
		"FOODSAFER_API_URL", "FOODSAFER_CREDENTIAL_STORE", "FOODSAFER_PROFILE", "LOG_LEVEL",
	}, ", "))
}
