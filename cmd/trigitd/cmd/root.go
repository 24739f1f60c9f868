// Package cmd implements the trigitd server daemon.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/trigitdb/trigit/pkg/dlogger"
	"github.com/trigitdb/trigit/pkg/errors"
	"github.com/trigitdb/trigit/pkg/remote"
	"github.com/trigitdb/trigit/pkg/schema"
	"github.com/trigitdb/trigit/pkg/store"
	"github.com/trigitdb/trigit/pkg/store/bdgr"
	"github.com/trigitdb/trigit/pkg/store/memory"
)

// exit statuses
const (
	exitGeneric   = 1
	exitPortInUse = 2
)

// used to patch over calls to os.Exit() during test
var osExit = os.Exit

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trigitd",
	Short: "trigitd serves a versioned triple-graph database",
	Long: `trigitd serves a versioned triple-graph database.

Every graph is a chain of immutable, content-addressed layers behind a
mutable label, mutated only through schema-checked transactions. The server
exposes the replication protocol (clone, push, pull) over HTTP.
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, remote.ErrPortInUse) {
			osExit(exitPortInUse)
			return
		}
		osExit(exitGeneric)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("listen", ":6363", "address to listen on")
	flags.String("store", "", "badger store directory (empty for an in-memory store)")
	flags.String("log-level", dlogger.LogLevelInfo, "log level (debug, info, none)")
	flags.StringSlice("credential", nil, "accepted user:password pairs (repeatable)")
	flags.Bool("metrics", true, "collect prometheus metrics")
	flags.Int("listen-retries", 5, "bind attempts before giving up on a busy port")
	flags.String("config", "", "config file")

	for _, key := range []string{"listen", "store", "log-level", "credential", "metrics", "listen-retries"} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
	viper.SetEnvPrefix("TRIGIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	cobra.OnInitialize(func() {
		if cfg, _ := flags.GetString("config"); cfg != "" {
			viper.SetConfigFile(cfg)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				osExit(exitGeneric)
			}
		}
	})
}

func parseCredentials(pairs []string) (map[string]string, error) {
	creds := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		user, password, found := strings.Cut(pair, ":")
		if !found || user == "" {
			return nil, fmt.Errorf("malformed credential %q, want user:password", pair)
		}
		creds[user] = password
	}
	return creds, nil
}

func openStore() store.Store {
	if dir := viper.GetString("store"); dir != "" {
		return bdgr.New(dir)
	}
	return memory.New()
}

func serve() (err error) {
	logger, err := dlogger.GetLogger(viper.GetString("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	creds, err := parseCredentials(viper.GetStringSlice("credential"))
	if err != nil {
		return err
	}

	// bind the port before the store finishes loading: the readiness gate
	// answers "still loading" meanwhile
	ln, err := remote.Listen(viper.GetString("listen"), viper.GetInt("listen-retries"))
	if err != nil {
		return err
	}

	db := openStore()
	server := remote.NewServer(db,
		remote.ServerWithLogger(logger),
		remote.ServerWithCredentials(creds),
		remote.ServerWithMetrics(viper.GetBool("metrics")),
	)

	errC := make(chan error, 1)
	go func() {
		errC <- server.Serve(ln)
	}()

	if err := db.Initialize(); err != nil {
		return err
	}
	// a failed serve and a failed store close both matter on the way out
	defer func() { err = multierr.Append(err, db.Close()) }()
	if err := schema.Bootstrap(context.Background(), db); err != nil {
		return err
	}
	server.SetReady(true)
	logger.Info("serving", zap.String("listen", ln.Addr().String()))

	sigC := make(chan os.Signal, 1)
	signal.Notify(sigC, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errC:
		return err
	case sig := <-sigC:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
