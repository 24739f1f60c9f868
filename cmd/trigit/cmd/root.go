// Package cmd implements the trigit command line client.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trigitdb/trigit/pkg/core"
	"github.com/trigitdb/trigit/pkg/dlogger"
	"github.com/trigitdb/trigit/pkg/schema"
	"github.com/trigitdb/trigit/pkg/store/bdgr"
)

var params struct {
	server         string
	user           string
	password       string
	remoteUser     string
	remotePassword string
	storeDir       string
	logLevel       string
	author         string
	message        string
}

// used to patch over calls to os.Exit() during test
var osExit = os.Exit

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "trigit",
	Short: "trigit manages versioned triple graphs",
	Long: `trigit manages versioned triple graphs.

Graphs live behind descriptors like acme/crm/local/branch/main: each commit
adds an immutable layer, and replication (clone, pull, push) mirrors layer
history between servers.
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		osExit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&params.server, "server", "http://127.0.0.1:6363", "local trigit server")
	flags.StringVar(&params.user, "user", "", "user authenticating to the local server")
	flags.StringVar(&params.password, "password", "", "password for the local server")
	flags.StringVar(&params.storeDir, "store", ".trigit", "store directory for local commands")
	flags.StringVar(&params.logLevel, "log-level", dlogger.LogLevelNone, "log level (debug, info, none)")
}

// withLocalStore opens the badger store for local (non-replication) commands.
func withLocalStore(run func(ctx context.Context, eng *core.Engine) error) error {
	db := bdgr.New(params.storeDir)
	if err := db.Initialize(); err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	ctx := context.Background()
	if err := schema.Bootstrap(ctx, db); err != nil {
		return err
	}
	logger, err := dlogger.GetLogger(params.logLevel)
	if err != nil {
		return err
	}
	return run(ctx, core.New(db, core.WithLogger(logger)))
}
