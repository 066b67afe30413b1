package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yungbote/swapi-mirror/internal/config"
	"github.com/yungbote/swapi-mirror/internal/platform/logger"
)

type rootFlags struct {
	configPath   string
	logMode      string
	driver       string
	host         string
	port         int
	user         string
	password     string
	name         string
	rootUser     string
	rootPassword string
}

// env carries what every subcommand needs once flags are parsed.
type env struct {
	cfg *config.Config
	log *logger.Logger
	out io.Writer
}

// Execute runs swapictl and returns the process exit status.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f rootFlags
	e := &env{out: stdout}

	root := &cobra.Command{
		Use:           "swapictl",
		Short:         "Administer the SWAPI mirror database and run syncs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := f.exportFlags(cmd); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Env)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			e.cfg = cfg
			e.log = log.With("component", "swapictl")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				e.log.Sync()
			}
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "YAML config file (overrides SWAPI_CONFIG_PATH)")
	pf.StringVar(&f.logMode, "log-mode", "", "logger mode: development, production or test")
	pf.StringVar(&f.driver, "db-driver", "", "database driver: postgres, mysql or sqlite")
	pf.StringVar(&f.host, "db-host", "", "database host")
	pf.IntVar(&f.port, "db-port", 0, "database port")
	pf.StringVar(&f.user, "db-user", "", "application database user")
	pf.StringVar(&f.password, "db-password", "", "application database password")
	pf.StringVar(&f.name, "db-name", "", "database name, or file path for sqlite")
	pf.StringVar(&f.rootUser, "root-user", "", "administrative user for create-db/drop-db")
	pf.StringVar(&f.rootPassword, "root-password", "", "administrative password for create-db/drop-db")

	root.AddCommand(
		newCreateDBCmd(e),
		newDropDBCmd(e),
		newCreateTablesCmd(e),
		newSyncCmd(e),
	)
	return root
}

// exportFlags publishes explicitly set flags as their environment variables, so
// config.Load resolves them with the highest precedence.
func (f *rootFlags) exportFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	set := func(flag, key, value string) error {
		if !flags.Changed(flag) {
			return nil
		}
		return os.Setenv(key, value)
	}
	for _, kv := range []struct{ flag, key, value string }{
		{"config", "SWAPI_CONFIG_PATH", f.configPath},
		{"log-mode", "LOG_MODE", f.logMode},
		{"db-driver", "DB_DRIVER", f.driver},
		{"db-host", "DB_HOST", f.host},
		{"db-port", "DB_PORT", strconv.Itoa(f.port)},
		{"db-user", "DB_USER", f.user},
		{"db-password", "DB_PASSWORD", f.password},
		{"db-name", "DB_NAME", f.name},
		{"root-user", "DB_ROOT_USER", f.rootUser},
		{"root-password", "DB_ROOT_PASSWORD", f.rootPassword},
	} {
		if err := set(kv.flag, kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}
