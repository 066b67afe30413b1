package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/swapi-mirror/internal/data/db"
)

func newCreateDBCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "create-db",
		Short: "Create the database and application user (idempotent)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.CreateDatabase(cmd.Context(), e.cfg.Database, e.log); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Database %q is ready for user %q\n", e.cfg.Database.Name, e.cfg.Database.User)
			return nil
		},
	}
}

func newDropDBCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "drop-db",
		Short: "Drop the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.DropDatabase(cmd.Context(), e.cfg.Database, e.log); err != nil {
				return err
			}
			fmt.Fprintf(e.out, "Database %q dropped\n", e.cfg.Database.Name)
			return nil
		},
	}
}

func newCreateTablesCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "create-tables",
		Short: "Create the catalog, association and sync_run tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.cfg.Validate(); err != nil {
				return err
			}
			store, err := db.Open(e.cfg.Database, e.log)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(); err != nil {
				return err
			}
			fmt.Fprintln(e.out, "Tables created")
			return nil
		},
	}
}
