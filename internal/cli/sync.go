package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/swapi-mirror/internal/app"
	"github.com/yungbote/swapi-mirror/internal/domain/catalog"
)

func newSyncCmd(e *env) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:       "sync [all|characters|films|starships]",
		Short:     "Mirror SWAPI into the database",
		Long:      "Fetches the requested collections from SWAPI and stores new records. A collection that cannot be fetched is treated as empty.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"all", "characters", "films", "starships"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := "all"
			if len(args) == 1 {
				scope = strings.ToLower(strings.TrimSpace(args[0]))
			}
			var kind catalog.Kind
			if scope != "all" {
				k, err := catalog.ParseKind(scope)
				if err != nil {
					return fmt.Errorf("%w (want all, characters, films or starships)", err)
				}
				kind = k
			}

			a, err := app.New(cmd.Context(), e.cfg,
				app.WithLogger(e.log),
				app.WithFailFast(false),
				app.WithMigrate(migrate),
			)
			if err != nil {
				return err
			}
			defer a.Close()

			if kind == "" {
				res, err := a.Services.Sync.SyncAll(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range []struct {
					msg   string
					added int
				}{
					{res.Characters.Message, res.Characters.Added},
					{res.Films.Message, res.Films.Added},
					{res.Starships.Message, res.Starships.Added},
				} {
					fmt.Fprintf(e.out, "%s (%d new)\n", k.msg, k.added)
				}
				fmt.Fprintf(e.out, "Links created: %d\n", res.Links.Total())
				fmt.Fprintln(e.out, res.Message)
				return nil
			}
			res, err := a.Services.Sync.SyncKind(cmd.Context(), kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(e.out, "%s (%d new)\n", res.Message, res.Added)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create missing tables before syncing")
	return cmd
}
