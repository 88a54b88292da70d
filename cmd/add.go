package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <title>...",
	Short: "Append an item to a checklist",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := requireName()
		if err != nil {
			return err
		}

		env, err := openEnv(false)
		if err != nil {
			return err
		}
		defer env.close()

		store, err := env.openStore(name)
		if err != nil {
			return err
		}

		ctx := context.Background()
		if _, err := store.CreateOrGet(ctx); err != nil {
			return err
		}

		item, err := store.AddItem(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		fmt.Printf("added %q to %s\n", item.Title, store.Slug())
		return nil
	},
}
