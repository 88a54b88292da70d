package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flush pending local changes to the checklist API",
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
		if _, err := store.Get(ctx); err != nil {
			return err
		}

		result, err := store.SyncPendingChanges(ctx)
		if err != nil {
			for _, attemptErr := range result.Errors {
				fmt.Printf("  attempt: %v\n", attemptErr)
			}
			return err
		}

		if result.SyncedItems == 0 && !store.SyncStatus().Pending {
			fmt.Println("nothing to sync")
			return nil
		}
		fmt.Printf("synced %d items\n", result.SyncedItems)
		return nil
	},
}
