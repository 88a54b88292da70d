package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the items of a checklist",
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

		c, err := store.Get(context.Background())
		if err != nil {
			return err
		}
		if c == nil {
			fmt.Printf("checklist %q does not exist yet\n", name)
			return nil
		}

		fmt.Printf("%s (%s)\n", c.Name, c.Mode)
		for i, item := range c.Items {
			mark := " "
			if item.Completed {
				mark = "x"
			}
			fmt.Printf("%3d. [%s] %s\n", i+1, mark, item.Title)
		}
		if len(c.Items) == 0 {
			fmt.Println("  (empty)")
		}
		if store.SyncStatus().Pending {
			fmt.Println("\nunsynced local changes pending")
		}
		return nil
	},
}
