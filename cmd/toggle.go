package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <position>",
	Short: "Toggle an item's completed state by its list position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := requireName()
		if err != nil {
			return err
		}

		pos, err := strconv.Atoi(args[0])
		if err != nil || pos < 1 {
			return fmt.Errorf("position must be a positive number, got %q", args[0])
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
		c, err := store.Get(ctx)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("checklist %q does not exist", name)
		}
		if pos > len(c.Items) {
			return fmt.Errorf("position %d out of range, checklist has %d items", pos, len(c.Items))
		}

		item, err := store.ToggleItem(ctx, c.Items[pos-1].ID)
		if err != nil {
			return err
		}

		state := "open"
		if item.Completed {
			state = "done"
		}
		fmt.Printf("%q is now %s\n", item.Title, state)
		return nil
	},
}
