package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/checklist-sync/internal/checklist"
	"github.com/nhle/checklist-sync/internal/credential"
	"github.com/nhle/checklist-sync/internal/source/email"
)

var importEmailCmd = &cobra.Command{
	Use:   "import-email",
	Short: "Import emailed lists into checklists",
	Long: `Scan the configured IMAP inbox for unseen messages whose subject is
"checklist: <name>" and append one item per body line to that
checklist. Imported messages are marked seen.

IMAP settings come from the email section of the config file; the
password is read from the system keyring.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(false)
		if err != nil {
			return err
		}
		defer env.close()

		if env.cfg.Email.Host == "" || env.cfg.Email.Username == "" {
			return fmt.Errorf("email import requires email.host and email.username in %s", configPath)
		}

		password, err := credential.Get(credential.KeyEmailPassword)
		if err != nil {
			return fmt.Errorf("reading IMAP password from keyring: %w", err)
		}

		fetcher := email.NewIMAPClient(
			env.cfg.Email.Host,
			env.cfg.Email.Port,
			env.cfg.Email.Username,
			password,
			env.cfg.Email.TLS,
		)

		opener := func(name string) (*checklist.Store, error) {
			return env.openStore(name)
		}

		importer := email.NewImporter(fetcher, opener, env.logger)
		result, err := importer.Run(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("inspected %d messages, added %d items\n", result.MessagesSeen, result.ItemsAdded)
		for _, importErr := range result.Errors {
			fmt.Printf("  warning: %v\n", importErr)
		}
		return nil
	},
}
