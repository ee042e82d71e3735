package cli

import (
	"github.com/spf13/cobra"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/cli/output"
)

func LedgerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "List the current account's upload ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			registry, ws, err := app.Registry()
			if err != nil {
				return err
			}
			current, err := registry.Current()
			if err != nil {
				return err
			}
			entries, err := backend.NewLedger(app.Store, ws).Load(current.LocalPart())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				output.NewPrinter().Warn("no uploads recorded for this account", nil)
				return nil
			}
			return output.PrintLedgerTable(current.Address(), entries)
		},
	}
}

func MirrorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mirror",
		Short: "List the current account's local mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			registry, ws, err := app.Registry()
			if err != nil {
				return err
			}
			current, err := registry.Current()
			if err != nil {
				return err
			}
			account := current.LocalPart()
			files, err := ws.MirrorFiles(account)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				output.NewPrinter().Warn("local mirror is empty", nil)
				return nil
			}
			return output.PrintMirrorTable(current.Address(), ws.AccountDir(account), files)
		},
	}
}
