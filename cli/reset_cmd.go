package cli

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/cli/output"
	"github.com/74Thirsty/cloudchain/internal"
)

func ResetCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe ALL chain state: registry, client secret, tokens, ledgers, mirrors",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			ws, err := app.Workspace()
			if err != nil {
				return err
			}

			if !yes {
				pterm.Warning.Printfln("This will WIPE ALL cloudchain data under %s", ws.Root)
				pterm.Println("This includes the account registry, client secret, tokens, ledgers, and local mirrors.")
				ok, promptErr := pterm.DefaultInteractiveConfirm.Show("Are you ABSOLUTELY sure?")
				if promptErr != nil {
					return promptErr
				}
				if !ok {
					output.NewPrinter().Warn("reset cancelled", nil)
					return errAborted
				}
			}

			if err := backend.NewResetFlow(ws, app.Secrets).Reset(); err != nil {
				return err
			}
			output.NewPrinter().Success("cloudchain reset complete", internal.Fields{
				internal.FieldRoot: ws.Root,
			})
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
