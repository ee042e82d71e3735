package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/cli/output"
	"github.com/74Thirsty/cloudchain/internal"
)

func AccountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "account",
		Short:   "Manage the account chain",
		Aliases: []string{"acc", "a"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(accountInitCommand())
	cmd.AddCommand(accountCurrentCommand())
	cmd.AddCommand(accountListCommand())
	cmd.AddCommand(accountSwitchCommand())
	cmd.AddCommand(accountExtendCommand())
	return cmd
}

func accountInitCommand() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Register the first chain member",
		Long: "Register the first chain member. The account must already exist and its address " +
			"must end with 001." + backend.RequiredSuffix + "; the chain base is extracted from it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			registry, ws, err := app.Registry()
			if err != nil {
				return err
			}

			if email == "" {
				pterm.Warning.Printfln("The account username MUST end with '001.%s'", backend.RequiredSuffix)
				pterm.Printfln("Example: mybackup001.%s@%s", backend.RequiredSuffix, backend.MailDomain)
				entered, promptErr := pterm.DefaultInteractiveTextInput.Show("Enter the EXACT address you created")
				if promptErr != nil {
					return promptErr
				}
				email = strings.TrimSpace(entered)
			}

			first, err := backend.ValidateFirstIdentity(email)
			if err != nil {
				return err
			}
			if err := registry.Initialize(first); err != nil {
				return err
			}
			if err := app.Secrets.Set(backend.KeyChainBase, first.Base); err != nil {
				internal.Warn("could not store chain base pointer", internal.Fields{
					internal.FieldError: err.Error(),
				})
			}
			if err := requireClientSecret(ws, false); err != nil {
				return err
			}
			output.NewPrinter().Success("chain initialized", internal.Fields{
				internal.FieldAccount:   first.Address(),
				internal.FieldWorkspace: ws.AccountDir(first.LocalPart()),
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Exact address of the account you created")
	return cmd
}

func accountCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the current chain member",
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
			output.NewPrinter().Info("current account", internal.Fields{
				internal.FieldAccount: current.Address(),
				internal.FieldMirror:  ws.AccountDir(current.LocalPart()),
			})
			return nil
		},
	}
}

func accountListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List every chain member in creation order",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			registry, _, err := app.Registry()
			if err != nil {
				return err
			}
			members, err := registry.Members()
			if err != nil {
				return err
			}
			current, err := registry.Current()
			if err != nil {
				return err
			}
			return output.PrintChainTable(members, current)
		},
	}
}

func accountSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <position>",
		Short: "Point the chain at another member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			registry, _, err := app.Registry()
			if err != nil {
				return err
			}
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q is not a number", backend.ErrIndexOutOfRange, args[0])
			}
			current, err := registry.SwitchCurrent(position)
			if err != nil {
				return err
			}
			output.NewPrinter().Success("switched current account", internal.Fields{
				internal.FieldAccount: current.Address(),
			})
			return nil
		},
	}
}

func accountExtendCommand() *cobra.Command {
	var email string
	var skipQuota bool
	cmd := &cobra.Command{
		Use:   "extend",
		Short: "Add the next chain member once the current account is full",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := GetApp(cmd)
			registry, ws, err := app.Registry()
			if err != nil {
				return err
			}
			initialized, err := registry.Initialized()
			if err != nil {
				return err
			}
			if !initialized {
				return backend.ErrUninitialized
			}
			if err := requireClientSecret(ws, true); err != nil {
				return err
			}

			current, err := registry.Current()
			if err != nil {
				return err
			}

			if !skipQuota {
				remote := app.Remote(ws, current.LocalPart())
				used, limit, err := remote.Quota(cmd.Context())
				if err != nil {
					return fmt.Errorf("fetch quota for %s: %w", current.Address(), err)
				}
				snap := backend.NewQuotaSnapshot(used, limit)
				output.PrintQuota(snap)
				if gateErr := backend.GateExtension(snap); gateErr != nil {
					output.NewPrinter().Warn(gateErr.Error(), nil)
					return nil
				}
			}

			required, err := registry.RequiredNext()
			if err != nil {
				return err
			}
			pterm.Warning.Printfln("You MUST create this account EXACTLY: %s", required.Address())

			if email == "" {
				ok, promptErr := pterm.DefaultInteractiveConfirm.
					Show("Have you created the account above?")
				if promptErr != nil {
					return promptErr
				}
				if !ok {
					output.NewPrinter().Warn("extension cancelled", nil)
					return errAborted
				}
				entered, promptErr := pterm.DefaultInteractiveTextInput.Show("Enter the EXACT address you created")
				if promptErr != nil {
					return promptErr
				}
				email = strings.TrimSpace(entered)
			}

			local, _, found := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
			if !found {
				return fmt.Errorf("%w: expected %s, got %q", backend.ErrIdentityMismatch, required.Address(), email)
			}
			confirmed, err := backend.ParseLocalPart(local)
			if err != nil {
				return fmt.Errorf("%w: expected %s, got %q", backend.ErrIdentityMismatch, required.Address(), email)
			}
			if err := registry.Extend(confirmed); err != nil {
				return err
			}
			output.NewPrinter().Success("chain extended", internal.Fields{
				internal.FieldAccount:   confirmed.Address(),
				internal.FieldWorkspace: ws.AccountDir(confirmed.LocalPart()),
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Exact address of the account you created (skips the interactive confirm)")
	cmd.Flags().BoolVar(&skipQuota, "skip-quota-check", false, "Extend without consulting the current account's quota")
	return cmd
}
