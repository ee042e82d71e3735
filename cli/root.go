package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/backend/drive"
	"github.com/74Thirsty/cloudchain/internal"
)

type ctxKey string

const appCtxKey ctxKey = "appData"

// errAborted marks workflows the operator declined; the process exits 1
// without treating it as an internal failure.
var errAborted = errors.New("aborted by operator")

// App carries the wired components every subcommand works with.
type App struct {
	Cfg     *internal.AppConfig
	Secrets backend.SecretStore
	Store   backend.RecordStore

	root string
}

func NewRootCommand() *cobra.Command {
	var appConfigPath string
	var rootFlag string

	rootCmd := &cobra.Command{
		Use:           "cloudchain",
		Short:         "cloudchain rotates a chain of free-tier cloud storage accounts as one logical pool",
		Long:          `cloudchain manages an ordered chain of identically-named cloud storage accounts: it uploads files through the current account, keeps a per-account ledger and local mirror, and gates chain extension on the account's quota.`,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.LoadAppConfig(appConfigPath)
			if err != nil {
				return fmt.Errorf("failed to load app config: %w", err)
			}
			if rootFlag != "" {
				cfg.BackupRoot = rootFlag
			}
			if err := internal.ConfigureLogger(cfg.LogLevel); err != nil {
				internal.Warn("invalid log level in app config, defaulting to info", internal.Fields{
					internal.FieldError: err.Error(),
				})
			}

			app := &App{
				Cfg:     cfg,
				Secrets: backend.NewKeyringStore(),
				Store:   backend.NewYAMLStore(),
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appCtxKey, app))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&appConfigPath, "app-config", "", "Path to app config file (TOML)")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Local backup root (overrides the stored pointer)")

	rootCmd.AddCommand(AccountCommand())
	rootCmd.AddCommand(UploadCommand())
	rootCmd.AddCommand(SyncCommand())
	rootCmd.AddCommand(LedgerCommand())
	rootCmd.AddCommand(MirrorCommand())
	rootCmd.AddCommand(ResetCommand())

	return rootCmd
}

// GetApp retrieves the wired components from the command context.
func GetApp(cmd *cobra.Command) *App {
	if v := cmd.Context().Value(appCtxKey); v != nil {
		if app, ok := v.(*App); ok {
			return app
		}
	}
	return nil
}

// Workspace resolves the backup root, asking for it on first run and
// remembering it through the secret store. An explicit root (--root flag or
// app config) wins over the stored pointer and is never persisted; the
// keyring keeps only the root the operator confirmed at bootstrap.
func (a *App) Workspace() (backend.Workspace, error) {
	if a.root != "" {
		return backend.NewWorkspace(a.root), nil
	}
	if a.Cfg.BackupRoot != "" {
		root, err := resolveRoot(a.Cfg.BackupRoot)
		if err != nil {
			return backend.Workspace{}, err
		}
		a.root = root
		return backend.NewWorkspace(root), nil
	}
	if stored, found, err := a.Secrets.Get(backend.KeyBackupRoot); err != nil {
		return backend.Workspace{}, err
	} else if found {
		a.root = stored
		return backend.NewWorkspace(a.root), nil
	}

	entered, err := pterm.DefaultInteractiveTextInput.
		Show("Enter LOCAL BACKUP ROOT (cloudchain will create 'cloud_backup' here)")
	if err != nil {
		return backend.Workspace{}, err
	}
	input := strings.TrimSpace(entered)
	if input == "" {
		return backend.Workspace{}, errors.New("no backup root configured")
	}
	root, err := resolveRoot(input)
	if err != nil {
		return backend.Workspace{}, err
	}
	if err := a.Secrets.Set(backend.KeyBackupRoot, root); err != nil {
		return backend.Workspace{}, fmt.Errorf("store backup root pointer: %w", err)
	}
	internal.Info("backup root initialized", internal.Fields{
		internal.BackupRoot: root,
	})
	a.root = root
	return backend.NewWorkspace(root), nil
}

func resolveRoot(input string) (string, error) {
	abs, err := filepath.Abs(os.ExpandEnv(input))
	if err != nil {
		return "", err
	}
	root := filepath.Join(abs, "cloud_backup")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("create backup root: %w", err)
	}
	return root, nil
}

// Registry builds the chain registry over the resolved workspace.
func (a *App) Registry() (*backend.ChainRegistry, backend.Workspace, error) {
	ws, err := a.Workspace()
	if err != nil {
		return nil, backend.Workspace{}, err
	}
	return backend.NewChainRegistry(a.Store, ws), ws, nil
}

// Remote builds the drive client for one chain member, credentialed from
// that member's workspace token.
func (a *App) Remote(ws backend.Workspace, account string) backend.RemoteStorage {
	creds := drive.NewTokenProvider(ws, http.DefaultClient)
	return drive.NewClient(account, creds,
		drive.WithAPIBase(a.Cfg.DriveAPIBase, a.Cfg.DriveUploadBase))
}

// requireClientSecret enforces the bootstrap invariant: an initialized
// chain without its client secret cannot talk to the remote API, and the
// only way forward is scaffolding a fresh one or a full reset.
func requireClientSecret(ws backend.Workspace, initialized bool) error {
	if _, err := os.Stat(ws.ClientSecretPath()); err == nil {
		return nil
	}
	if !initialized {
		return drive.ScaffoldClientSecret(ws.ClientSecretPath())
	}
	return fmt.Errorf("client secret missing at %s: restore it or run 'cloudchain reset'", ws.ClientSecretPath())
}
