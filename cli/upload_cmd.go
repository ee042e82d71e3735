package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/backend/filesystem"
	"github.com/74Thirsty/cloudchain/cli/output"
	"github.com/74Thirsty/cloudchain/internal"
)

func UploadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "upload <file>",
		Short:   "Upload one file through the current chain member",
		Aliases: []string{"up", "u"},
		Args:    cobra.ExactArgs(1),
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
			if err := requireClientSecret(ws, true); err != nil {
				return err
			}

			file, err := filesystem.Stat(args[0])
			if err != nil {
				return err
			}

			account := current.LocalPart()
			remote := app.Remote(ws, account)
			folder, err := remote.ResolveOrCreateFolder(cmd.Context(), app.Cfg.RemoteFolder)
			if err != nil {
				return err
			}

			metrics := backend.NewUploadMetrics()
			engine := backend.NewUploadEngine(remote, ws, app.Cfg.ChunkSizeBytes, metrics)
			ledger := backend.NewLedger(app.Store, ws)

			progress := output.StartUploadProgress(file.Name, file.Size)
			obj, err := engine.Upload(cmd.Context(), account, file, folder, progress.Sink())
			progress.Stop()
			if err != nil {
				return err
			}

			if err := ledger.Append(account, backend.LedgerEntry{
				Name:         obj.Name,
				ID:           obj.ID,
				Size:         obj.Size,
				UploadedFrom: file.AbsPath,
				Timestamp:    time.Now().UTC(),
			}); err != nil {
				return err
			}

			internal.Info("upload recorded", internal.Fields{
				internal.FieldAccount: current.Address(),
				internal.FieldFile:    file.Name,
				internal.FieldBytes:   obj.Size,
			})
			output.NewPrinter().Success("uploaded", internal.Fields{
				internal.FieldFile:   file.AbsPath,
				internal.FieldFolder: app.Cfg.RemoteFolder,
				internal.FieldMirror: ws.AccountDir(account),
			})
			return nil
		},
	}
	return cmd
}
