package cli

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/backend/filesystem"
	"github.com/74Thirsty/cloudchain/cli/output"
	"github.com/74Thirsty/cloudchain/internal"
)

type syncOpts struct {
	Mode string
	Path string
}

func addSyncFlags(fs *pflag.FlagSet, opts *syncOpts) {
	fs.StringVarP(&opts.Mode, "mode", "m", string(backend.SyncMerge),
		"Reconciliation mode: merge skips files the ledger already records, overwrite re-uploads everything")
	fs.StringVar(&opts.Path, "path", "",
		"Folder to sync (defaults to the current account's local mirror)")
}

func SyncCommand() *cobra.Command {
	opts := &syncOpts{}
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Bring a local folder in sync with the current chain member",
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

			mode, err := backend.ParseSyncMode(opts.Mode)
			if err != nil {
				return err
			}

			account := current.LocalPart()
			var files []filesystem.FileInfo
			if opts.Path != "" {
				files, err = filesystem.List(opts.Path)
			} else {
				files, err = ws.MirrorFiles(account)
			}
			if err != nil {
				return err
			}
			if len(files) == 0 {
				output.NewPrinter().Warn("nothing to sync: folder is empty", nil)
				return nil
			}

			ledger := backend.NewLedger(app.Store, ws)
			entries, err := ledger.Load(account)
			if err != nil {
				return err
			}
			pending := backend.Reconcile(files, entries, mode)
			internal.Info("reconciled local folder against ledger", internal.Fields{
				internal.FieldAccount: current.Address(),
				internal.FieldMode:    string(mode),
				internal.FieldCount:   len(pending),
			})
			if len(pending) == 0 {
				output.NewPrinter().Success("everything already uploaded", nil)
				return nil
			}

			remote := app.Remote(ws, account)
			folder, err := remote.ResolveOrCreateFolder(cmd.Context(), app.Cfg.RemoteFolder)
			if err != nil {
				return err
			}
			metrics := backend.NewUploadMetrics()
			engine := backend.NewUploadEngine(remote, ws, app.Cfg.ChunkSizeBytes, metrics)

			for _, file := range pending {
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
			}

			output.PrintUploadSummary(metrics.Snapshot())
			return nil
		},
	}
	addSyncFlags(cmd.Flags(), opts)
	return cmd
}
