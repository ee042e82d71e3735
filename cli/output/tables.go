package output

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/74Thirsty/cloudchain/backend"
	"github.com/74Thirsty/cloudchain/backend/filesystem"
)

func humanizeSize(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// PrintLedgerTable renders one account's upload log.
func PrintLedgerTable(account string, entries []backend.LedgerEntry) error {
	tableData := [][]string{
		{"Name", "Size", "Uploaded From", "When"},
	}
	for _, e := range entries {
		tableData = append(tableData, []string{
			e.Name,
			humanizeSize(e.Size),
			e.UploadedFrom,
			e.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	pterm.DefaultSection.Printfln("Cloud ledger for %s", account)
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// PrintMirrorTable renders the local mirror with paths relative to the
// account directory.
func PrintMirrorTable(account, accountDir string, files []filesystem.FileInfo) error {
	tableData := [][]string{
		{"Path", "Size"},
	}
	for _, f := range files {
		rel, err := filepath.Rel(accountDir, f.AbsPath)
		if err != nil {
			rel = f.AbsPath
		}
		tableData = append(tableData, []string{filepath.ToSlash(rel), humanizeSize(f.Size)})
	}
	pterm.DefaultSection.Printfln("Local mirror for %s", account)
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// PrintChainTable renders the chain members, marking the current one.
func PrintChainTable(members []backend.ChainIdentity, current backend.ChainIdentity) error {
	tableData := [][]string{
		{"#", "Account", "Current"},
	}
	for _, m := range members {
		marker := ""
		if m.Index == current.Index {
			marker = "*"
		}
		tableData = append(tableData, []string{
			fmt.Sprintf("%d", m.Index),
			m.Address(),
			marker,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}

// PrintQuota shows usage figures in GB with a percentage, the way the
// operator thinks about a filling account.
func PrintQuota(snap backend.QuotaSnapshot) {
	const gb = 1 << 30
	pterm.Printfln("Quota: %.2f GB / %.2f GB (%.1f%%)",
		float64(snap.Used)/gb, float64(snap.Limit)/gb, snap.Ratio*100)
}

// PrintUploadSummary reports the sync totals collected by the metrics.
func PrintUploadSummary(snap backend.UploadSnapshot) {
	pterm.Printfln("%s uploaded across %d file(s) in %d chunk(s)",
		strings.TrimSpace(humanizeSize(snap.Bytes)), snap.Files, snap.Chunks)
}
