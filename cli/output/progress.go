package output

import (
	"math"

	"github.com/pterm/pterm"

	"github.com/74Thirsty/cloudchain/backend"
)

// UploadProgress renders one pterm progress bar per upload and adapts it to
// the engine's cumulative byte callback.
type UploadProgress struct {
	bar  *pterm.ProgressbarPrinter
	done uint64
}

func StartUploadProgress(title string, totalBytes uint64) *UploadProgress {
	bar, err := pterm.DefaultProgressbar.
		WithTitle(title).
		WithTotal(clampToInt(totalBytes)).
		WithShowCount(false).
		WithRemoveWhenDone(true).
		Start()
	if err != nil {
		return &UploadProgress{}
	}
	return &UploadProgress{bar: bar}
}

// Sink is the callback handed to the upload engine.
func (p *UploadProgress) Sink() backend.ProgressFunc {
	return func(bytesDone uint64) {
		if p.bar == nil || bytesDone <= p.done {
			return
		}
		p.bar.Add(clampToInt(bytesDone - p.done))
		p.done = bytesDone
	}
}

func (p *UploadProgress) Stop() {
	if p.bar != nil {
		_, _ = p.bar.Stop()
	}
}

func clampToInt(v uint64) int {
	if v == 0 {
		return 1
	}
	if v > uint64(math.MaxInt32) {
		return int(math.MaxInt32)
	}
	return int(v)
}
