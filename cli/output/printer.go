package output

import (
	"sort"

	"github.com/pterm/pterm"

	"github.com/74Thirsty/cloudchain/internal"
)

// Printer renders one-shot command results, keyed with the same typed field
// vocabulary the logger uses so command output and log lines stay coherent.
type Printer struct{}

func NewPrinter() *Printer {
	return &Printer{}
}

func (p *Printer) Info(msg string, fields internal.Fields)    { render(pterm.Info, msg, fields) }
func (p *Printer) Success(msg string, fields internal.Fields) { render(pterm.Success, msg, fields) }
func (p *Printer) Warn(msg string, fields internal.Fields)    { render(pterm.Warning, msg, fields) }
func (p *Printer) Error(msg string, fields internal.Fields)   { render(pterm.Error, msg, fields) }

func render(prefix pterm.PrefixPrinter, msg string, fields internal.Fields) {
	prefix.Println(msg)
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		pterm.Printf("  %s: %v\n", k, fields[internal.FieldKey(k)])
	}
}
