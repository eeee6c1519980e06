// Package out contains simple functions to print messages, tables, and JSON
// out, or die trying.
package out

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/twmb/go-strftime"

	"github.com/twmb/kdump/dumplog"
)

// MaybeDie, if err is non-nil, prints the message and exits with 1.
func MaybeDie(err error, msg string, args ...interface{}) {
	if err != nil {
		Die(msg, args...)
	}
}

// Die prints a message to stderr and exits with 1.
func Die(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(1)
}

// DumpJSON prints json to stdout. This dies if the input is unmarshalable.
func DumpJSON(j interface{}) {
	out, err := json.MarshalIndent(j, "", "  ")
	MaybeDie(err, "unable to json marshal response: %v", err)
	fmt.Printf("%s\n", out)
}

func args2strings(args []interface{}) []string {
	sargs := make([]string, len(args))
	for i, arg := range args {
		sargs[i] = fmt.Sprint(arg)
	}
	return sargs
}

// TabWriter writes tab delimited output.
type TabWriter struct {
	*tabwriter.Writer
}

// NewTabWriter returns a TabWriter printing column-style output (i.e.,
// headers on the left) to stdout.
func NewTabWriter() *TabWriter {
	return &TabWriter{tabwriter.NewWriter(os.Stdout, 6, 4, 2, ' ', 0)}
}

// Print stringifies the arguments and calls PrintStrings.
func (t *TabWriter) Print(args ...interface{}) {
	t.PrintStrings(args2strings(args)...)
}

// PrintStrings prints the arguments tab-delimited and newline-suffixed to the
// tab writer.
func (t *TabWriter) PrintStrings(args ...string) {
	fmt.Fprint(t.Writer, strings.Join(args, "\t")+"\n")
}

// PrintSummary writes a dumplog.TransactionalInfo as column-style tab output
// to stdout, formatting epoch-millis timestamps with timeFmt (a go-strftime
// pattern, e.g. "%F %T").
func PrintSummary(label string, info *dumplog.TransactionalInfo, timeFmt string) {
	t := NewTabWriter()
	defer t.Flush()

	ts := func(ms int64) string {
		return string(strftime.AppendFormat(nil, timeFmt, time.UnixMilli(ms).UTC()))
	}

	t.Print("segment", label)
	if info.FirstBatch != nil {
		t.Print("first batch", fmt.Sprintf("baseOffset=%d @ %s", info.FirstBatch.BaseOffset, ts(info.FirstBatch.CreateTime)))
	}
	if info.LastBatch != nil {
		t.Print("last batch", fmt.Sprintf("baseOffset=%d @ %s", info.LastBatch.BaseOffset, ts(info.LastBatch.CreateTime)))
	}
	t.Print("committed", info.Committed)
	t.Print("aborted", info.Aborted)
	t.Print("open transactions", len(info.OpenTransactions))
	t.Print("empty transactions", len(info.EmptyTransactions))
	t.Print("txn size (batches)", fmt.Sprintf("count=%d min=%d max=%d mean=%.2f",
		info.TxnSizeStats.Count, info.TxnSizeStats.Min, info.TxnSizeStats.Max, info.TxnSizeStats.Mean()))
	t.Print("txn duration (ms)", fmt.Sprintf("count=%d min=%d max=%d mean=%.2f",
		info.TxnDurationStats.Count, info.TxnDurationStats.Min, info.TxnDurationStats.Max, info.TxnDurationStats.Mean()))
}
