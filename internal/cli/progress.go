package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"runepkg/internal/core"
)

// batchOutput streams tool output to out and, on a terminal, keeps a
// progress bar on stderr. Both go through one SyncLineSink.
type batchOutput struct {
	out  io.Writer
	bar  *progressbar.ProgressBar
	tty  bool
	sink *core.SyncLineSink
}

func newBatchOutput(out io.Writer) *batchOutput {
	b := &batchOutput{out: out, tty: term.IsTerminal(int(os.Stderr.Fd()))}
	b.sink = core.NewSyncLineSink(b.line, b.progress)
	return b
}

func (b *batchOutput) line(line string) {
	if b.bar != nil {
		_ = b.bar.Clear()
	}
	fmt.Fprintln(b.out, line)
}

func (b *batchOutput) progress(current int, total int) {
	if !b.tty || total < 2 {
		return
	}
	if b.bar == nil {
		b.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("packages"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = b.bar.Set(current - 1)
}

func (b *batchOutput) finish() {
	if b.bar != nil {
		_ = b.bar.Finish()
	}
}
