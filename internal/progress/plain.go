package progress

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Plain logs progress at every crossed 10% step. It needs no terminal
// and suits piped or redirected output.
type Plain struct {
	out      io.Writer
	total    int64
	written  int64
	lastStep int
}

func NewPlain(out io.Writer) *Plain {
	return &Plain{out: out}
}

func (p *Plain) Start(total int64) {
	p.total = total
}

func (p *Plain) Add(n int) {
	p.written += int64(n)
	if p.total <= 0 {
		return
	}

	pct := int(p.written * 100 / p.total)
	if pct > 100 {
		pct = 100
	}
	if step := pct / 10; step > p.lastStep {
		p.lastStep = step
		fmt.Fprintf(p.out, "%3d%% (%s / %s)\n", pct, humanize.IBytes(uint64(p.written)), humanize.IBytes(uint64(p.total)))
	}
}

func (p *Plain) Done() {
	fmt.Fprintf(p.out, "done (%s)\n", humanize.IBytes(uint64(p.written)))
}
