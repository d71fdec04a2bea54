package main

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"bookminify/internal/minify"
)

// pageBar renders conversion progress on a terminal. The bar is created on
// the first update because the page count is only known after extraction.
type pageBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newPageBar(out io.Writer) *pageBar {
	return &pageBar{out: out}
}

func (b *pageBar) update(p minify.Progress) {
	if b.bar == nil {
		b.bar = progressbar.NewOptions(p.Total,
			progressbar.OptionSetWriter(b.out),
			progressbar.OptionSetDescription("pages"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionSetWidth(30),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = b.bar.Set(p.Index)
}

func (b *pageBar) finish() {
	if b == nil || b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}
