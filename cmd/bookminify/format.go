package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// formatBytes renders n in binary units ("1.5 MiB").
func formatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

// formatExactBytes renders n with thousands separators ("1,572,864 bytes").
func formatExactBytes(n int64) string {
	return numberPrinter.Sprintf("%d bytes", n)
}

func formatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	case d < time.Hour:
		return d.Round(time.Second).String()
	default:
		return d.Round(time.Minute).String()
	}
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < 48*time.Hour:
		return humanize.Time(t)
	default:
		return t.Local().Format("2006-01-02 15:04")
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// palette colors status words when the destination is a terminal.
type palette struct {
	good *color.Color
	warn *color.Color
	bad  *color.Color
	dim  *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		good: color.New(color.FgGreen, color.Bold),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}
	enable := isTerminal(w) && os.Getenv("NO_COLOR") == ""
	for _, c := range []*color.Color{p.good, p.warn, p.bad, p.dim} {
		if enable {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// status colors a run or check status word.
func (p palette) status(word string) string {
	switch word {
	case "accepted", "ok":
		return p.good.Sprint(word)
	case "rejected", "running", "abandoned":
		return p.warn.Sprint(word)
	case "failed", "missing":
		return p.bad.Sprint(word)
	default:
		return word
	}
}
