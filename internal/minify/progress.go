package minify

import (
	"fmt"
	"strings"
	"time"
)

// Progress is emitted after each entry of the conversion loop.
type Progress struct {
	Index     int // 1-based
	Total     int
	Entry     string
	Action    Action
	Elapsed   time.Duration
	PerFile   time.Duration
	Remaining time.Duration
}

// ProgressFunc receives progress updates. It runs on the pipeline goroutine.
type ProgressFunc func(Progress)

type progressTracker struct {
	start time.Time
	total int
	now   func() time.Time
}

func newProgressTracker(total int, now func() time.Time) *progressTracker {
	return &progressTracker{start: now(), total: total, now: now}
}

func (p *progressTracker) step(index int, entry string, action Action) Progress {
	done := index + 1
	elapsed := p.now().Sub(p.start)
	perFile := elapsed / time.Duration(done)
	return Progress{
		Index:     done,
		Total:     p.total,
		Entry:     entry,
		Action:    action,
		Elapsed:   elapsed,
		PerFile:   perFile,
		Remaining: perFile * time.Duration(p.total-done),
	}
}

func formatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	seconds := d / time.Second
	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 || hours > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	return strings.Join(parts, "")
}
