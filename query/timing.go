//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package query

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/cryo28/ipa/p2p"
)

// ByteCount formats byte counts with decimal units.
type ByteCount uint64

func (b ByteCount) String() string {
	units := []string{"B", "kB", "MB", "GB", "TB"}
	v := uint64(b)
	var i int
	for v >= 1000 && i+1 < len(units) {
		v /= 1000
		i++
	}
	return fmt.Sprintf("%d%s", v, units[i])
}

// StageTiming holds the duration of one query stage.
type StageTiming struct {
	Name    string
	Records int
	Elapsed time.Duration
}

// Timing records the durations of query stages.
type Timing struct {
	Start  time.Time
	Stages []StageTiming
	last   time.Time
}

// NewTiming creates a new Timing starting now.
func NewTiming() *Timing {
	now := time.Now()
	return &Timing{
		Start: now,
		last:  now,
	}
}

// Stage records the stage that ended now. The stage started when the
// previous stage ended.
func (t *Timing) Stage(name string, records int) {
	now := time.Now()
	t.Stages = append(t.Stages, StageTiming{
		Name:    name,
		Records: records,
		Elapsed: now.Sub(t.last),
	})
	t.last = now
}

// Total returns the duration from start to the end of the last
// stage.
func (t *Timing) Total() time.Duration {
	return t.last.Sub(t.Start)
}

// Print renders the stage timings and the peer link I/O statistics
// of the helper as a table.
func (t *Timing) Print(w io.Writer, title string, stats p2p.IOStats) {
	if len(t.Stages) == 0 {
		return
	}
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header(title).SetAlign(tabulate.ML)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Records").SetAlign(tabulate.MR)

	total := t.Total()
	for _, s := range t.Stages {
		row := tab.Row()
		row.Column(s.Name)
		row.Column(s.Elapsed.String())
		row.Column(fmt.Sprintf("%.2f%%", percent(s.Elapsed, total)))
		row.Column(fmt.Sprintf("%d", s.Records))
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("")
	row.Column(ByteCount(stats.Sum()).String()).SetFormat(tabulate.FmtBold)

	counters := []struct {
		label string
		value string
	}{
		{"├╴Sent", ByteCount(stats.Sent.Load()).String()},
		{"├╴Rcvd", ByteCount(stats.Recvd.Load()).String()},
		{"╰╴Flcd", fmt.Sprintf("%d", stats.Flushed.Load())},
	}
	for _, v := range counters {
		row := tab.Row()
		row.Column(v.label).SetFormat(tabulate.FmtItalic)
		row.Column("")
		row.Column("")
		row.Column(v.value).SetFormat(tabulate.FmtItalic)
	}
	tab.Print(w)
}

func percent(d, total time.Duration) float64 {
	if total == 0 {
		return 0
	}
	return float64(d) / float64(total) * 100
}
