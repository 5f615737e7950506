package kpi

import (
	"errors"
	"time"

	"ads-insights-go/internal/types"
)

// Comparison windows are fixed to trailing 7 days vs the preceding 7 days,
// anchored on the latest date in the dataset.

var (
	ErrNoData         = errors.New("no data loaded")
	ErrNoCurrentData  = errors.New("no data for current period")
	ErrNoPreviousData = errors.New("no data for previous period")
)

// Window is an inclusive date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether d falls inside the window, boundaries included.
func (w Window) Contains(d time.Time) bool {
	d = dayUTC(d)
	return !d.Before(w.Start) && !d.After(w.End)
}

// WindowsFrom derives the current and previous comparison windows from the
// latest observed date. Both span exactly 7 days; previous.End is the day
// before current.Start.
func WindowsFrom(maxDate time.Time) (current, previous Window) {
	end := dayUTC(maxDate)
	current = Window{Start: end.AddDate(0, 0, -6), End: end}
	previous = Window{
		Start: current.Start.AddDate(0, 0, -7),
		End:   current.Start.AddDate(0, 0, -1),
	}
	return current, previous
}

// SplitWindows partitions records into the two comparison windows. An empty
// subset on either side is a recoverable condition reported via sentinel
// error, not a crash.
func SplitWindows(records []types.AdRecord) (current, previous []types.AdRecord, curWin, prevWin Window, err error) {
	if len(records) == 0 {
		return nil, nil, Window{}, Window{}, ErrNoData
	}
	maxDate := records[0].Date
	for _, r := range records[1:] {
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}
	curWin, prevWin = WindowsFrom(maxDate)
	for _, r := range records {
		switch {
		case curWin.Contains(r.Date):
			current = append(current, r)
		case prevWin.Contains(r.Date):
			previous = append(previous, r)
		}
	}
	if len(current) == 0 {
		return current, previous, curWin, prevWin, ErrNoCurrentData
	}
	if len(previous) == 0 {
		return current, previous, curWin, prevWin, ErrNoPreviousData
	}
	return current, previous, curWin, prevWin, nil
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
