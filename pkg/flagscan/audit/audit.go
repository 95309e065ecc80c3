// Package audit scans a repository for a batch of flag keys and sorts them
// by how much cleanup each one needs.
package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/idlab-discover/FlagScan-cli/pkg/flagscan/scanner"
)

// Status is the cleanup verdict for one flag.
type Status string

const (
	// StatusUnreferenced flags have no references left and can be archived
	// in the provider directly.
	StatusUnreferenced Status = "unreferenced"
	// StatusRemovable flags are referenced only through high-confidence SDK calls.
	StatusRemovable Status = "removable"
	// StatusReview flags have at least one reference that needs a human.
	StatusReview Status = "review"
)

// Statuses lists every status in report order.
var Statuses = []Status{StatusUnreferenced, StatusRemovable, StatusReview}

// ErrNoFlags is returned when Run is called without any flag key.
var ErrNoFlags = errors.New("no flag keys to audit")

// FlagSummary condenses one scan result.
type FlagSummary struct {
	Key          string `json:"key" yaml:"key"`
	TotalMatches int    `json:"totalMatches" yaml:"totalMatches"`
	High         int    `json:"high" yaml:"high"`
	Medium       int    `json:"medium" yaml:"medium"`
	Low          int    `json:"low" yaml:"low"`
	Files        int    `json:"files" yaml:"files"`
	Status       Status `json:"status" yaml:"status"`
}

// Report is the outcome of an audit.
type Report struct {
	Provider   string            `json:"provider" yaml:"provider"`
	Repo       string            `json:"repo" yaml:"repo"`
	Flags      []FlagSummary     `json:"flags" yaml:"flags"`
	Results    []*scanner.Result `json:"results" yaml:"results"`
	DurationMs int64             `json:"durationMs" yaml:"durationMs"`
}

// ByStatus returns the summaries with the given status in audit order.
func (r *Report) ByStatus(s Status) []FlagSummary {
	if r == nil {
		return nil
	}
	var out []FlagSummary
	for _, f := range r.Flags {
		if f.Status == s {
			out = append(out, f)
		}
	}
	return out
}

// Summarize derives the per-flag summary and status from a scan result.
func Summarize(res *scanner.Result) FlagSummary {
	byConf := res.CountByConfidence()
	fs := FlagSummary{
		Key:          res.FlagKey,
		TotalMatches: res.TotalMatches,
		High:         byConf[scanner.ConfidenceHigh],
		Medium:       byConf[scanner.ConfidenceMedium],
		Low:          byConf[scanner.ConfidenceLow],
		Files:        len(res.Files()),
	}
	switch {
	case fs.TotalMatches == 0:
		fs.Status = StatusUnreferenced
	case fs.High == fs.TotalMatches:
		fs.Status = StatusRemovable
	default:
		fs.Status = StatusReview
	}
	return fs
}

// EventKind tells a progress callback which phase of a flag just happened.
type EventKind int

const (
	EventStart EventKind = iota
	EventDone
)

// Event is sent to the progress callback before and after each flag scan.
// Summary is set on EventDone only.
type Event struct {
	Kind    EventKind
	Index   int
	Total   int
	Key     string
	Summary *FlagSummary
}

// ProgressFunc receives audit progress. It is called from the goroutine
// running Run.
type ProgressFunc func(Event)

// Run scans root once per key, in order, with the same options. A fatal
// scan error aborts the audit and names the flag it happened on.
func Run(ctx context.Context, root string, keys []string, opts scanner.Options, onProgress ProgressFunc) (*Report, error) {
	if len(keys) == 0 {
		return nil, ErrNoFlags
	}
	start := time.Now()
	notify := func(ev Event) {
		if onProgress != nil {
			onProgress(ev)
		}
	}

	rep := &Report{
		Provider: opts.Provider,
		Repo:     opts.Repo,
		Flags:    make([]FlagSummary, 0, len(keys)),
		Results:  make([]*scanner.Result, 0, len(keys)),
	}

	for i, key := range keys {
		notify(Event{Kind: EventStart, Index: i, Total: len(keys), Key: key})

		res, err := scanner.Scan(ctx, root, key, opts)
		if err != nil {
			logf(key, "scan failed: %v", err)
			return nil, fmt.Errorf("audit flag %q: %w", key, err)
		}
		sum := Summarize(res)
		logf(key, "status=%s matches=%d high=%d", sum.Status, sum.TotalMatches, sum.High)

		rep.Flags = append(rep.Flags, sum)
		rep.Results = append(rep.Results, res)
		if rep.Provider == "" {
			rep.Provider = res.Provider
		}
		if rep.Repo == "" {
			rep.Repo = res.Repo
		}
		notify(Event{Kind: EventDone, Index: i, Total: len(keys), Key: key, Summary: &sum})
	}

	rep.DurationMs = time.Since(start).Milliseconds()
	return rep, nil
}
