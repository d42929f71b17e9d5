// Package timesheet records work segments as an append-only log and answers
// the start, end, job and report commands against it.
//
// The most recent row is always the open segment. Closing a segment never
// updates a row; it appends a new one that carries the elapsed duration.
// Nothing is locked across the read of the last row and the append, so two
// invocations racing each other can lose a segment.
package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Tiliavir/timesheet/internal/model"
	"github.com/Tiliavir/timesheet/internal/storage"
	"github.com/Tiliavir/timesheet/internal/timecalc"
)

var (
	// ErrNoActiveSession is returned when end, job or status run before any start.
	ErrNoActiveSession = errors.New("no active session: run \"start\" first")
	// ErrClockSkew is returned when the clock reads earlier than the open segment's start.
	ErrClockSkew = errors.New("current time is before the start of the open session")
	// ErrEmptyIdentity is returned when a job is assigned without repo or branch.
	ErrEmptyIdentity = errors.New("repo and branch must not be empty")
	// ErrInvalidMonth is returned for report months outside 1-12.
	ErrInvalidMonth = timecalc.ErrInvalidMonth
)

// Store is the persistence the timesheet needs. *storage.Store implements it.
type Store interface {
	Append(ctx context.Context, entries ...*model.Entry) error
	Last(ctx context.Context) (model.Entry, error)
	Range(ctx context.Context, from, to int64) ([]model.Entry, error)
	Totals(ctx context.Context, from, to int64) ([]model.Total, error)
}

// Closed describes a segment that was just closed.
type Closed struct {
	Identity model.Identity
	Seconds  int64
	At       time.Time
}

// Status describes the open segment.
type Status struct {
	Identity model.Identity
	Since    time.Time
	Elapsed  int64
}

// Timesheet implements the time-tracking operations over a Store.
type Timesheet struct {
	store Store
	now   func() time.Time
}

// New returns a Timesheet using store and the given clock. A nil clock
// means time.Now.
func New(store Store, now func() time.Time) *Timesheet {
	if now == nil {
		now = time.Now
	}
	return &Timesheet{store: store, now: now}
}

// StartDay opens a new unattributed segment. It does not check for an
// already open segment; the newest row simply becomes authoritative.
func (t *Timesheet) StartDay(ctx context.Context) (model.Entry, error) {
	e := model.Entry{Start: t.now().Unix()}
	if err := t.store.Append(ctx, &e); err != nil {
		return model.Entry{}, err
	}
	slog.Debug("session started", "id", e.ID, "start", e.Start)
	return e, nil
}

// EndDay closes the open segment and credits the elapsed time to its
// identity. The appended row also opens the next segment under the same
// identity.
func (t *Timesheet) EndDay(ctx context.Context) (Closed, error) {
	last, now, elapsed, err := t.elapsed(ctx)
	if err != nil {
		return Closed{}, err
	}

	closing := model.Entry{
		Repo:     last.Repo,
		Branch:   last.Branch,
		Start:    now.Unix(),
		Duration: elapsed,
	}
	if err := t.store.Append(ctx, &closing); err != nil {
		return Closed{}, err
	}
	slog.Debug("session ended", "identity", last.Identity(), "seconds", elapsed)
	return Closed{Identity: last.Identity(), Seconds: elapsed, At: now}, nil
}

// AssignJob closes the open segment under its previous identity and opens a
// pending segment for repo/branch. Both rows are written together.
func (t *Timesheet) AssignJob(ctx context.Context, repo, branch string) (Closed, error) {
	if repo == "" || branch == "" {
		return Closed{}, ErrEmptyIdentity
	}

	last, now, elapsed, err := t.elapsed(ctx)
	if err != nil {
		return Closed{}, err
	}

	closing := model.Entry{
		Repo:     last.Repo,
		Branch:   last.Branch,
		Start:    now.Unix(),
		Duration: elapsed,
	}
	pending := model.Entry{
		Repo:   &repo,
		Branch: &branch,
		Start:  now.Unix(),
	}
	if err := t.store.Append(ctx, &closing, &pending); err != nil {
		return Closed{}, err
	}
	slog.Debug("job assigned",
		"closed", last.Identity(), "seconds", elapsed,
		"opened", pending.Identity())
	return Closed{Identity: last.Identity(), Seconds: elapsed, At: now}, nil
}

// Report sums durations per identity for rows starting in the given UTC month.
func (t *Timesheet) Report(ctx context.Context, year, month int) ([]model.Total, error) {
	from, to, err := timecalc.MonthRange(year, month)
	if err != nil {
		return nil, err
	}
	return t.store.Totals(ctx, from.Unix(), to.Unix())
}

// Status reports the open segment and how long it has been running.
func (t *Timesheet) Status(ctx context.Context) (Status, error) {
	last, now, elapsed, err := t.elapsed(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Identity: last.Identity(),
		Since:    time.Unix(last.Start, 0).In(now.Location()),
		Elapsed:  elapsed,
	}, nil
}

// Entries returns the raw rows starting in [from, to).
func (t *Timesheet) Entries(ctx context.Context, from, to time.Time) ([]model.Entry, error) {
	return t.store.Range(ctx, from.Unix(), to.Unix())
}

// MonthEntries returns the raw rows starting in the given UTC month.
func (t *Timesheet) MonthEntries(ctx context.Context, year, month int) ([]model.Entry, error) {
	from, to, err := timecalc.MonthRange(year, month)
	if err != nil {
		return nil, err
	}
	return t.Entries(ctx, from, to)
}

// elapsed reads the open segment and the seconds since it started.
func (t *Timesheet) elapsed(ctx context.Context) (model.Entry, time.Time, int64, error) {
	last, err := t.store.Last(ctx)
	if errors.Is(err, storage.ErrNoEntries) {
		return model.Entry{}, time.Time{}, 0, ErrNoActiveSession
	}
	if err != nil {
		return model.Entry{}, time.Time{}, 0, err
	}

	now := t.now()
	elapsed := now.Unix() - last.Start
	if elapsed < 0 {
		return model.Entry{}, time.Time{}, 0, fmt.Errorf("%w (started %d, now %d)", ErrClockSkew, last.Start, now.Unix())
	}
	return last, now, elapsed, nil
}
