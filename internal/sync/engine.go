package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nhle/mailstat/internal/model"
	"github.com/nhle/mailstat/internal/source"
)

// TerminationState says why a run stopped retrieving pages.
type TerminationState int

const (
	// Exhausted means the mailbox returned an empty page: every
	// message has been seen.
	Exhausted TerminationState = iota

	// CutoffReached means an entry older than the cutoff appeared;
	// pages are reverse-chronological, so nothing newer can follow.
	CutoffReached

	// PageLimit means the defensive max-page guard stopped the run
	// before the mailbox signalled either of the above.
	PageLimit
)

func (s TerminationState) String() string {
	switch s {
	case Exhausted:
		return "exhausted"
	case CutoffReached:
		return "cutoff-reached"
	case PageLimit:
		return "page-limit"
	default:
		return fmt.Sprintf("TerminationState(%d)", int(s))
	}
}

// Config carries the per-run parameters of the engine. Cutoff and
// Erroneous are explicit values rather than globals so tests can run
// against a synthetic "now".
type Config struct {
	// Folder is the mailbox folder to synchronize.
	Folder string

	// PageSize is the number of entries per page request.
	PageSize int

	// Cutoff is the earliest timestamp still in scope for this run.
	// Entries strictly older stop retrieval; entries exactly at the
	// cutoff are kept.
	Cutoff time.Time

	// Erroneous is the sentinel bound: an entry dated at or before it
	// carries no usable timestamp and is discarded.
	Erroneous time.Time

	// MaxPages bounds the number of page requests. Zero means
	// unbounded.
	MaxPages int
}

// Result summarizes a completed run.
type Result struct {
	// State says why retrieval stopped.
	State TerminationState

	// Pages is the number of page requests issued.
	Pages int

	// Added is the number of new entries merged into the snapshot.
	Added int

	// Duplicates is the number of entries skipped because their
	// message-id was already in the snapshot.
	Duplicates int

	// Discarded is the number of entries dropped for an erroneous
	// timestamp.
	Discarded int

	// LastDate is the timestamp of the newest-to-oldest scan's last
	// usable entry, zero when none was seen.
	LastDate time.Time
}

// Engine merges mailbox pages into a snapshot until the mailbox is
// exhausted or the cutoff is reached.
type Engine struct {
	mailbox source.Mailbox
	cfg     Config
	logger  *log.Logger
}

// New creates an Engine reading from mailbox with the given config.
func New(
	mailbox source.Mailbox, cfg Config, logger *log.Logger,
) *Engine {
	return &Engine{
		mailbox: mailbox,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run brings snapshot up to date with the mailbox and returns the
// merged snapshot alongside the run summary. Entries already present
// are never duplicated, so re-running against an unchanged mailbox is
// idempotent. On a transport error the merged snapshot is withheld:
// the caller must not persist anything from a failed run.
func (e *Engine) Run(
	ctx context.Context, snapshot []model.Entry,
) ([]model.Entry, Result, error) {
	known := make(map[string]struct{}, len(snapshot))
	for _, entry := range snapshot {
		known[entry.Key()] = struct{}{}
	}

	merged := snapshot
	var res Result

	for cursor := 0; ; cursor++ {
		if e.cfg.MaxPages > 0 && cursor >= e.cfg.MaxPages {
			res.State = PageLimit
			e.logger.Warn(
				"page limit reached before mailbox was exhausted",
				"max_pages", e.cfg.MaxPages,
			)
			break
		}

		page, err := e.mailbox.ListPage(
			ctx, e.cfg.Folder, e.cfg.PageSize, cursor,
		)
		if err != nil {
			return nil, res, fmt.Errorf("listing page %d: %w", cursor, err)
		}
		res.Pages++

		if len(page) == 0 {
			res.State = Exhausted
			break
		}

		var cutoffHit bool
		merged, cutoffHit = e.mergePage(page, merged, known, &res)

		e.logger.Info(
			"page loaded",
			"page", cursor,
			"entries", len(page),
			"new", res.Added,
			"duplicate", res.Duplicates,
			"discarded", res.Discarded,
			"last_date", res.LastDate,
		)

		if cutoffHit {
			res.State = CutoffReached
			break
		}
	}

	return merged, res, nil
}

// mergePage merges one page into the snapshot, in page order. It
// reports whether an entry older than the cutoff was seen; the rest of
// that page is discarded, since no later entry can be newer.
func (e *Engine) mergePage(
	page []source.MailEntry,
	merged []model.Entry,
	known map[string]struct{},
	res *Result,
) ([]model.Entry, bool) {
	for _, entry := range page {
		if !entry.Date.After(e.cfg.Erroneous) {
			res.Discarded++
			e.logger.Warn(
				"discarding entry with erroneous date",
				"message_id", entry.MessageID,
				"date", entry.Date,
			)
			continue
		}

		if entry.Date.Before(e.cfg.Cutoff) {
			return merged, true
		}

		res.LastDate = entry.Date

		if _, ok := known[entry.MessageID]; ok {
			res.Duplicates++
			continue
		}

		merged = append(merged, entry.Record())
		known[entry.MessageID] = struct{}{}
		res.Added++
	}

	return merged, false
}
