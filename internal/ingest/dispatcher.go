package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/parser"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/internal/store"
	"github.com/cdi-pixel/etl-gcp-function-tmabrasil/pkg/logger"
)

// ErrBadWorkbook marks a file that cannot be opened as a workbook at
// all. Malformed input, not retryable.
var ErrBadWorkbook = errors.New("file is not a readable workbook")

// IsValidation reports whether err is caused by malformed input.
// Validation failures are audited and swallowed: redelivering the same
// bytes cannot succeed. Everything else re-raises so the trigger
// collaborator may redeliver.
func IsValidation(err error) bool {
	return errors.Is(err, parser.ErrEmptySheet) ||
		errors.Is(err, parser.ErrHeaderMismatch) ||
		errors.Is(err, ErrBadWorkbook)
}

// Dispatcher classifies incoming files, runs the resolve/materialize/
// load pipeline and records the outcome in the status log.
type Dispatcher struct {
	store           *store.Store
	blobs           BlobSource
	masterSheetSlug string
	retry           store.RetryPolicy
}

func New(st *store.Store, blobs BlobSource, masterSheetSlug string) *Dispatcher {
	return &Dispatcher{
		store:           st,
		blobs:           blobs,
		masterSheetSlug: masterSheetSlug,
		retry:           store.DefaultRetryPolicy(),
	}
}

// Handle processes one storage event end to end. A nil return means
// the event is settled (success, skip, or unrecoverable input); a
// non-nil return asks the collaborator to redeliver.
func (d *Dispatcher) Handle(ev Event) error {
	if ev.Bucket == "" || ev.Name == "" {
		logger.Warnf("ignoring event with missing bucket or object name")
		return nil
	}

	kind, base := Classify(ev.Name)
	if kind == KindSkip {
		logger.Infof("ignoring object %s: not an xlsx upload", ev.Name)
		return nil
	}

	logger.Infof("ingesting gs://%s/%s (size=%d)", ev.Bucket, ev.Name, ev.Size)

	rc, err := d.blobs.Open(ev.Bucket, ev.Name)
	if err != nil {
		err = fmt.Errorf("failed to fetch object: %w", err)
		return d.settle(base, err)
	}
	defer rc.Close()

	return d.settle(base, d.process(kind, base, rc))
}

// IngestFile runs the same pipeline against a local file, bypassing
// the blob source. Used by the one-shot CLI path.
func (d *Dispatcher) IngestFile(path string) error {
	base := filepath.Base(path)
	kind, key := Classify(base)
	if kind == KindSkip {
		logger.Infof("ignoring %s: not an xlsx file", path)
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return d.settle(key, fmt.Errorf("failed to open file: %w", err))
	}
	defer f.Close()
	return d.settle(key, d.process(kind, key, f))
}

// process runs resolve -> materialize -> load for one workbook stream.
func (d *Dispatcher) process(kind FileKind, base string, r io.Reader) error {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadWorkbook, err)
	}
	defer wb.Close()

	switch kind {
	case KindMaster:
		resolved, err := parser.ResolveMaster(wb, d.masterSheetSlug)
		if err != nil {
			return err
		}
		table := parser.Materialize(resolved)
		if err := d.store.ReplaceMaster(table); err != nil {
			return err
		}
		logger.Infof("master %s: replaced base_processos with %d rows (sheet %q)",
			base, len(table.Rows), resolved.SheetName)
	case KindLedger:
		resolved, err := parser.ResolveLedger(wb)
		if err != nil {
			return err
		}
		table := parser.Materialize(resolved)
		if err := d.store.ReplaceLedgerFile(base, table, d.retry); err != nil {
			return err
		}
		logger.Infof("ledger %s: replaced partition with %d rows", base, len(table.Rows))
	}
	return nil
}

// settle records the audit row and applies the error policy: nil for
// success and validation failures, the error itself for anything that
// should trigger redelivery.
func (d *Dispatcher) settle(base string, err error) error {
	if err == nil {
		d.store.AppendStatus(base, store.StatusSuccess, "")
		return nil
	}

	d.store.AppendStatus(base, store.StatusError, err.Error())
	if IsValidation(err) {
		logger.Errorf("rejected %s: %v", base, err)
		return nil
	}
	logger.Errorf("failed to ingest %s: %v", base, err)
	return err
}
