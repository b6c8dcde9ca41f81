package ingest

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Event is the storage-notification payload delivered by the trigger
// collaborator: an object landed in a bucket.
type Event struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
	Size   int64  `json:"size"`
}

// FileKind is the ingestion policy a file name routes to.
type FileKind int

const (
	KindSkip FileKind = iota
	KindMaster
	KindLedger
)

// Classify routes an object name by its basename, matched
// case-insensitively: the two master workbook names get the full
// replace policy, any other .xlsx is a ledger file keyed by its own
// basename, everything else is ignored.
func Classify(objectName string) (FileKind, string) {
	base := path.Base(objectName)
	lower := strings.ToLower(base)
	switch lower {
	case "base_legal.xlsx", "base_geral.xlsx":
		return KindMaster, base
	}
	if strings.HasSuffix(lower, ".xlsx") {
		return KindLedger, base
	}
	return KindSkip, base
}

// BlobSource yields a readable byte stream for a stored object. The
// real cloud download lives behind this seam; the job itself only
// needs the stream.
type BlobSource interface {
	Open(bucket, object string) (io.ReadCloser, error)
}

// DirBlobSource serves objects from a local directory tree laid out as
// root/bucket/object.
type DirBlobSource struct {
	Root string
}

func (d DirBlobSource) Open(bucket, object string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(d.Root, bucket, filepath.FromSlash(object)))
}
