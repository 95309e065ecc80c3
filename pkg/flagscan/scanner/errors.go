package scanner

import "errors"

// Fatal scan errors. Everything else a scan meets is counted as a skipped
// file and never returned.
var (
	ErrEmptyFlagKey   = errors.New("flag key is empty")
	ErrRootNotFound   = errors.New("scan root does not exist")
	ErrRootNotDir     = errors.New("scan root is not a directory")
	ErrRootUnreadable = errors.New("scan root is not readable")
)
