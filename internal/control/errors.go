package control

import "errors"

var (
	// ErrRead indicates the control file exists but could not be read.
	ErrRead = errors.New("control: cannot read control file")

	// ErrCorrupt indicates the control file is not a JSON object. Write
	// treats a corrupt file as empty and overwrites it.
	ErrCorrupt = errors.New("control: control file is not valid JSON")

	// ErrWrite indicates the merged record could not be persisted. Callers
	// may retry.
	ErrWrite = errors.New("control: cannot write control file")
)
