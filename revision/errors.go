package revision

import "errors"

var (
	ErrInvalidScript     = errors.New("invalid revision script")
	ErrDuplicateRevision = errors.New("revision is defined more than once")
	ErrUnknownRevision   = errors.New("no such revision")
	ErrAmbiguousRevision = errors.New("revision prefix matches more than one revision")
	ErrCycle             = errors.New("revision graph contains a cycle")
	ErrMultipleHeads     = errors.New("multiple heads are present, specify a revision or use \"heads\"")
	ErrBranchPoint       = errors.New("relative step is ambiguous at a branch point")
	ErrRelativeRange     = errors.New("relative revision is out of range")
	ErrInvalidTarget     = errors.New("target is not a valid downgrade destination from the current heads")
	ErrIrreversible      = errors.New("revision has no downgrade")
	ErrNotConfigured     = errors.New("environment is not configured with a connection")
)
