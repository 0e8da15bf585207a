package chain

import "errors"

// AppendError variants returned by TryAppend.
var (
	// ErrBadPrev is returned when block.Prev() does not match Head().Hash().
	ErrBadPrev = errors.New("chain: block prev does not match head hash")
	// ErrBadId is returned when block.ID() != Head().ID()+1.
	ErrBadId = errors.New("chain: block id does not follow head")
	// ErrBadHash is returned when the block fails self-validation (hash
	// mismatch or suffix unmet).
	ErrBadHash = errors.New("chain: block is self-invalid")
)
