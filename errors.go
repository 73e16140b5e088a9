package vfs

import (
	"errors"
	"fmt"
)

// Kind is the closed failure taxonomy for core VFS operations.
type Kind int

const (
	NotFound Kind = iota
	NotADir
	NotAFile
	Exists
	PermDenied
	NoSpace
	Invalid
	IOError
	BadImage
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case NotADir:
		return "not a directory"
	case NotAFile:
		return "not a file"
	case Exists:
		return "already exists"
	case PermDenied:
		return "permission denied"
	case NoSpace:
		return "no space left"
	case Invalid:
		return "invalid argument"
	case IOError:
		return "i/o error"
	case BadImage:
		return "bad image"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// VFSError carries the operation, path, and failure kind for a failed
// call, so callers can distinguish NotFound from PermDenied etc. with
// IsKind while still getting a readable message.
type VFSError struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *VFSError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %s", e.Op, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
}

func (e *VFSError) Unwrap() error {
	return e.Err
}

// IsKind lets callers test a *VFSError's Kind without a type assertion:
//
//	if vfs.IsKind(err, vfs.NotFound) { ... }
func IsKind(err error, k Kind) bool {
	var ve *VFSError
	if errors.As(err, &ve) {
		return ve.Kind == k
	}
	return false
}

func newErr(k Kind, op, path string, cause error) *VFSError {
	return &VFSError{Kind: k, Op: op, Path: path, Err: cause}
}

// ErrEmptyPath wraps an empty-path/invalid-argument call, usable with
// errors.Is where no path or op is meaningful.
var ErrEmptyPath = errors.New("vfs: empty path")
