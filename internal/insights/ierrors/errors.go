/*
Package ierrors defines the pipeline's structured error kinds (spec §7):
ConfigInvalid and PipelineCycle are fatal at build time; UnknownInstrument is
a runtime lookup failure. All three wrap through the teacher's
internal/errors composition so errors.As/errors.Is keep working the way the
rest of this repository already relies on.
*/
package ierrors

import (
	"fmt"

	"github.com/google/uuid"
	baseerrors "github.com/yanun0323/errors"

	ierr "insights-pipeline/internal/errors"
)

// Sentinel base errors, mirroring pkg/exception's use of yanun0323/errors.
var (
	ErrConfigInvalid     = baseerrors.New("config invalid")
	ErrPipelineCycle     = baseerrors.New("pipeline cycle detected")
	ErrUnknownInstrument = baseerrors.New("unknown instrument")
)

// ConfigInvalid reports a structural configuration error: missing fields,
// arity mismatch, unknown selector, or TTL too short.
type ConfigInvalid struct {
	What string
	err  error
}

// NewConfigInvalid builds a ConfigInvalid error for the given reason.
func NewConfigInvalid(what string) *ConfigInvalid {
	return &ConfigInvalid{What: what, err: ierr.Wrap(ErrConfigInvalid, what)}
}

func (e *ConfigInvalid) Error() string { return e.err.Error() }
func (e *ConfigInvalid) Unwrap() error { return ErrConfigInvalid }

// PipelineCycle reports a cycle detected in the feature DAG at build time.
type PipelineCycle struct {
	Path []string
	err  error
}

// NewPipelineCycle builds a PipelineCycle error carrying the cyclic path.
func NewPipelineCycle(path []string) *PipelineCycle {
	msg := fmt.Sprintf("cycle: %v", path)
	return &PipelineCycle{Path: path, err: ierr.Wrap(ErrPipelineCycle, msg)}
}

func (e *PipelineCycle) Error() string { return e.err.Error() }
func (e *PipelineCycle) Unwrap() error { return ErrPipelineCycle }

// UnknownInstrument reports a runtime lookup against an instrument id the
// registry has never seen.
type UnknownInstrument struct {
	ID  uuid.UUID
	err error
}

// NewUnknownInstrument builds an UnknownInstrument error for id.
func NewUnknownInstrument(id uuid.UUID) *UnknownInstrument {
	return &UnknownInstrument{ID: id, err: ierr.Wrap(ErrUnknownInstrument, id.String())}
}

func (e *UnknownInstrument) Error() string { return e.err.Error() }
func (e *UnknownInstrument) Unwrap() error { return ErrUnknownInstrument }
