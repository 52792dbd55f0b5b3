package engine

import (
	"errors"
	"fmt"

	"github.com/cameronmartino/qurro/model"
)

// ErrUnknownFeature is returned when a click names a feature id that is not
// present in the metadata index.
//
// This is an engine-layer sentinel; the qurro package may translate it into
// its public error contract.
var ErrUnknownFeature = errors.New("feature not in metadata index")

// ErrPoolClosed is returned when work is submitted to a closed WorkerPool.
var ErrPoolClosed = errors.New("worker pool closed")

// GroupEmptyError indicates that one side of the selection resolved to zero
// features, so no log ratio can be computed.
type GroupEmptyError struct {
	Slot model.Slot
}

func (e *GroupEmptyError) Error() string {
	return fmt.Sprintf("%s selection resolved to zero features", e.Slot)
}
