package service

import (
	"context"
	"errors"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/store"
)

// codes maps leaf sentinel errors to error codes. Order matters only for
// errors that wrap more than one sentinel.
var codes = []struct {
	err  error
	code subwayerrors.Code
}{
	{store.ErrNotFound, subwayerrors.ErrCodeLineNotFound},
	{line.ErrDuplicateSection, subwayerrors.ErrCodeDuplicateSection},
	{line.ErrDisconnectedSection, subwayerrors.ErrCodeDisconnectedSection},
	{line.ErrInvalidSplitDistance, subwayerrors.ErrCodeInvalidSplit},
	{line.ErrMinimumSections, subwayerrors.ErrCodeMinimumSections},
	{line.ErrUnknownStation, subwayerrors.ErrCodeStationNotFound},
	{line.ErrStationNotFound, subwayerrors.ErrCodeInternal},
	{line.ErrInvalidDistance, subwayerrors.ErrCodeInvalidDistance},
	{line.ErrSameStation, subwayerrors.ErrCodeInvalidStation},
	{line.ErrInvalidStationID, subwayerrors.ErrCodeInvalidStation},
	{line.ErrInvalidLineID, subwayerrors.ErrCodeInvalidInput},
	{line.ErrLineMismatch, subwayerrors.ErrCodeInvalidInput},
	{line.ErrBranchingPath, subwayerrors.ErrCodeInvalidFormat},
	{line.ErrCyclicPath, subwayerrors.ErrCodeInvalidFormat},
	{context.DeadlineExceeded, subwayerrors.ErrCodeTimeout},
}

// classify wraps err in a coded error. Errors that already carry a code are
// returned unchanged; unrecognized errors get fallback.
func classify(err error, fallback subwayerrors.Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if subwayerrors.GetCode(err) != "" {
		return err
	}
	code := fallback
	for _, c := range codes {
		if errors.Is(err, c.err) {
			code = c.code
			break
		}
	}
	return subwayerrors.Wrap(code, err, format, args...)
}
