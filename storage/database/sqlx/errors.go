package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kijani/core/growthtree"
)

// trapWriteErr maps psql error classes onto the scheduler's sentinel
// errors so the committer can classify a failed write.
func trapWriteErr(err error, msg string) error {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return errors.Wrapf(growthtree.ErrInvalidReference, "%s: %v", msg, pqErr)
		case "23502", "23505", "23514": // not_null, unique, check
			return errors.Wrapf(growthtree.ErrInvalidState, "%s: %v", msg, pqErr)
		case "42501", "28000": // insufficient_privilege, invalid_authorization
			return errors.Wrapf(growthtree.ErrForbidden, "%s: %v", msg, pqErr)
		}
	}
	return errors.Wrap(err, msg)
}
