package postgres

import (
	"errors"

	"github.com/Tosmel2/Mini-Core-Banking/src/internal/commons"
	"github.com/lib/pq"
)

const uniqueViolationCode = "23505"

// translateError maps driver-level failures onto the commons sentinels the
// services branch on.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
		return commons.ErrDuplicateKey
	}
	return err
}
