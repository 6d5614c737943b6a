package pgrepos

import (
	"github.com/lib/pq"

	"github.com/trezcool/kazi/core"
)

// postgres error codes surfaced at the repo boundary
const (
	pqUniqueViolation     pq.ErrorCode = "23505"
	pqForeignKeyViolation pq.ErrorCode = "23503"
	pqNotNullViolation    pq.ErrorCode = "23502"
)

var errUnknownRelation = core.UnprocessableErr("a referenced record does not exist")

func pqErrorCode(err error) pq.ErrorCode {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code
	}
	return ""
}
