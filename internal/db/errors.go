package db

import "errors"

// Sentinel errors for engine operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
	// ErrQuerySyntax marks a query string the engine could not parse.
	ErrQuerySyntax = errors.New("db: query syntax error")
)

// Op constants name the engine command for error context.
const (
	OpPing        = "PING"
	OpCreateIndex = "FT.CREATE"
	OpDropIndex   = "FT.DROPINDEX"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpAggregate   = "FT.AGGREGATE"
	OpPut         = "MULTI/HSET"
	OpDel         = "DEL"

	OpOpen   = "OPEN"
	OpIndex  = "INDEX"
	OpDelete = "DELETE"
	OpQuery  = "QUERY"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
