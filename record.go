package rowhook

import "time"

// record is a single captured row change, buffered until flush.
type record struct {
	db       string
	table    string
	action   Action
	oldRowID int64
	newRowID int64
	depth    int
	before   []any // old column values; nil for inserts
	after    []any // new column values; nil for deletes
	at       time.Time
}
