package services

import "time"

// Clock supplies timestamps for ledger entries and orders. A nil Clock is
// the wall clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
