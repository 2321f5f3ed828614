package service

import "time"

// ExpiryFrom computes the key expiry: one calendar year after the given
// instant, same month and day. A key issued on Feb 29 clamps to Feb 28 of
// the following year rather than rolling over to Mar 1, which is what
// time.AddDate would do.
func ExpiryFrom(now time.Time) time.Time {
	if now.Month() == time.February && now.Day() == 29 {
		return time.Date(now.Year()+1, time.February, 28,
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
	}
	return now.AddDate(1, 0, 0)
}
