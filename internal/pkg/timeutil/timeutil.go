package timeutil

import "time"

var now = time.Now

func NowUnix() int64 {
	return now().Unix()
}

// FromUnix returns nil for non-positive values so unset columns encode as null.
func FromUnix(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
