// Package localday does calendar-day arithmetic in the club's fixed UTC+9 zone.
// Every date comparison in the domain (competition day, challenge window, gift
// quota day) goes through here.
package localday

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// Layout is the wire and storage format of a calendar day.
	Layout = "2006-01-02"

	offsetSeconds = 9 * 60 * 60
)

// Location is a fixed +09:00 zone. It never observes daylight saving.
var Location = time.FixedZone("UTC+9", offsetSeconds)

var ErrInvalidDate = errors.New("invalid calendar date")

// DateOf returns the local calendar day of t.
func DateOf(t time.Time) string {
	return t.In(Location).Format(Layout)
}

// Today returns the local calendar day of now.
func Today(now time.Time) string {
	return DateOf(now)
}

// StartOf returns 00:00 local of the given day.
func StartOf(date string) (time.Time, error) {
	t, err := time.ParseInLocation(Layout, date, Location)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "%q: %s", date, err)
	}
	return t, nil
}

// Window returns the half-open instant range [from, until) covering the local
// days startDate through endDate inclusive. until is 00:00 local of the day after
// endDate, so 23:59:59.999 on endDate is inside and the next midnight is not.
func Window(startDate, endDate string) (from, until time.Time, err error) {
	from, err = StartOf(startDate)
	if err != nil {
		return
	}
	end, err := StartOf(endDate)
	if err != nil {
		return
	}
	if end.Before(from) {
		err = errors.Wrapf(ErrInvalidDate, "end date %s is before start date %s", endDate, startDate)
		return
	}
	until = end.AddDate(0, 0, 1)
	return from, until, nil
}

// Valid reports whether date is a well-formed calendar day.
func Valid(date string) bool {
	_, err := StartOf(date)
	return err == nil
}
