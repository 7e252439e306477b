package timezone

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimezone is returned for input that is neither a small UTC offset
// nor a resolvable IANA zone name.
var ErrInvalidTimezone = errors.New("invalid timezone")

// Default is assigned to every newly registered user.
const Default = "Europe/Warsaw"

var offsetRe = regexp.MustCompile(`^[+-](?:[0-9]|1[0-4])$`)

// Normalize validates a user-supplied timezone string and returns its stored
// canonical form: "UTC+H"/"UTC-H" for signed integer offsets in [-14, +14],
// or the IANA name verbatim when the platform timezone database resolves it.
func Normalize(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", ErrInvalidTimezone
	}

	if offsetRe.MatchString(candidate) {
		return "UTC" + candidate, nil
	}

	if _, err := time.LoadLocation(candidate); err != nil {
		return "", ErrInvalidTimezone
	}
	return candidate, nil
}

// Location re-expands a stored canonical timezone into a concrete
// offset-bearing *time.Location usable at dispatch time.
func Location(stored string) (*time.Location, error) {
	if strings.HasPrefix(stored, "UTC+") || strings.HasPrefix(stored, "UTC-") {
		hours, err := strconv.Atoi(stored[len("UTC"):])
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, stored)
		}
		return time.FixedZone(stored, hours*3600), nil
	}

	loc, err := time.LoadLocation(stored)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, stored)
	}
	return loc, nil
}

// LocalDate returns the user-local calendar date for the given UTC instant,
// normalized to midnight UTC so it maps cleanly onto a DATE column.
func LocalDate(stored string, nowUTC time.Time) (time.Time, error) {
	loc, err := Location(stored)
	if err != nil {
		return time.Time{}, err
	}
	local := nowUTC.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC), nil
}
