// Package timezone pins every timestamp the service produces or accepts to
// one application location. It is UTC until Init names another.
package timezone

import (
	"roomsense/shared/constant"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var location atomic.Pointer[time.Location]

// Init loads the IANA location name. Empty or unknown names select UTC.
func Init(name string) {
	if name == "" {
		location.Store(time.UTC)

		return
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("Unknown timezone, using UTC")

		loc = time.UTC
	}

	location.Store(loc)

	log.Info().Str("timezone", loc.String()).Msg("Application timezone set")
}

func GetLocation() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

// Now is the server wall clock. Motion readings are stamped with it, never
// with a device supplied time.
func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// ParseInstant reads an RFC 3339 timestamp. The offset in the value decides
// the instant; the result is expressed in the application location.
func ParseInstant(value string) (time.Time, error) {
	t, err := time.Parse(constant.DateFormat, value)
	if err != nil {
		return time.Time{}, err //nolint:wrapcheck
	}

	return ToAppTime(t), nil
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
