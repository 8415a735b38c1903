package time

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// FormatUnix parses integer seconds since the epoch.
	FormatUnix = "unix"
)

// Layouts tried, in order, when no explicit format is configured.
var Layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTime parses str with format, or with each of Layouts when format is
// empty. Values without a zone are read in location, UTC when nil.
func ParseTime(str string, format string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}

	switch format {
	case "":
		for _, layout := range Layouts {
			if t, err := time.ParseInLocation(layout, str, location); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("'%s' is not a recognized time", str)
	case FormatUnix:
		seconds, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("'%s' is not a unix time: %w", str, err)
		}
		return time.Unix(seconds, 0).In(location), nil
	}

	t, err := time.ParseInLocation(format, str, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("'%s' does not match format '%s': %w", str, format, err)
	}
	return t, nil
}

// LoadLocation resolves a zone name. An empty name yields nil, meaning no
// explicit zone.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}

	location, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone '%s': %w", name, err)
	}
	return location, nil
}
