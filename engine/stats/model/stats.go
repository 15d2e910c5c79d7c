package model

import (
	"errors"
	"fmt"
	"time"
)

// Dimension is the customer attribute approved applications are grouped by.
type Dimension string

const (
	DimensionIndustry Dimension = "industry"
	DimensionRegion   Dimension = "region"
)

// Unset is reported for customers with an empty grouping attribute.
const Unset = "N/A"

var ErrUnknownDimension = errors.New("unknown stats dimension")

func ParseDimension(s string) (Dimension, error) {
	switch d := Dimension(s); d {
	case DimensionIndustry, DimensionRegion:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Bucket counts approvals for one value of a dimension.
type Bucket struct {
	Value        string `db:"value"         json:"value"`
	DefaultCount int64  `db:"default_count" json:"default_count"`
	RebirthCount int64  `db:"rebirth_count" json:"rebirth_count"`
}

// Window is the half-open reviewed_at range [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

const (
	MinYear = 1970
	MaxYear = 9999
)

// YearWindow covers one calendar year in UTC.
func YearWindow(year int) (Window, error) {
	if year < MinYear || year > MaxYear {
		return Window{}, fmt.Errorf("year must be between %d and %d", MinYear, MaxYear)
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(1, 0, 0)}, nil
}

// Summary is both breakdowns for one year.
type Summary struct {
	Year     int       `json:"year"`
	Industry []*Bucket `json:"industry"`
	Region   []*Bucket `json:"region"`
}
