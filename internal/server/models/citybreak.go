// Package models defines the server-side entities.
package models

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/common"
)

// CityBreak is a stored trip entry. The JSON form is the wire format of the
// REST API and the push channel.
type CityBreak struct {
	ID                string    `json:"_id"`
	UserID            string    `json:"userId"`
	Name              string    `json:"name"`
	StartDate         string    `json:"startDate"`
	EndDate           string    `json:"endDate"`
	Price             float64   `json:"price"`
	TransportIncluded bool      `json:"transportIncluded"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`
}

const dateLayout = "2006-01-02"

// Validate checks the user-supplied fields.
func (c CityBreak) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Name) == "" {
		problems = append(problems, "name is required")
	}
	if math.IsNaN(c.Price) || math.IsInf(c.Price, 0) || c.Price < 0 {
		problems = append(problems, "price must be a non-negative number")
	}
	if c.Version < 0 {
		problems = append(problems, "version must be non-negative")
	}

	start, okStart := parseDate(c.StartDate)
	if !okStart {
		problems = append(problems, fmt.Sprintf("invalid startDate %q", c.StartDate))
	}
	end, okEnd := parseDate(c.EndDate)
	if !okEnd {
		problems = append(problems, fmt.Sprintf("invalid endDate %q", c.EndDate))
	}
	if okStart && okEnd && !start.IsZero() && !end.IsZero() && end.Before(start) {
		problems = append(problems, "endDate is before startDate")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	t, err := time.Parse(time.RFC3339, s)
	return t, err == nil
}

// ChangeType names a change broadcast to the owner's push connections.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)
