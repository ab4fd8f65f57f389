package models

import (
	"testing"

	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCityBreakValidate(t *testing.T) {
	ok := CityBreak{Name: "Paris", StartDate: "2025-06-01", EndDate: "2025-06-03", Price: 10}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name string
		mod  func(*CityBreak)
		want string
	}{
		{"no name", func(c *CityBreak) { c.Name = " " }, "name is required"},
		{"negative price", func(c *CityBreak) { c.Price = -1 }, "price"},
		{"bad date", func(c *CityBreak) { c.StartDate = "June" }, "invalid startDate"},
		{"reversed", func(c *CityBreak) { c.EndDate = "2025-05-01" }, "before startDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ok
			tt.mod(&c)
			err := c.Validate()
			require.ErrorIs(t, err, common.ErrValidation)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
