package domainage

import (
	"context"
	"testing"
	"time"

	rdaplib "github.com/openrdap/rdap"
	"github.com/stretchr/testify/assert"
)

func TestGrade(t *testing.T) {
	now := time.Now()

	testCases := []struct {
		name       string
		age        Age
		wantWeight int
	}{
		{"unknown age contributes nothing", Age{Known: false}, 0},
		{"brand new domain", knownAge(now, 2), 25},
		{"two weeks old", knownAge(now, 14), 20},
		{"two months old", knownAge(now, 60), 15},
		{"half a year old", knownAge(now, 200), 10},
		{"older than a year", knownAge(now, 400), 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			weight, reason := tc.age.Grade()
			assert.Equal(t, tc.wantWeight, weight)
			if tc.wantWeight > 0 {
				assert.NotEmpty(t, reason)
			} else {
				assert.Empty(t, reason)
			}
		})
	}
}

func knownAge(now time.Time, days int) Age {
	reg := now.AddDate(0, 0, -days)
	return Age{Domain: "example.com", Known: true, RegistrationDate: &reg, AgeDays: days}
}

func TestLookupEmptyDomain(t *testing.T) {
	c := NewClient()

	_, err := c.Lookup(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyDomain)
}

func TestBuildAge(t *testing.T) {
	reg := time.Now().AddDate(0, 0, -10).UTC().Format(time.RFC3339)

	d := &rdaplib.Domain{
		Events: []rdaplib.Event{
			{Action: "last changed", Date: reg},
			{Action: "Registration", Date: reg},
		},
	}

	age := buildAge("example.com", d)

	assert.True(t, age.Known)
	assert.Equal(t, 10, age.AgeDays)
	assert.NotNil(t, age.RegistrationDate)
}

func TestBuildAgeWithoutRegistrationEvent(t *testing.T) {
	d := &rdaplib.Domain{
		Events: []rdaplib.Event{{Action: "expiration", Date: "not-a-date"}},
	}

	age := buildAge("example.com", d)

	assert.False(t, age.Known)
	weight, _ := age.Grade()
	assert.Zero(t, weight)
}
