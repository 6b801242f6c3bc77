package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestForwardStatus(t *testing.T) {
	cases := []struct {
		stored   string
		incoming string
		want     string
	}{
		{"", "", UserStatusActive},
		{"", UserStatusActive, UserStatusActive},
		{UserStatusActive, UserStatusSuspended, UserStatusSuspended},
		{UserStatusSuspended, UserStatusActive, UserStatusSuspended},
		{UserStatusInactive, UserStatusSuspended, UserStatusSuspended},
		{UserStatusSuspended, UserStatusInactive, UserStatusInactive},
		{UserStatusDeleted, UserStatusActive, UserStatusDeleted},
		{UserStatusDeleted, UserStatusSuspended, UserStatusDeleted},
		{UserStatusActive, "", UserStatusActive},
		{UserStatusSuspended, "", UserStatusSuspended},
	}

	for _, tc := range cases {
		got := ForwardStatus(tc.stored, tc.incoming)
		assert.Equal(t, tc.want, got, "stored=%q incoming=%q", tc.stored, tc.incoming)
	}
}

func TestPrimaryMembership(t *testing.T) {
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("NoMemberships", func(t *testing.T) {
		u := &User{ID: "u"}
		_, ok := u.PrimaryMembership()
		assert.False(t, ok)
	})

	t.Run("FlaggedPrimaryWins", func(t *testing.T) {
		u := &User{Organizations: []Membership{
			{OrgID: "early", JoinedAt: jan},
			{OrgID: "flagged", JoinedAt: mar, IsPrimary: true},
		}}
		m, ok := u.PrimaryMembership()
		assert.True(t, ok)
		assert.Equal(t, "flagged", m.OrgID)
	})

	t.Run("FallsBackToEarliestJoined", func(t *testing.T) {
		u := &User{Organizations: []Membership{
			{OrgID: "late", JoinedAt: mar},
			{OrgID: "early", JoinedAt: jan},
		}}
		m, ok := u.PrimaryMembership()
		assert.True(t, ok)
		assert.Equal(t, "early", m.OrgID)
	})
}
