package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func slipStatus(s SlipStatus) *SlipStatus { return &s }

func TestDeriveUIStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  BookingStatus
		payment PaymentStatus
		latest  *SlipStatus
		want    UIStatus
	}{
		{"cancelled beats everything", BookingStatusCancelled, PaymentStatusPaid, slipStatus(SlipStatusSubmitted), UIStatusCancelled},
		{"rejected slip beats paid", BookingStatusConfirmed, PaymentStatusPaid, slipStatus(SlipStatusRejected), UIStatusRejected},
		{"submitted slip awaits review", BookingStatusPending, PaymentStatusPending, slipStatus(SlipStatusSubmitted), UIStatusAwaitingReview},
		{"paid with approved slip", BookingStatusConfirmed, PaymentStatusPaid, slipStatus(SlipStatusApproved), UIStatusConfirmed},
		{"paid without slip", BookingStatusPending, PaymentStatusPaid, nil, UIStatusConfirmed},
		{"nothing yet", BookingStatusPending, PaymentStatusPending, nil, UIStatusPendingPayment},
		{"approved slip but unpaid", BookingStatusPending, PaymentStatusPending, slipStatus(SlipStatusApproved), UIStatusPendingPayment},
		{"completed stay", BookingStatusCompleted, PaymentStatusPaid, nil, UIStatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveUIStatus(tt.status, tt.payment, tt.latest))
		})
	}
}

func TestParseGuests(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
	}{
		{nil, 1},
		{float64(3), 3},
		{float64(0), 1},
		{float64(-4), 1},
		{2.5, 1},
		{4, 4},
		{0, 1},
		{" 5 ", 5},
		{"two", 1},
		{true, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseGuests(tt.in), "%#v", tt.in)
	}
}

func TestParseBookingDate(t *testing.T) {
	valid := map[string]time.Time{
		"2026-03-10":                time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		"2026-03-10T14:00:00Z":      time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		"2026-03-10T14:00:00+07:00": time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC),
		"2026-03-10T14:00":          time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		" 2026-03-10 14:00:00 ":     time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}
	for in, want := range valid {
		got, ok := ParseBookingDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}

	for _, in := range []string{"", "  ", "tomorrow", "10/03/2026", "2026-13-01"} {
		_, ok := ParseBookingDate(in)
		assert.False(t, ok, in)
	}
}

func TestCountNights(t *testing.T) {
	in := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, CountNights(in, in.Add(time.Minute)))
	assert.Equal(t, 1, CountNights(in, in.Add(24*time.Hour)))
	assert.Equal(t, 2, CountNights(in, in.Add(24*time.Hour+time.Second)))
	assert.Equal(t, 3, CountNights(in, in.AddDate(0, 0, 3)))
	assert.Equal(t, 1, CountNights(in, in))
	assert.Equal(t, 1, CountNights(in, in.Add(-48*time.Hour)))
}

func TestUnitCode(t *testing.T) {
	assert.Equal(t, "D001", UnitCode("D", 1))
	assert.Equal(t, "S042", UnitCode("S", 42))
	assert.Equal(t, "1000", UnitCode("", 1000))
	assert.Equal(t, "R1234", UnitCode("R", 1234))
}

func TestCreateRoomTypeRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateRoomTypeRequest
		wantErr string
	}{
		{"valid", CreateRoomTypeRequest{Type: "Deluxe", Rooms: []CreateRoomUnitRequest{{Code: "D001"}, {Code: "D002", Status: "maintenance"}}}, ""},
		{"blank type", CreateRoomTypeRequest{Type: "  "}, "type is required"},
		{"bad status", CreateRoomTypeRequest{Type: "Deluxe", Status: "closed"}, "invalid status"},
		{"negative capacity", CreateRoomTypeRequest{Type: "Deluxe", Capacity: -1}, "capacity"},
		{"negative price", CreateRoomTypeRequest{Type: "Deluxe", PricePerNight: -10}, "price_per_night"},
		{"blank room code", CreateRoomTypeRequest{Type: "Deluxe", Rooms: []CreateRoomUnitRequest{{Code: " "}}}, "room code is required"},
		{"duplicate room code", CreateRoomTypeRequest{Type: "Deluxe", Rooms: []CreateRoomUnitRequest{{Code: "D1"}, {Code: "D1"}}}, "duplicate room code"},
		{"bad room status", CreateRoomTypeRequest{Type: "Deluxe", Rooms: []CreateRoomUnitRequest{{Code: "D1", Status: "dirty"}}}, "invalid room status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPackageRequest_Validate(t *testing.T) {
	name := "Spa Weekend"
	blank := ""
	discount := 101.0
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, (&PackageRequest{Name: &name}).ValidateCreate())
	assert.Error(t, (&PackageRequest{}).ValidateCreate())
	assert.Error(t, (&PackageRequest{Name: &blank}).Validate())
	assert.Error(t, (&PackageRequest{DiscountPercent: &discount}).Validate())
	assert.Error(t, (&PackageRequest{ValidFrom: &from, ValidTo: &from}).Validate())
	assert.NoError(t, (&PackageRequest{}).Validate())
}

func TestBookingStatus_IsClosed(t *testing.T) {
	assert.False(t, BookingStatusPending.IsClosed())
	assert.False(t, BookingStatusConfirmed.IsClosed())
	assert.True(t, BookingStatusCancelled.IsClosed())
	assert.True(t, BookingStatusCompleted.IsClosed())
}

func TestPrincipal(t *testing.T) {
	var nobody *Principal
	assert.False(t, nobody.IsAdmin())
	assert.False(t, nobody.CanAccess(Principal{}.ID))

	guest := &Principal{Role: RoleUser}
	assert.False(t, guest.IsAdmin())
	assert.True(t, guest.CanAccess(guest.ID))
}

func TestStringArray_JSON(t *testing.T) {
	var empty StringArray
	out, err := json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(out))

	v, err := StringArray{"wifi", "tv"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"wifi","tv"}`, v)

	var scanned StringArray
	require.NoError(t, scanned.Scan([]byte(`{wifi,"sea view"}`)))
	assert.Equal(t, StringArray{"wifi", "sea view"}, scanned)
	require.NoError(t, scanned.Scan(nil))
	assert.Empty(t, scanned)
}
