package xlsx_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"hotel_agency/internal/adapters/xlsx"
	"hotel_agency/internal/domain"
)

func TestWriteBookings(t *testing.T) {
	var b domain.RoomBooking
	b.ID = 11
	b.Client.FullName = "Alisher Navoiy"
	b.Client.Phone = "+998901234567"
	b.Room.RoomType.Name = domain.RoomDouble
	b.CheckInTime, b.CheckOutTime = "2026-05-01", "2026-05-04"
	b.Breakfast = true

	var buf bytes.Buffer
	require.NoError(t, xlsx.WriteBookings(&buf, []domain.RoomBooking{b}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Bookings"}, f.GetSheetList())
	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, xlsx.BookingsHeader, rows[0])
	assert.Equal(t, "11", rows[1][0])
	assert.Equal(t, "Alisher Navoiy", rows[1][1])
	assert.Equal(t, "DOUBLE", rows[1][4])
	assert.Equal(t, "yes", rows[1][9])
}

func TestWriteInquiries_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, xlsx.WriteInquiries(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tour Requests")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, xlsx.InquiriesHeader, rows[0])
}

func TestWriteInquiries_StatusNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, xlsx.WriteInquiries(&buf, []domain.TourInquiry{
		{ID: "a1", Name: "Dilnoza", Phone: "+998901112233", Status: domain.InquiryConsidering},
	}))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tour Requests")
	require.NoError(t, err)
	assert.Equal(t, "considering", rows[1][5])
}
