// Package xlsx renders reception lists as spreadsheets.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"hotel_agency/internal/domain"
)

var BookingsHeader = []string{
	"ID", "Guest", "Phone", "Passport", "Room Type", "Room", "Guests", "Check-in", "Check-out", "Breakfast", "Status", "Manual",
}

var InquiriesHeader = []string{"ID", "Name", "Phone", "Email", "Tour", "Status", "Description"}

func WriteBookings(w io.Writer, rows []domain.RoomBooking) error {
	data := make([][]any, 0, len(rows))
	for _, b := range rows {
		data = append(data, []any{
			b.ID, b.Client.FullName, b.Client.Phone, b.Client.PassportNumber,
			b.Room.RoomType.Name, b.Room.RoomName, b.GuestsCount,
			b.CheckInTime, b.CheckOutTime, yesNo(b.Breakfast), b.BookingStatus, yesNo(b.Manual),
		})
	}
	return write(w, "Bookings", BookingsHeader, []float64{8, 28, 18, 14, 12, 12, 8, 14, 14, 10, 8, 8}, data)
}

func WriteInquiries(w io.Writer, rows []domain.TourInquiry) error {
	data := make([][]any, 0, len(rows))
	for _, q := range rows {
		data = append(data, []any{
			string(q.ID), q.Name, q.Phone, q.Email, q.TravelTourID, domain.InquiryStatusName(q.Status), q.Description,
		})
	}
	return write(w, "Tour Requests", InquiriesHeader, []float64{38, 24, 18, 26, 8, 12, 48}, data)
}

func write(w io.Writer, sheet string, headers []string, widths []float64, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("header style %s: %w", cell, err)
		}
		if i < len(widths) {
			col, _ := excelize.ColumnNumberToName(i + 1)
			if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
				return fmt.Errorf("column width %s: %w", col, err)
			}
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", r+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
