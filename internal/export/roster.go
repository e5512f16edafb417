// Package export renders classroom rosters as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const RosterSheet = "Roster"

const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var rosterHeader = []interface{}{
	"No.", "Student ID", "Full Name", "Email", "Phone", "Major",
	"Academic Year", "GPA", "Enrolled At", "Status", "Grade",
}

type RosterRow struct {
	StudentCode  string
	FullName     string
	Email        string
	PhoneNumber  string
	Major        string
	AcademicYear string
	GPA          float64
	EnrolledAt   time.Time
	Status       string
	Grade        *float64
}

// WriteRoster writes one header row and one row per entry, in the given order
func WriteRoster(w io.Writer, rows []RosterRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RosterSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(RosterSheet, "A1", &rosterHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(rosterHeader))
	if err := f.SetCellStyle(RosterSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}

		var grade interface{}
		if r.Grade != nil {
			grade = *r.Grade
		}

		values := []interface{}{
			i + 1, r.StudentCode, r.FullName, r.Email, r.PhoneNumber, r.Major,
			r.AcademicYear, r.GPA, r.EnrolledAt.Format("2006-01-02 15:04"), r.Status, grade,
		}
		if err := f.SetSheetRow(RosterSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(RosterSheet, "B", lastCol, 18); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
