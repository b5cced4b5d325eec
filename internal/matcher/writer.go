package matcher

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

var combinedHeader = []string{
	"Current Question",
	"Matched Question",
	"Matched Question Row",
	"Question Match Score",
	"Current Answer",
	"Matched Answer",
	"Answer Match Score",
}

// WriteCombined writes the combined table to path. An .xlsx extension gets
// conditional styling; anything else is written as plain CSV.
func WriteCombined(path string, rows []Row, threshold float64) error {
	if strings.ToLower(filepath.Ext(path)) == ".xlsx" {
		return WriteXLSX(path, rows, threshold)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "matcher: create output file %s", path)
	}
	defer f.Close() //nolint:errcheck

	return WriteCSV(f, rows)
}

// WriteCSV writes the combined table as CSV. CSV carries no styling, so the
// threshold flag is not represented.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(combinedHeader); err != nil {
		return eris.Wrap(err, "matcher: write CSV header")
	}

	for _, r := range rows {
		record := []string{
			r.CurrentQuestion,
			r.MatchedQuestion,
			strconv.Itoa(r.MatchedRow),
			strconv.FormatFloat(r.QuestionScore, 'f', -1, 64),
			r.CurrentAnswer,
			r.MatchedAnswer,
			strconv.FormatFloat(r.AnswerScore, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "matcher: write CSV row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrap(err, "matcher: flush CSV")
	}
	return nil
}

// Column layout: A/B/E/F are text, C/D/G are numbers; D and G are the score
// columns that get flagged.
var (
	textCols   = []int{0, 1, 4, 5}
	numberCols = []int{2, 3, 6}
)

// WriteXLSX writes the combined table as a styled workbook: wrapped text,
// fixed column widths, and a pink fill on any score cell strictly below the
// threshold. The fill is advisory styling only; cell values are unchanged.
func WriteXLSX(path string, rows []Row, threshold float64) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Combined Questionnaire")
	if err != nil {
		return eris.Wrap(err, "matcher: add sheet")
	}

	wrapStyle := newWrapStyle(false)
	flagStyle := newWrapStyle(true)

	header := sheet.AddRow()
	for _, name := range combinedHeader {
		cell := header.AddCell()
		cell.SetString(name)
		cell.SetStyle(wrapStyle)
	}

	for _, r := range rows {
		row := sheet.AddRow()

		cells := make([]*xlsx.Cell, len(combinedHeader))
		for i := range cells {
			cells[i] = row.AddCell()
			cells[i].SetStyle(wrapStyle)
		}

		cells[0].SetString(r.CurrentQuestion)
		cells[1].SetString(r.MatchedQuestion)
		cells[2].SetInt(r.MatchedRow)
		cells[3].SetFloat(r.QuestionScore)
		cells[4].SetString(r.CurrentAnswer)
		cells[5].SetString(r.MatchedAnswer)
		cells[6].SetFloat(r.AnswerScore)

		if r.QuestionScore < threshold {
			cells[3].SetStyle(flagStyle)
		}
		if r.AnswerScore < threshold {
			cells[6].SetStyle(flagStyle)
		}
	}

	for _, i := range textCols {
		sheet.SetColWidth(i, i, 30)
	}
	for _, i := range numberCols {
		sheet.SetColWidth(i, i, 12)
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "matcher: save xlsx %s", path)
	}
	return nil
}

func newWrapStyle(flagged bool) *xlsx.Style {
	style := xlsx.NewStyle()
	style.Alignment = xlsx.Alignment{WrapText: true, Vertical: "top"}
	style.ApplyAlignment = true
	if flagged {
		style.Fill = *xlsx.NewFill("solid", "FFC0CB", "FFC0CB")
		style.ApplyFill = true
	}
	return style
}
