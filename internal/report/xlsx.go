package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/logiprep/internal/topic"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetTopics   = "Topics"
	SheetPriority = "Priority"
	SheetSessions = "Sessions"
	SheetHistory  = "History"
)

const timeLayout = "2006-01-02 15:04:05"

// WriteXLSX writes the snapshot as a workbook.
func WriteXLSX(w io.Writer, d Data) error {
	f, err := Workbook(d)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the workbook in memory. The caller closes it.
func Workbook(d Data) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create style: %w", err)
	}

	w := &sheetWriter{f: f, bold: bold}
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetTopics, SheetPriority, SheetSessions, SheetHistory} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.summary(d)
	w.topics(d)
	w.priority(d)
	w.sessions(d)
	w.history(d)
	if w.err != nil {
		f.Close()
		return nil, w.err
	}
	f.SetActiveSheet(0)
	return f, nil
}

// sheetWriter keeps the first error so the sheet builders read straight
// through.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) row(sheet string, r int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, r)
	if err == nil {
		err = w.f.SetSheetRow(sheet, cell, &values)
	}
	if err != nil {
		w.err = fmt.Errorf("%s row %d: %w", sheet, r, err)
	}
}

func (w *sheetWriter) header(sheet string, cols ...any) {
	w.row(sheet, 1, cols...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err == nil {
		err = w.f.SetCellStyle(sheet, "A1", last, w.bold)
	}
	if err == nil {
		err = w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
	}
	if err != nil {
		w.err = fmt.Errorf("%s header: %w", sheet, err)
	}
}

func (w *sheetWriter) summary(d Data) {
	s := SheetSummary
	w.header(s, "Metric", "Value")
	r := 2
	put := func(k string, v any) {
		w.row(s, r, k, v)
		r++
	}
	put("User", d.UserID)
	put("Generated", d.GeneratedAt.Format(timeLayout))
	put("Questions answered", d.Overall.Total)
	put("Correct", d.Overall.Correct)
	put("Overall accuracy %", d.Overall.Percent())
	put("Trend (points)", d.Trend)
	if d.HasExtremes {
		put("Strongest", fmt.Sprintf("%s (%d%%)", d.Extremes.Strongest.Topic, d.Extremes.Strongest.Percentage))
		put("Weakest", fmt.Sprintf("%s (%d%%)", d.Extremes.Weakest.Topic, d.Extremes.Weakest.Percentage))
	}
	put("Sessions", len(d.Sessions))
	if w.err == nil {
		w.err = w.f.SetColWidth(s, "A", "A", 22)
	}
}

func (w *sheetWriter) topics(d Data) {
	s := SheetTopics
	w.header(s, "Topic", "Correct", "Total", "Accuracy %", "Exam weight")
	weights := topic.RealExamWeights()
	for i, tp := range topic.All() {
		t := d.Stats[tp]
		w.row(s, i+2, tp.String(), t.Correct, t.Total, t.Percent(), weights[tp])
	}
}

func (w *sheetWriter) priority(d Data) {
	s := SheetPriority
	if d.Ranking.Locked {
		w.header(s, "Status", "Completed", "Required")
		w.row(s, 2, "Locked", d.Ranking.Progress.Completed, d.Ranking.Progress.Required)
		return
	}
	w.header(s, "Rank", "Topic", "Accuracy %", "Exam weight", "Priority score", "Band", "Advice")
	for i, it := range d.Ranking.Items {
		w.row(s, i+2, it.Rank, it.Topic.String(), it.AccuracyPct, it.RealExamWeight, it.PriorityScore, string(it.Band), it.Advice())
	}
}

func (w *sheetWriter) sessions(d Data) {
	s := SheetSessions
	w.header(s, "Session", "Mode", "Outcome", "Questions", "Answered", "Correct", "Score %", "Started", "Duration (s)")
	for i, rec := range d.Sessions {
		w.row(s, i+2,
			rec.ID,
			string(rec.Mode),
			rec.Outcome.String(),
			rec.TotalQuestions,
			rec.Answered,
			rec.Correct,
			rec.Score,
			rec.StartedAt.Format(timeLayout),
			int64(rec.Duration()/time.Second),
		)
	}
}

func (w *sheetWriter) history(d Data) {
	s := SheetHistory
	w.header(s, "#", "Answered at", "Topic", "Question", "Correct", "Mode", "Session")
	for i, a := range d.History {
		w.row(s, i+2, i+1, a.AnsweredAt.Format(timeLayout), a.Topic.String(), a.QuestionID, a.Correct, a.Mode, a.SessionID)
	}
}
