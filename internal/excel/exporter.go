package excel

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/rahman-refactored-prog-life/senior-dev-academy-sub000/pkg/models"
)

// Sheet names in the exported workbook
const (
	SummarySheet         = "Summary"
	ScheduleSheet        = "Daily Schedule"
	RecommendationsSheet = "Recommendations"
)

// ExportUserReport writes a user's learning analytics, upcoming schedule and
// recommendations to an xlsx workbook at the given path.
func ExportUserReport(path string, userID int64, analytics *models.LearningAnalytics, schedule *models.DailySchedule, recommendations []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummary(f, userID, analytics); err != nil {
		return err
	}
	if err := writeSchedule(f, schedule); err != nil {
		return err
	}
	if err := writeRecommendations(f, recommendations); err != nil {
		return err
	}

	// The default sheet is replaced by Summary
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(SummarySheet); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %v", err)
	}
	return nil
}

// writeSummary fills the Summary sheet with metric name/value pairs.
func writeSummary(f *excelize.File, userID int64, analytics *models.LearningAnalytics) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %v", err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"User ID", userID},
		{"Total schedules", analytics.TotalSchedules},
		{"Average retention", analytics.Retention.Average},
		{"Min retention", analytics.Retention.Min},
		{"Max retention", analytics.Retention.Max},
		{"Average repetitions", analytics.AverageRepetitions},
		{"Due reviews", analytics.DueCount},
		{"Overdue reviews", analytics.OverdueCount},
		{"Priority items", analytics.PriorityCount},
		{"Learning efficiency", analytics.LearningEfficiency},
	}
	for _, band := range []string{"weak", "developing", "strong"} {
		rows = append(rows, []interface{}{"Retention band: " + band, analytics.RetentionDistribution[band]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %v", err)
		}
	}
	return nil
}

// writeSchedule fills the Daily Schedule sheet with one row per date.
func writeSchedule(f *excelize.File, schedule *models.DailySchedule) error {
	if _, err := f.NewSheet(ScheduleSheet); err != nil {
		return fmt.Errorf("failed to create schedule sheet: %v", err)
	}

	header := []interface{}{"Date", "Reviews", "Priority"}
	if err := f.SetSheetRow(ScheduleSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write schedule header: %v", err)
	}

	for i, bucket := range schedule.ByDate {
		priority := 0
		for _, rec := range bucket.Reviews {
			if rec.AmazonInterviewPriority {
				priority++
			}
		}
		row := []interface{}{bucket.Date, len(bucket.Reviews), priority}
		if err := f.SetSheetRow(ScheduleSheet, "A"+strconv.Itoa(i+2), &row); err != nil {
			return fmt.Errorf("failed to write schedule row: %v", err)
		}
	}

	totals := []interface{}{"Total", schedule.TotalReviews, schedule.PriorityCount}
	if err := f.SetSheetRow(ScheduleSheet, "A"+strconv.Itoa(len(schedule.ByDate)+2), &totals); err != nil {
		return fmt.Errorf("failed to write schedule totals: %v", err)
	}
	return nil
}

// writeRecommendations fills the Recommendations sheet, one suggestion per row.
func writeRecommendations(f *excelize.File, recommendations []string) error {
	if _, err := f.NewSheet(RecommendationsSheet); err != nil {
		return fmt.Errorf("failed to create recommendations sheet: %v", err)
	}

	for i, rec := range recommendations {
		cell := "A" + strconv.Itoa(i+1)
		if err := f.SetCellValue(RecommendationsSheet, cell, rec); err != nil {
			return fmt.Errorf("failed to write recommendation: %v", err)
		}
	}
	return nil
}
