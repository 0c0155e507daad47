package rewards

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// excelMetrics is the column pair order of the rewards sheet: each metric
// has a target cell followed by its reward text, all on the second row.
var excelMetrics = []Metric{MetricPercentage, MetricStudyHours, MetricAnswered, MetricPoints}

// LoadTargetsExcel reads reward targets from the first sheet of the
// workbook at path. Pairs with an empty target are skipped.
func LoadTargetsExcel(path string) ([]Target, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open rewards workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("rewards workbook %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rewards sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("rewards sheet has no target row")
	}
	row := rows[1]

	var targets []Target
	for i, m := range excelMetrics {
		raw := strings.TrimSpace(cell(row, 2*i))
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("rewards target for %s: %q is not a number", m, raw)
		}
		targets = append(targets, Target{
			Metric: m,
			Value:  v,
			Reward: strings.TrimSpace(cell(row, 2*i+1)),
		})
	}
	return targets, nil
}

// WriteTargetsExcel writes targets in the layout LoadTargetsExcel reads.
func WriteTargetsExcel(path string, targets []Target) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, 0, 2*len(excelMetrics))
	values := make([]any, 2*len(excelMetrics))
	for i, m := range excelMetrics {
		header = append(header, m.DisplayName(), "المكافأة")
		for _, t := range targets {
			if t.Metric == m {
				values[2*i] = t.Value
				values[2*i+1] = t.Reward
			}
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A2", &values); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
