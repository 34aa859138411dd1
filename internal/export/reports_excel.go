package export

import (
	"bytes"
	"fmt"
	"os"

	"remedylab-client/internal/domain"

	"github.com/xuri/excelize/v2"
)

// ReportsExportHeader 报告列表导出表头
var ReportsExportHeader = []string{
	"Report ID",
	"File Name",
	"Uploaded At",
	"Patient Name",
	"Patient Email",
	"Assigned Doctor ID",
	"AI Recommendation",
	"Doctor Recommendation",
	"Metric Count",
}

// WriteReportsXLSX 生成报告列表的 Excel 导出（医生端归档用）
func WriteReportsXLSX(reports []*domain.Report) ([]byte, error) {
	f := excelize.NewFile()
	// Note: Don't defer Close() here, because WriteTo needs the file to be open

	sheetName := "Reports"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	// 写入表头
	for col, header := range ReportsExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}

	// 写入数据行
	for i, report := range reports {
		row := []any{
			report.ReportID,
			report.FileName,
			report.UploadedAt,
			report.PatientName,
			report.PatientEmail,
			report.AssignedDoctorID,
			report.AIRecommendation,
			report.DoctorRecommendation,
			len(report.Metrics),
		}
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to set cell %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write excel: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveReportsXLSX 导出并写入本地文件
func SaveReportsXLSX(path string, reports []*domain.Report) error {
	data, err := WriteReportsXLSX(reports)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
