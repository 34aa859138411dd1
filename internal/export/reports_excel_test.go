package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"remedylab-client/internal/domain"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReports() []*domain.Report {
	return []*domain.Report{
		{
			ReportID:             "r1",
			FileName:             "bloodtest.pdf",
			UploadedAt:           "2025-08-01T10:00:00.000000",
			PatientName:          "Asha",
			PatientEmail:         "asha@example.com",
			AssignedDoctorID:     "d1",
			DoctorRecommendation: "start oral iron",
			Metrics: []domain.ReportMetric{
				{TestName: "Hemoglobin", Value: "11.2", Unit: "g/dL"},
			},
		},
	}
}

// TestWriteReportsXLSX 导出内容可被 excelize 重新打开，表头与数据行正确
func TestWriteReportsXLSX(t *testing.T) {
	data, err := WriteReportsXLSX(sampleReports())
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Reports")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, ReportsExportHeader[0], rows[0][0])
	require.Equal(t, "r1", rows[1][0])
	require.Equal(t, "bloodtest.pdf", rows[1][1])
	require.Equal(t, "Asha", rows[1][3])
}

// TestSaveReportsXLSX 写入本地文件
func TestSaveReportsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.xlsx")
	require.NoError(t, SaveReportsXLSX(path, sampleReports()))
	require.FileExists(t, path)
}
