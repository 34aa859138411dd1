package service

import (
	"context"
	"sync/atomic"
	"testing"

	"remedylab-client/internal/bus"
	"remedylab-client/internal/gateway"
	"remedylab-client/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestEndToEnd_UploadReviewRecommend 端到端场景：
// 患者上传 bloodtest.pdf 指定医生 D1 → 本地库出现一条报告 →
// 医生拉取列表并按日分组可见该报告 → 医生生成 AI 推荐（一次网络调用 + 广播）→
// 医生编辑并保存最终文本 → 再查询返回保存的文本而不是 AI 草稿
func TestEndToEnd_UploadReviewRecommend(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	reportsRepo, err := repository.NewFileReportsRepo(dataDir)
	require.NoError(t, err)
	updates := bus.NewReportBus(zap.NewNop())

	api := &fakeGateway{
		uploadData: &gateway.UploadReportData{
			ReportID:   "r1",
			FileName:   "bloodtest.pdf",
			FilePath:   "uploads/bloodtest.pdf",
			UploadedAt: "2025-08-01T10:00:00.000000",
			PatientID:  "p1",
			DoctorID:   "d1",
			Metrics: []gateway.MetricDTO{
				{TestName: "Hemoglobin", Value: "11.2", Unit: "g/dL", Technology: "HPLC", NormalRange: "12-16"},
			},
		},
		generateText: "AI draft: low hemoglobin, consider iron panel",
	}

	syncSvc := NewReportSyncService(reportsRepo, api, t.TempDir(), zap.NewNop())
	coordinator := NewRecommendationCoordinator(api, reportsRepo, updates, zap.NewNop())

	// 患者上传
	uploaded, err := syncSvc.UploadReport(ctx, "bloodtest.pdf", []byte("%PDF"), "p1", "d1")
	require.NoError(t, err)
	require.Equal(t, "d1", uploaded.AssignedDoctorID)
	require.Equal(t, 1, reportsRepo.Count())
	require.NotEmpty(t, uploaded.Metrics)

	// 医生拉取并分组
	api.doctorReports = []gateway.DoctorReportDTO{
		{
			ID: "r1", FileName: "bloodtest.pdf", FilePath: "uploads/bloodtest.pdf",
			UploadedAt: "2025-08-01T10:00:00.000000",
			Patient:    gateway.PatientSummary{ID: "p1", Name: "Asha", Email: "asha@example.com"},
			Metrics:    api.uploadData.Metrics,
		},
	}
	doctorView, err := syncSvc.FetchDoctorReports(ctx, "d1")
	require.NoError(t, err)
	groups := syncSvc.GroupByUploadDate(doctorView)
	require.Len(t, groups, 1)
	require.Equal(t, "r1", groups[0].Reports[0].ReportID)

	// 医生请求 AI 推荐：一次生成调用 + 广播
	sub := updates.Subscribe("r1")
	defer updates.Unsubscribe(sub)

	aiText, err := coordinator.GetOrGenerateAIRecommendation(ctx, doctorView[0])
	require.NoError(t, err)
	require.Equal(t, api.generateText, aiText)
	require.Equal(t, int32(1), atomic.LoadInt32(&api.generateCalls))
	update := <-sub.C
	require.Equal(t, aiText, *update.AIRecommendation)

	// 医生编辑并保存最终文本
	editor := NewRecommendationEditor(coordinator, "r1", aiText)
	editor.StartEditing()
	editor.SetText("Final: start oral iron, recheck in 6 weeks")
	require.NoError(t, editor.Commit(ctx))

	// 保存后的查询返回最终文本而不是 AI 草稿
	final := "Final: start oral iron, recheck in 6 weeks"
	api.savedText = &final
	api.savedPatientID = "p1"
	saved, err := coordinator.FetchSavedRecommendation(ctx, "r1")
	require.NoError(t, err)
	require.True(t, saved.HasText)
	require.Equal(t, final, saved.Text)
	require.NotEqual(t, aiText, saved.Text)
}
