package repository

import (
	"context"

	"remedylab-client/internal/domain"
)

// ReportsRepository 健康报告Repository接口
type ReportsRepository interface {
	// UpsertReport 按 report_id upsert
	UpsertReport(ctx context.Context, report *domain.Report) error

	GetReport(ctx context.Context, reportID string) (*domain.Report, error)

	// ListByPatient / ListByDoctor 按外键查询，按上传时间倒序
	ListByPatient(ctx context.Context, patientID string) ([]*domain.Report, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*domain.Report, error)

	// SetRecommendations 原地更新推荐字段（nil = 不改动该字段）。
	// 推荐文本的变更永远是对既有 report_id 的 upsert，不创建新实体
	SetRecommendations(ctx context.Context, reportID string, ai, doctor *string) error
}
