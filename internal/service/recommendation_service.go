package service

import (
	"context"

	"remedylab-client/internal/bus"
	"remedylab-client/internal/domain"
	"remedylab-client/internal/gateway"
	"remedylab-client/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// recommendationGateway 推荐协调用到的网关子集（接口注入，便于测试）
type recommendationGateway interface {
	GenerateRecommendation(ctx context.Context, reportID string) (*gateway.GenerateRecommendationResponse, error)
	SaveRecommendation(ctx context.Context, reportID, text string) error
	GetSavedRecommendation(ctx context.Context, reportID string) (*gateway.SavedRecommendationResponse, error)
}

// SavedRecommendation 已保存推荐的查询结果。
// HasText=false 表示"尚未有推荐"，是正常状态而非错误
type SavedRecommendation struct {
	ReportID  string
	Text      string
	HasText   bool
	PatientID string
}

// RecommendationCoordinator 推荐协调器。
// 管理 AI 推荐的按需生成与缓存命中、医生最终推荐的保存，
// 并通过总线把结果广播给同一报告的所有活跃视图。
// 同一 report_id 的并发生成请求通过 singleflight 合并：
// 后到者等待并复用先到者的结果，绝不产生两个分歧的缓存值
type RecommendationCoordinator struct {
	api         recommendationGateway
	reportsRepo repository.ReportsRepository
	updates     *bus.ReportBus
	group       singleflight.Group
	logger      *zap.Logger
}

// NewRecommendationCoordinator 创建推荐协调器
func NewRecommendationCoordinator(api recommendationGateway, reportsRepo repository.ReportsRepository, updates *bus.ReportBus, logger *zap.Logger) *RecommendationCoordinator {
	return &RecommendationCoordinator{
		api:         api,
		reportsRepo: reportsRepo,
		updates:     updates,
		logger:      logger,
	}
}

// GetOrGenerateAIRecommendation 获取或生成 AI 推荐文本。
// 报告已有 AI 推荐时直接返回（缓存命中，不发网络请求）；
// 否则调用生成接口。结果不自动落库（由调用方显式传播，
// 避免用过期的 AI 文本覆盖医生已编辑的推荐），
// 但会广播到总线，让同一报告的其他视图保持一致
func (c *RecommendationCoordinator) GetOrGenerateAIRecommendation(ctx context.Context, report *domain.Report) (string, error) {
	if report.AIRecommendation != "" {
		c.logger.Debug("ai recommendation cache hit", zap.String("report_id", report.ReportID))
		return report.AIRecommendation, nil
	}

	result, err, shared := c.group.Do(report.ReportID, func() (any, error) {
		resp, err := c.api.GenerateRecommendation(ctx, report.ReportID)
		if err != nil {
			return nil, err
		}
		return resp.AIRecommendation, nil
	})
	if err != nil {
		c.logger.Error("ai recommendation generation failed",
			zap.String("report_id", report.ReportID),
			zap.Error(err),
		)
		return "", err
	}

	text := result.(string)
	if shared {
		c.logger.Debug("joined in-flight generation", zap.String("report_id", report.ReportID))
	}
	c.updates.Publish(bus.ReportUpdate{
		ReportID:         report.ReportID,
		AIRecommendation: &text,
	})
	return text, nil
}

// PersistAIRecommendation 把 AI 推荐文本显式写入本地库（调用方决定何时传播）
func (c *RecommendationCoordinator) PersistAIRecommendation(ctx context.Context, reportID, text string) error {
	return c.reportsRepo.SetRecommendations(ctx, reportID, &text, nil)
}

// SaveDoctorRecommendation 保存医生最终推荐。
// 成功后广播给活跃视图；本地库不做乐观更新（以调用方重新拉取为准）。
// 失败是可恢复错误，调用方保留原文本重试
func (c *RecommendationCoordinator) SaveDoctorRecommendation(ctx context.Context, reportID, text string) error {
	if err := c.api.SaveRecommendation(ctx, reportID, text); err != nil {
		c.logger.Error("failed to save doctor recommendation",
			zap.String("report_id", reportID),
			zap.Error(err),
		)
		return err
	}

	c.updates.Publish(bus.ReportUpdate{
		ReportID:             reportID,
		DoctorRecommendation: &text,
	})
	c.logger.Info("doctor recommendation saved", zap.String("report_id", reportID))
	return nil
}

// FetchSavedRecommendation 查询已保存的医生推荐。
// 服务端返回 null 文本表示尚未保存，按 HasText=false 返回而不是报错
func (c *RecommendationCoordinator) FetchSavedRecommendation(ctx context.Context, reportID string) (*SavedRecommendation, error) {
	resp, err := c.api.GetSavedRecommendation(ctx, reportID)
	if err != nil {
		return nil, err
	}

	saved := &SavedRecommendation{
		ReportID:  resp.ReportID,
		PatientID: resp.PatientID,
	}
	if resp.DoctorRecommendation != nil && *resp.DoctorRecommendation != "" {
		saved.Text = *resp.DoctorRecommendation
		saved.HasText = true
	}
	return saved, nil
}
