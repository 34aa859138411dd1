package service

import (
	"context"
	"sync"

	"remedylab-client/internal/domain"
)

// RecommendationEditor 医生推荐的查看/编辑状态机（Viewing ⇄ Editing）。
// 进入编辑是纯状态切换；退出编辑必须经过 Commit（保存成功才回到查看态），
// 保存失败时停留在编辑态，草稿不丢失
type RecommendationEditor struct {
	coordinator *RecommendationCoordinator

	mu            sync.Mutex
	view          domain.RecommendationView
	committedText string
}

// NewRecommendationEditor 基于报告当前的推荐文本创建编辑器
func NewRecommendationEditor(coordinator *RecommendationCoordinator, reportID, initialText string) *RecommendationEditor {
	return &RecommendationEditor{
		coordinator: coordinator,
		view: domain.RecommendationView{
			ReportID: reportID,
			Text:     initialText,
		},
		committedText: initialText,
	}
}

// StartEditing 进入编辑态
func (e *RecommendationEditor) StartEditing() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Editing = true
}

// SetText 更新草稿
func (e *RecommendationEditor) SetText(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.view.Editing {
		return
	}
	e.view.Text = text
	e.view.Dirty = text != e.committedText
}

// Commit 保存草稿并回到查看态。
// 保存失败时保持编辑态与草稿内容，返回可恢复错误
func (e *RecommendationEditor) Commit(ctx context.Context) error {
	e.mu.Lock()
	reportID := e.view.ReportID
	text := e.view.Text
	e.mu.Unlock()

	if err := e.coordinator.SaveDoctorRecommendation(ctx, reportID, text); err != nil {
		return err
	}

	e.mu.Lock()
	e.view.Editing = false
	e.view.Dirty = false
	e.committedText = text
	e.mu.Unlock()
	return nil
}

// Cancel 放弃草稿，恢复最近一次提交的文本并回到查看态
func (e *RecommendationEditor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Text = e.committedText
	e.view.Editing = false
	e.view.Dirty = false
}

// View 当前视图状态快照
func (e *RecommendationEditor) View() domain.RecommendationView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view
}
