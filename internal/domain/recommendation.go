package domain

// RecommendationView 推荐文本的视图投影
// 每次打开视图时由 Report 的推荐字段重建，不独立持久化
type RecommendationView struct {
	ReportID string `json:"report_id"`
	Text     string `json:"text"`
	Editing  bool   `json:"editing"`
	Dirty    bool   `json:"dirty"`
}
