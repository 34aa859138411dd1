package domain

import "time"

// 服务端 uploaded_at 的时间戳格式（无时区，按本地时间解析）
const uploadedAtLayout = "2006-01-02T15:04:05.999999"

// ParseUploadedAt 解析服务端上传时间戳。
// 主格式为微秒精度的无时区格式，兼容 RFC3339；解析失败返回 ok=false（调用方兜底为"今天"）
func ParseUploadedAt(s string) (time.Time, bool) {
	if t, err := time.ParseInLocation(uploadedAtLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local(), true
	}
	return time.Time{}, false
}

// ReportMetric 报告中的单项检测指标（保持服务端返回顺序）
type ReportMetric struct {
	TestName    string `json:"test_name"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	Technology  string `json:"technology"`
	NormalRange string `json:"normal_range"`
}

// Report 健康报告领域模型（本地持久化实体）
// 上传成功时创建；AI 生成 / 医生保存推荐只原地更新推荐字段，不产生新实体；
// 本规格下报告不删除
type Report struct {
	ReportID  string `json:"report_id"` // 服务端分配
	PatientID string `json:"patient_id"`
	FileName  string `json:"file_name"`
	FilePath  string `json:"file_path"` // 本地路径或服务端相对路径
	// UploadedAt 服务端时间戳原文（如 "2025-08-01T10:00:00.000000"）。
	// 保留原文：分组展示时解析，解析失败按"今天"兜底而不是丢弃
	UploadedAt       string `json:"uploaded_at"`
	AssignedDoctorID string `json:"assigned_doctor_id,omitempty"`

	// 推荐文本（可为空 = 尚未生成/保存）
	AIRecommendation     string `json:"ai_recommendation,omitempty"`
	DoctorRecommendation string `json:"doctor_recommendation,omitempty"`

	// 医生端列表内嵌的患者摘要（患者端为空）
	PatientName  string `json:"patient_name,omitempty"`
	PatientEmail string `json:"patient_email,omitempty"`

	Metrics []ReportMetric `json:"metrics,omitempty"`
}
