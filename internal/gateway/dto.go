package gateway

// 远端 API 的 DTO（与本地持久化实体区分，由 service 层折叠进 domain 模型）。
// 认证接口字段为 camelCase，报告接口字段为 snake_case，以服务端实际返回为准

// AuthEnvelope 认证接口统一响应包
type AuthEnvelope struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Data      UserData `json:"data"`
	Timestamp string   `json:"timestamp"`
}

// UserData 认证响应中的用户数据（服务端不回传密码）
type UserData struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Email          string  `json:"email"`
	Role           string  `json:"role"`
	Specialization *string `json:"specialization"`
	Experience     *string `json:"experience"`
	ContactNumber  *string `json:"contactNumber"`
	Gender         *string `json:"gender"`
	Age            *string `json:"age"`
}

// DoctorSignupRequest 医生注册请求
type DoctorSignupRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Specialization string `json:"specialization"`
	ContactNumber  string `json:"contactNumber"`
	Experience     string `json:"experience"`
	Gender         string `json:"gender"`
}

// PatientSignupRequest 患者注册请求
type PatientSignupRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Gender        string `json:"gender"`
	Age           int    `json:"age"`
	ContactNumber string `json:"contactNumber"`
}

// LoginRequest 登录请求（医生/患者共用，角色由 endpoint 区分）
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// DoctorListEntry 医生目录条目
type DoctorListEntry struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     string `json:"experience"`
	ContactNumber  string `json:"contactNumber"`
}

// MetricDTO 报告检测指标
type MetricDTO struct {
	TestName    string `json:"test_name"`
	Value       string `json:"value"`
	Unit        string `json:"unit"`
	Technology  string `json:"technology"`
	NormalRange string `json:"normal_range"`
}

// DoctorSummary 患者端报告内嵌的医生摘要
type DoctorSummary struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}

// PatientSummary 医生端报告内嵌的患者摘要
type PatientSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PatientReportDTO 患者端报告列表项
type PatientReportDTO struct {
	ID                   string         `json:"id"`
	FileName             string         `json:"file_name"`
	FilePath             string         `json:"file_path"`
	UploadedAt           string         `json:"uploaded_at"`
	Doctor               *DoctorSummary `json:"doctor"`
	AIRecommendation     *string        `json:"ai_recommendation"`
	DoctorRecommendation *string        `json:"doctor_recommendation"`
}

// DoctorReportDTO 医生端报告列表项（含指标数组）
type DoctorReportDTO struct {
	ID                   string         `json:"id"`
	FileName             string         `json:"file_name"`
	FilePath             string         `json:"file_path"`
	UploadedAt           string         `json:"uploaded_at"`
	Patient              PatientSummary `json:"patient"`
	AIRecommendation     *string        `json:"ai_recommendation"`
	DoctorRecommendation *string        `json:"doctor_recommendation"`
	Metrics              []MetricDTO    `json:"metrics"`
}

// UploadReportEnvelope 上传报告响应包
type UploadReportEnvelope struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Data    UploadReportData `json:"data"`
}

// UploadReportData 上传成功后服务端返回的报告数据
type UploadReportData struct {
	ReportID   string      `json:"report_id"`
	FileName   string      `json:"file_name"`
	FilePath   string      `json:"file_path"`
	UploadedAt string      `json:"uploaded_at"`
	PatientID  string      `json:"patient_id"`
	DoctorID   string      `json:"doctor_id"`
	Metrics    []MetricDTO `json:"metrics"`
}

// GenerateRecommendationRequest AI 推荐生成请求
type GenerateRecommendationRequest struct {
	ReportID string `json:"report_id"`
}

// GenerateRecommendationResponse AI 推荐生成响应
type GenerateRecommendationResponse struct {
	ReportID         string `json:"report_id"`
	AIRecommendation string `json:"ai_recommendation"`
}

// SaveRecommendationRequest 医生最终推荐保存请求（成功响应体为空）
type SaveRecommendationRequest struct {
	ReportID             string `json:"report_id"`
	DoctorRecommendation string `json:"doctor_recommendation"`
}

// SavedRecommendationResponse 已保存推荐查询响应。
// DoctorRecommendation 为 null 表示尚未保存，属于正常结果而非错误
type SavedRecommendationResponse struct {
	ReportID             string  `json:"report_id"`
	DoctorRecommendation *string `json:"doctor_recommendation"`
	PatientID            string  `json:"patient_id"`
}
