package gateway

// 远端 API 路径（基于 base URL，含 /api 前缀）
const (
	EndpointDoctorSignup  = "auth/doctor/signup"
	EndpointPatientSignup = "auth/patient/signup"
	EndpointDoctorLogin   = "auth/doctor/login"
	EndpointPatientLogin  = "auth/patient/login"

	EndpointDoctorList     = "doctor/list"
	EndpointPatientReports = "patient/reports" // + /{patientId}
	EndpointDoctorReports  = "doctor/reports"  // + /{doctorId}

	EndpointUploadReport   = "health-report/upload-report"
	EndpointDownloadReport = "health-report/download_report" // ?file_path=...

	EndpointGenerateRecommendation = "ai/doctor/generate-recommendation"
	EndpointSaveRecommendation     = "ai/doctor/save-recommendation"
	EndpointGetRecommendation      = "ai/doctor/get-recommendation" // + /{reportId}
)
