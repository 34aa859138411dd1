package domain

// DoctorDirectoryEntry 医生目录条目（只读投影，用于上传时指定医生，不持久化）
type DoctorDirectoryEntry struct {
	DoctorID       string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
	Experience     string `json:"experience"`
	ContactNumber  string `json:"contactNumber"`
}
