package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"remedylab-client/internal/gateway"
)

// writeFakeDownload 模拟网关下载：向 destDir 写入确定性文件名的占位内容
func writeFakeDownload(remotePath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}
	localPath := filepath.Join(destDir, filepath.Base(remotePath))
	if err := os.WriteFile(localPath, []byte("%PDF-1.4 fake"), 0o600); err != nil {
		return "", err
	}
	return localPath, nil
}

// fakeChecker 连通性测试替身
type fakeChecker struct {
	connected bool
}

func (f *fakeChecker) IsConnected(_ context.Context) bool { return f.connected }

// fakeGateway 网关测试替身：可配置响应/错误，并统计调用次数
type fakeGateway struct {
	mu sync.Mutex

	authEnvelope *gateway.AuthEnvelope
	authErr      error
	authCalls    int

	uploadData  *gateway.UploadReportData
	uploadErr   error
	uploadCalls int

	patientReports []gateway.PatientReportDTO
	doctorReports  []gateway.DoctorReportDTO
	fetchErr       error

	doctorList []gateway.DoctorListEntry

	downloadCalls int32
	downloadErr   error

	generateText  string
	generateErr   error
	generateCalls int32
	generateGate  chan struct{} // 非 nil 时生成调用阻塞等待，模拟慢请求

	saveErr   error
	saveCalls int

	savedText      *string
	savedPatientID string
	savedErr       error
}

func (f *fakeGateway) Signup(_ context.Context, _ string, _ any) (*gateway.AuthEnvelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authEnvelope, nil
}

func (f *fakeGateway) Login(ctx context.Context, endpoint string, req gateway.LoginRequest) (*gateway.AuthEnvelope, error) {
	return f.Signup(ctx, endpoint, req)
}

func (f *fakeGateway) UploadReport(_ context.Context, _ string, _ []byte, _, _ string) (*gateway.UploadReportData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadData, nil
}

func (f *fakeGateway) FetchPatientReports(_ context.Context, _ string) ([]gateway.PatientReportDTO, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.patientReports, nil
}

func (f *fakeGateway) FetchDoctorReports(_ context.Context, _ string) ([]gateway.DoctorReportDTO, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.doctorReports, nil
}

func (f *fakeGateway) ListDoctors(_ context.Context) ([]gateway.DoctorListEntry, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.doctorList, nil
}

func (f *fakeGateway) DownloadReport(_ context.Context, remotePath, destDir string) (string, error) {
	atomic.AddInt32(&f.downloadCalls, 1)
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	return writeFakeDownload(remotePath, destDir)
}

func (f *fakeGateway) GenerateRecommendation(_ context.Context, reportID string) (*gateway.GenerateRecommendationResponse, error) {
	atomic.AddInt32(&f.generateCalls, 1)
	if f.generateGate != nil {
		<-f.generateGate
	}
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &gateway.GenerateRecommendationResponse{
		ReportID:         reportID,
		AIRecommendation: f.generateText,
	}, nil
}

func (f *fakeGateway) SaveRecommendation(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	return f.saveErr
}

func (f *fakeGateway) GetSavedRecommendation(_ context.Context, reportID string) (*gateway.SavedRecommendationResponse, error) {
	if f.savedErr != nil {
		return nil, f.savedErr
	}
	return &gateway.SavedRecommendationResponse{
		ReportID:             reportID,
		DoctorRecommendation: f.savedText,
		PatientID:            f.savedPatientID,
	}, nil
}
