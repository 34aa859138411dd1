package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"remedylab-client/internal/domain"
	"remedylab-client/internal/gateway"
	"remedylab-client/internal/repository"

	"go.uber.org/zap"
)

// reportGateway 报告同步用到的网关子集（接口注入，便于测试）
type reportGateway interface {
	UploadReport(ctx context.Context, fileName string, fileBytes []byte, patientID, doctorID string) (*gateway.UploadReportData, error)
	FetchPatientReports(ctx context.Context, patientID string) ([]gateway.PatientReportDTO, error)
	FetchDoctorReports(ctx context.Context, doctorID string) ([]gateway.DoctorReportDTO, error)
	ListDoctors(ctx context.Context) ([]gateway.DoctorListEntry, error)
	DownloadReport(ctx context.Context, remotePath, destDir string) (string, error)
}

// DayGroup 按自然日（本地时区）分组的报告列表
type DayGroup struct {
	Day     time.Time
	Reports []*domain.Report
}

// ReportSyncService 报告同步引擎。
// 负责上传（multipart + 元数据落库）、按角色拉取列表、按日分组、
// 按文件名缓存下载。列表以最近一次成功拉取为准（整体替换，不做合并）
type ReportSyncService struct {
	reportsRepo  repository.ReportsRepository
	api          reportGateway
	downloadsDir string
	logger       *zap.Logger
	now          func() time.Time

	mu           sync.RWMutex
	reports      []*domain.Report // 内存视图列表（最近一次成功拉取）
	errorMessage string
}

// NewReportSyncService 创建报告同步引擎
func NewReportSyncService(reportsRepo repository.ReportsRepository, api reportGateway, downloadsDir string, logger *zap.Logger) *ReportSyncService {
	return &ReportSyncService{
		reportsRepo:  reportsRepo,
		api:          api,
		downloadsDir: downloadsDir,
		logger:       logger,
		now:          time.Now,
	}
}

// SetClockForTest 注入时钟（用于测试"今天"兜底分组）
func (s *ReportSyncService) SetClockForTest(now func() time.Time) {
	s.now = now
}

// UploadReport 上传报告并落库。
// 全有或全无：任何失败都不会产生半截 Report 记录
func (s *ReportSyncService) UploadReport(ctx context.Context, fileName string, fileBytes []byte, patientID, doctorID string) (*domain.Report, error) {
	data, err := s.api.UploadReport(ctx, fileName, fileBytes, patientID, doctorID)
	if err != nil {
		s.logger.Error("report upload failed",
			zap.String("file_name", fileName),
			zap.String("patient_id", patientID),
			zap.Error(err),
		)
		return nil, err
	}

	report := &domain.Report{
		ReportID:         data.ReportID,
		PatientID:        data.PatientID,
		FileName:         data.FileName,
		FilePath:         data.FilePath,
		UploadedAt:       data.UploadedAt,
		AssignedDoctorID: data.DoctorID,
		Metrics:          metricsFromDTO(data.Metrics),
	}
	if err := s.reportsRepo.UpsertReport(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to persist uploaded report: %w", err)
	}

	s.logger.Info("report uploaded",
		zap.String("report_id", report.ReportID),
		zap.String("patient_id", report.PatientID),
		zap.String("doctor_id", report.AssignedDoctorID),
		zap.Int("metric_count", len(report.Metrics)),
	)
	return report, nil
}

// FetchPatientReports 拉取患者报告列表。
// 成功时整体替换内存列表并缓存进本地库；失败时保留旧列表，只记录错误
func (s *ReportSyncService) FetchPatientReports(ctx context.Context, patientID string) ([]*domain.Report, error) {
	dtos, err := s.api.FetchPatientReports(ctx, patientID)
	if err != nil {
		s.recordFetchError("patient", patientID, err)
		return nil, err
	}

	reports := make([]*domain.Report, 0, len(dtos))
	for _, dto := range dtos {
		report := &domain.Report{
			ReportID:             dto.ID,
			PatientID:            patientID,
			FileName:             dto.FileName,
			FilePath:             dto.FilePath,
			UploadedAt:           dto.UploadedAt,
			AIRecommendation:     deref(dto.AIRecommendation),
			DoctorRecommendation: deref(dto.DoctorRecommendation),
		}
		if dto.Doctor != nil {
			report.AssignedDoctorID = dto.Doctor.ID
		}
		reports = append(reports, report)
	}
	return s.replaceView(ctx, reports)
}

// FetchDoctorReports 拉取医生报告列表（含患者摘要与指标）
func (s *ReportSyncService) FetchDoctorReports(ctx context.Context, doctorID string) ([]*domain.Report, error) {
	dtos, err := s.api.FetchDoctorReports(ctx, doctorID)
	if err != nil {
		s.recordFetchError("doctor", doctorID, err)
		return nil, err
	}

	reports := make([]*domain.Report, 0, len(dtos))
	for _, dto := range dtos {
		reports = append(reports, &domain.Report{
			ReportID:             dto.ID,
			PatientID:            dto.Patient.ID,
			FileName:             dto.FileName,
			FilePath:             dto.FilePath,
			UploadedAt:           dto.UploadedAt,
			AssignedDoctorID:     doctorID,
			AIRecommendation:     deref(dto.AIRecommendation),
			DoctorRecommendation: deref(dto.DoctorRecommendation),
			PatientName:          dto.Patient.Name,
			PatientEmail:         dto.Patient.Email,
			Metrics:              metricsFromDTO(dto.Metrics),
		})
	}
	return s.replaceView(ctx, reports)
}

// Reports 当前内存视图列表
func (s *ReportSyncService) Reports() []*domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.Report(nil), s.reports...)
}

// ErrorMessage 最近一次拉取失败的用户可见消息（成功后清空）
func (s *ReportSyncService) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errorMessage
}

// GroupByUploadDate 按上传时间的自然日（本地时区）分组，日期倒序。
// 时间戳解析失败的报告归入"今天"，不丢弃
func (s *ReportSyncService) GroupByUploadDate(reports []*domain.Report) []DayGroup {
	byDay := map[time.Time][]*domain.Report{}
	for _, report := range reports {
		t, ok := domain.ParseUploadedAt(report.UploadedAt)
		if !ok {
			t = s.now()
		}
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		byDay[day] = append(byDay[day], report)
	}

	groups := make([]DayGroup, 0, len(byDay))
	for day, dayReports := range byDay {
		groups = append(groups, DayGroup{Day: day, Reports: dayReports})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Day.After(groups[j].Day)
	})
	return groups
}

// DownloadReport 下载报告文件用于查看。
// 先按文件名查本地缓存，命中则不发网络请求；文件上传后不可变，无 TTL
func (s *ReportSyncService) DownloadReport(ctx context.Context, remotePath string) (string, error) {
	localPath := filepath.Join(s.downloadsDir, filepath.Base(remotePath))
	if _, err := os.Stat(localPath); err == nil {
		s.logger.Debug("report download cache hit", zap.String("local_path", localPath))
		return localPath, nil
	}
	return s.api.DownloadReport(ctx, remotePath, s.downloadsDir)
}

// ListDoctors 获取医生目录（上传时的医生选择，只读投影，不持久化）
func (s *ReportSyncService) ListDoctors(ctx context.Context) ([]domain.DoctorDirectoryEntry, error) {
	entries, err := s.api.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DoctorDirectoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.DoctorDirectoryEntry{
			DoctorID:       e.ID,
			Name:           e.Name,
			Specialization: e.Specialization,
			Experience:     e.Experience,
			ContactNumber:  e.ContactNumber,
		})
	}
	return out, nil
}

// replaceView 整体替换内存列表，并把拉取结果 upsert 进本地库作为最近同步缓存。
// 列表投影字段比上传记录少（患者列表不带指标），落库前用既有记录补全缺失字段
func (s *ReportSyncService) replaceView(ctx context.Context, reports []*domain.Report) ([]*domain.Report, error) {
	for _, report := range reports {
		s.fillFromStored(ctx, report)
		if err := s.reportsRepo.UpsertReport(ctx, report); err != nil {
			return nil, fmt.Errorf("failed to cache fetched report: %w", err)
		}
	}

	s.mu.Lock()
	s.reports = reports
	s.errorMessage = ""
	s.mu.Unlock()
	return append([]*domain.Report(nil), reports...), nil
}

// fillFromStored 用本地既有记录补全投影中缺失的字段。
// 指标在上传时创建且不会删除；指派医生与患者摘要在投影未携带时保留既有值
func (s *ReportSyncService) fillFromStored(ctx context.Context, report *domain.Report) {
	stored, err := s.reportsRepo.GetReport(ctx, report.ReportID)
	if err != nil {
		return
	}
	if len(report.Metrics) == 0 {
		report.Metrics = stored.Metrics
	}
	if report.AssignedDoctorID == "" {
		report.AssignedDoctorID = stored.AssignedDoctorID
	}
	if report.PatientName == "" {
		report.PatientName = stored.PatientName
	}
	if report.PatientEmail == "" {
		report.PatientEmail = stored.PatientEmail
	}
}

func (s *ReportSyncService) recordFetchError(role, id string, err error) {
	s.logger.Error("failed to fetch reports",
		zap.String("role", role),
		zap.String("id", id),
		zap.Error(err),
	)
	s.mu.Lock()
	s.errorMessage = err.Error()
	s.mu.Unlock()
}

func metricsFromDTO(dtos []gateway.MetricDTO) []domain.ReportMetric {
	if len(dtos) == 0 {
		return nil
	}
	metrics := make([]domain.ReportMetric, 0, len(dtos))
	for _, m := range dtos {
		metrics = append(metrics, domain.ReportMetric{
			TestName:    m.TestName,
			Value:       m.Value,
			Unit:        m.Unit,
			Technology:  m.Technology,
			NormalRange: m.NormalRange,
		})
	}
	return metrics
}
