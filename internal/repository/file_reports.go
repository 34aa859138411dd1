package repository

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"remedylab-client/internal/domain"
)

// FileReportsRepo 文件快照实现的报告仓库
type FileReportsRepo struct {
	mu      sync.RWMutex
	path    string
	reports map[string]*domain.Report // reportID -> Report
}

// NewFileReportsRepo 创建报告仓库并加载既有快照
func NewFileReportsRepo(dataDir string) (*FileReportsRepo, error) {
	r := &FileReportsRepo{
		path:    filepath.Join(dataDir, "reports.json"),
		reports: map[string]*domain.Report{},
	}
	if err := loadSnapshot(r.path, &r.reports); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileReportsRepo) UpsertReport(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *report
	stored.Metrics = append([]domain.ReportMetric(nil), report.Metrics...)
	r.reports[report.ReportID] = &stored
	return writeSnapshot(r.path, r.reports)
}

func (r *FileReportsRepo) GetReport(_ context.Context, reportID string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rep, ok := r.reports[reportID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyReport(rep), nil
}

func (r *FileReportsRepo) ListByPatient(_ context.Context, patientID string) ([]*domain.Report, error) {
	return r.list(func(rep *domain.Report) bool { return rep.PatientID == patientID })
}

func (r *FileReportsRepo) ListByDoctor(_ context.Context, doctorID string) ([]*domain.Report, error) {
	return r.list(func(rep *domain.Report) bool { return rep.AssignedDoctorID == doctorID })
}

func (r *FileReportsRepo) SetRecommendations(_ context.Context, reportID string, ai, doctor *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rep, ok := r.reports[reportID]
	if !ok {
		return ErrNotFound
	}
	if ai != nil {
		rep.AIRecommendation = *ai
	}
	if doctor != nil {
		rep.DoctorRecommendation = *doctor
	}
	return writeSnapshot(r.path, r.reports)
}

// Count 当前报告数（测试用）
func (r *FileReportsRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports)
}

func (r *FileReportsRepo) list(match func(*domain.Report) bool) ([]*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Report, 0)
	for _, rep := range r.reports {
		if match(rep) {
			out = append(out, copyReport(rep))
		}
	}
	// 上传时间倒序；无法解析的时间戳按原文排在已解析项之后
	sort.SliceStable(out, func(i, j int) bool {
		ti, oki := domain.ParseUploadedAt(out[i].UploadedAt)
		tj, okj := domain.ParseUploadedAt(out[j].UploadedAt)
		if oki && okj {
			return ti.After(tj)
		}
		if oki != okj {
			return oki
		}
		return out[i].UploadedAt > out[j].UploadedAt
	})
	return out, nil
}

func copyReport(rep *domain.Report) *domain.Report {
	copied := *rep
	copied.Metrics = append([]domain.ReportMetric(nil), rep.Metrics...)
	return &copied
}
