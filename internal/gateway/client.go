package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client RemedyLab 远端 API 客户端。
// 该层只负责类型化请求/响应与错误归类，不做重试（重试策略属于调用方，由用户重试驱动）
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建 API 客户端
// baseURL 形如 "http://127.0.0.1:8000/api"
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout). // 报告上传/下载可能需要较长时间
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// PostJSON 发送 JSON POST；out 为 nil 时忽略响应体（如保存推荐的空响应）
func (c *Client) PostJSON(ctx context.Context, path string, body any, out any) error {
	if err := validatePath(path); err != nil {
		return err
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(path)
	return c.finish(path, resp, err, out)
}

// GetJSON 发送 GET 并解析 JSON 响应
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	if err := validatePath(path); err != nil {
		return err
	}

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(path)
	return c.finish(path, resp, err, out)
}

// UploadReport 以 multipart 上传报告文件。
// 分部顺序固定：file（application/pdf）、patient_id、doctor_id
func (c *Client) UploadReport(ctx context.Context, fileName string, fileBytes []byte, patientID, doctorID string) (*UploadReportData, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", "application/pdf")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(fileBytes); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.WriteField("patient_id", patientID); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.WriteField("doctor_id", doctorID); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	c.logger.Info("uploading report",
		zap.String("file_name", fileName),
		zap.Int("file_size", len(fileBytes)),
		zap.String("patient_id", patientID),
		zap.String("doctor_id", doctorID),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", w.FormDataContentType()).
		SetBody(buf.Bytes()).
		Post(EndpointUploadReport)

	var envelope UploadReportEnvelope
	if err := c.finish(EndpointUploadReport, resp, err, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ReportID == "" {
		return nil, fmt.Errorf("%w: upload response missing report_id", ErrMalformedResponse)
	}
	return &envelope.Data, nil
}

// DownloadReport 下载报告文件并写入 destDir/<文件名>。
// 本地文件名由远端文件名确定（非随机名），重复请求可直接复用已下载文件
func (c *Client) DownloadReport(ctx context.Context, remotePath, destDir string) (string, error) {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("file_path", remotePath).
		Get(EndpointDownloadReport)
	if err != nil {
		return "", c.classifyTransport(EndpointDownloadReport, resp, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return "", &ServerError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads dir: %w", err)
	}
	localPath := filepath.Join(destDir, filepath.Base(remotePath))
	if err := os.WriteFile(localPath, resp.Body(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write downloaded report: %w", err)
	}

	c.logger.Info("report downloaded",
		zap.String("remote_path", remotePath),
		zap.String("local_path", localPath),
		zap.Int("bytes", len(resp.Body())),
	)
	return localPath, nil
}

// ============================================
// 类型化的业务调用
// ============================================

// Signup 注册（payload 为 DoctorSignupRequest / PatientSignupRequest）
func (c *Client) Signup(ctx context.Context, endpoint string, payload any) (*AuthEnvelope, error) {
	var envelope AuthEnvelope
	if err := c.PostJSON(ctx, endpoint, payload, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data.ID == "" {
		return nil, fmt.Errorf("%w: auth response missing user id", ErrMalformedResponse)
	}
	return &envelope, nil
}

// Login 登录（endpoint 由角色决定）
func (c *Client) Login(ctx context.Context, endpoint string, req LoginRequest) (*AuthEnvelope, error) {
	return c.Signup(ctx, endpoint, req)
}

// ListDoctors 获取医生目录
func (c *Client) ListDoctors(ctx context.Context) ([]DoctorListEntry, error) {
	var out []DoctorListEntry
	if err := c.GetJSON(ctx, EndpointDoctorList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPatientReports 获取患者报告列表
func (c *Client) FetchPatientReports(ctx context.Context, patientID string) ([]PatientReportDTO, error) {
	var out []PatientReportDTO
	if err := c.GetJSON(ctx, EndpointPatientReports+"/"+patientID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchDoctorReports 获取医生报告列表
func (c *Client) FetchDoctorReports(ctx context.Context, doctorID string) ([]DoctorReportDTO, error) {
	var out []DoctorReportDTO
	if err := c.GetJSON(ctx, EndpointDoctorReports+"/"+doctorID, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateRecommendation 请求 AI 推荐生成
func (c *Client) GenerateRecommendation(ctx context.Context, reportID string) (*GenerateRecommendationResponse, error) {
	var out GenerateRecommendationResponse
	req := GenerateRecommendationRequest{ReportID: reportID}
	if err := c.PostJSON(ctx, EndpointGenerateRecommendation, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveRecommendation 保存医生最终推荐（成功响应体为空）
func (c *Client) SaveRecommendation(ctx context.Context, reportID, text string) error {
	req := SaveRecommendationRequest{ReportID: reportID, DoctorRecommendation: text}
	return c.PostJSON(ctx, EndpointSaveRecommendation, req, nil)
}

// GetSavedRecommendation 查询已保存推荐（未保存返回 null 文本，属正常结果）
func (c *Client) GetSavedRecommendation(ctx context.Context, reportID string) (*SavedRecommendationResponse, error) {
	var out SavedRecommendationResponse
	if err := c.GetJSON(ctx, EndpointGetRecommendation+"/"+reportID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ============================================
// 错误归类
// ============================================

func (c *Client) finish(path string, resp *resty.Response, err error, out any) error {
	if err != nil {
		return c.classifyTransport(path, resp, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		c.logger.Warn("server rejected request",
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return &ServerError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.Error("failed to decode response",
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) classifyTransport(path string, resp *resty.Response, err error) error {
	c.logger.Error("request failed",
		zap.String("path", path),
		zap.Error(err),
	)
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &TransportError{Message: urlErr.Err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &TransportError{Message: err.Error()}
	}
	if resp == nil || resp.RawResponse == nil {
		return ErrNoResponse
	}
	return &TransportError{Message: err.Error()}
}

func validatePath(path string) error {
	if path == "" || strings.Contains(path, " ") {
		return ErrInvalidEndpoint
	}
	if _, err := url.Parse(path); err != nil {
		return ErrInvalidEndpoint
	}
	return nil
}
