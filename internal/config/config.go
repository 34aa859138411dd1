package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config remedylab-client 配置
type Config struct {
	API struct {
		// BaseURL 远端服务地址（包含 /api 前缀，如 "http://127.0.0.1:8000/api"）
		BaseURL string `yaml:"base_url"`
		// TimeoutSeconds 单次请求超时（秒）。报告上传/下载可能需要较长时间
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"api"`
	Storage struct {
		// DataDir 本地持久化目录（users.json / reports.json 快照）
		DataDir string `yaml:"data_dir"`
		// DownloadsDir 报告文件下载缓存目录（按文件名缓存，文件不可变）
		DownloadsDir string `yaml:"downloads_dir"`
	} `yaml:"storage"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load 加载配置：环境变量优先，REMEDYLAB_CONFIG 指定的 YAML 文件可覆盖默认值
func Load() *Config {
	cfg := &Config{}

	home, _ := os.UserHomeDir()
	defaultRoot := filepath.Join(home, ".remedylab")

	cfg.API.BaseURL = getEnv("REMEDYLAB_API_BASE_URL", "http://127.0.0.1:8000/api")
	cfg.API.TimeoutSeconds = parseInt(getEnv("REMEDYLAB_API_TIMEOUT", "30"), 30)
	cfg.Storage.DataDir = getEnv("REMEDYLAB_DATA_DIR", filepath.Join(defaultRoot, "data"))
	cfg.Storage.DownloadsDir = getEnv("REMEDYLAB_DOWNLOADS_DIR", filepath.Join(defaultRoot, "downloads"))
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	// YAML 覆盖（可选）。读取/解析失败时告警并保留环境变量/默认值，不中断启动
	if path := os.Getenv("REMEDYLAB_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "remedylab: config file %s ignored: %v\n", path, err)
		}
	}

	return cfg
}

// Timeout API 请求超时
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
