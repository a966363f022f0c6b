// Package config 发现并合并 svex.json、环境变量（含 .env）与 CLI 参数。
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/ncruces/go-strftime"

	"github.com/John-Robertt/SVEX/internal/domain"
	"github.com/John-Robertt/SVEX/internal/platform"
	"github.com/John-Robertt/SVEX/internal/platform/tiktok"
	"github.com/John-Robertt/SVEX/internal/record"
)

const (
	ErrCodeNotFound    = domain.ErrCodeConfigNotFound
	ErrCodeInvalid     = domain.ErrCodeConfigInvalid
	ErrCodeMissingPath = domain.ErrCodeConfigMissingPath
)

const (
	FileName = "svex.json"

	DefaultPlatform   = string(platform.Douyin)
	DefaultDateFormat = "%Y-%m-%d %H:%M:%S"
	DefaultWorkers    = 4
)

// 环境变量覆盖配置文件中的同名字段。
const (
	EnvStorageFormat = "SVEX_STORAGE_FORMAT"
	EnvPostgresDSN   = "SVEX_POSTGRES_DSN"
	EnvDateFormat    = "SVEX_DATE_FORMAT"
	EnvLogFile       = "SVEX_LOG_FILE"
	EnvTimezone      = "SVEX_TIMEZONE"
)

// CLIArgs 保留“是否显式指定”，保证 CLI 能覆盖配置文件中的任何取值（包括空串）。
type CLIArgs struct {
	Path string

	Platform    string
	PlatformSet bool

	Storage    string
	StorageSet bool
}

// FileConfig 对应 svex.json。指针字段区分“未填写”和“填写了零值”。
type FileConfig struct {
	Path          string   `json:"path"`
	Platform      string   `json:"platform"`
	DateFormat    string   `json:"date_format"`
	Timezone      string   `json:"timezone"`
	StorageFormat *string  `json:"storage_format"`
	PostgresDSN   string   `json:"postgres_dsn"`
	FolderMode    bool     `json:"folder_mode"`
	ExcludeDirs   []string `json:"exclude_dirs"`
	Workers       int      `json:"workers"`
	LogFile       string   `json:"log_file"`
	MetricsFile   string   `json:"metrics_file"`
	ExcludedTypes []string `json:"excluded_types"`

	TikTokVideoIndex       *int `json:"tiktok_video_index"`
	TikTokImageIndex       *int `json:"tiktok_image_index"`
	TikTokBitrateInfoIndex *int `json:"tiktok_bitrate_info_index"`
}

// EffectiveConfig 是合并并规范化后的最终配置，实现层直接消费。
type EffectiveConfig struct {
	Path     string
	Platform platform.Kind

	// DateFormat 是 strftime 模式，用 FormatTime 格式化。
	DateFormat string
	Location   *time.Location

	Storage     record.Format
	PostgresDSN string
	FolderMode  bool

	ExcludeDirs   []string
	Workers       int
	LogFile       string
	MetricsFile   string
	ExcludedTypes []domain.WorkType

	TikTok tiktok.Options
}

// FormatTime 按 DateFormat 格式化 t。
func (c EffectiveConfig) FormatTime(t time.Time) string {
	return strftime.Format(c.DateFormat, t)
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeMissingPath:
		return fmt.Sprintf("%s：配置文件 %q 缺少必填字段 path", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LookupEnv 与 os.LookupEnv 同签名，测试可替换。
type LookupEnv func(key string) (string, bool)

// LoadEffective 发现并读取配置文件，叠加环境变量后与 CLI 参数合并。
//
// 发现规则：
// 1) CLI 提供 path：尝试读取 <path>/svex.json（可选）
// 2) CLI 未提供 path：必须读取 <cwd>/svex.json，且其中必须包含 path
//
// 环境变量：进程环境优先，其次 <cwd>/.env（可选）。
//
// 覆盖优先级：CLI > 环境变量 > 配置文件 > 默认值。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}
	env, err := dotenvLookup(filepath.Join(cwdAbs, ".env"), os.LookupEnv)
	if err != nil {
		return EffectiveConfig{}, err
	}
	return Load(cwdAbs, cli, env)
}

// Load 与 LoadEffective 相同，但使用给定的环境变量来源。
func Load(cwd string, cli CLIArgs, env LookupEnv) (EffectiveConfig, error) {
	if env == nil {
		env = func(string) (string, bool) { return "", false }
	}
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	if strings.TrimSpace(cli.Path) != "" {
		absPath := absCleanFrom(cwdAbs, cli.Path)
		cfgPath := filepath.Join(absPath, FileName)
		fc, _, err := readFileConfig(cfgPath)
		if err != nil {
			return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
		}
		return merge(absPath, cli, fc, env, cfgPath)
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if strings.TrimSpace(fc.Path) == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeMissingPath, Path: cfgPath}
	}
	return merge(absCleanFrom(cwdAbs, fc.Path), cli, fc, env, cfgPath)
}

// dotenvLookup 读取 .env（不存在时忽略），不修改进程环境。
func dotenvLookup(path string, base LookupEnv) (LookupEnv, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return nil, &Error{Code: ErrCodeInvalid, Path: path, Err: err}
	}
	return func(key string) (string, bool) {
		if v, ok := base(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}, nil
}

func merge(absPath string, cli CLIArgs, fc FileConfig, env LookupEnv, cfgPath string) (EffectiveConfig, error) {
	invalid := func(err error) (EffectiveConfig, error) {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}

	// platform：CLI > config > 默认
	name := DefaultPlatform
	if cli.PlatformSet {
		name = cli.Platform
	} else if strings.TrimSpace(fc.Platform) != "" {
		name = fc.Platform
	}
	kind, err := parsePlatform(name)
	if err != nil {
		return invalid(err)
	}

	// storage_format：CLI > env > config > 默认不落盘
	storage := ""
	if fc.StorageFormat != nil {
		storage = *fc.StorageFormat
	}
	if v, ok := env(EnvStorageFormat); ok {
		storage = v
	}
	if cli.StorageSet {
		storage = cli.Storage
	}
	format, err := record.ParseFormat(storage)
	if err != nil {
		return invalid(err)
	}

	dsn := fc.PostgresDSN
	if v, ok := env(EnvPostgresDSN); ok {
		dsn = v
	}
	dsn = strings.TrimSpace(dsn)
	if format == record.FormatPostgres && dsn == "" {
		return invalid(fmt.Errorf("storage_format=postgres 但 postgres_dsn 为空"))
	}

	dateFormat := DefaultDateFormat
	if strings.TrimSpace(fc.DateFormat) != "" {
		dateFormat = fc.DateFormat
	}
	if v, ok := env(EnvDateFormat); ok && strings.TrimSpace(v) != "" {
		dateFormat = v
	}
	if !strings.Contains(dateFormat, "%") {
		return invalid(fmt.Errorf("date_format 不含任何 %% 指令：%q", dateFormat))
	}

	tz := fc.Timezone
	if v, ok := env(EnvTimezone); ok {
		tz = v
	}
	loc := time.Local
	if tz = strings.TrimSpace(tz); tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return invalid(fmt.Errorf("timezone 无效：%w", err))
		}
	}

	logFile := fc.LogFile
	if v, ok := env(EnvLogFile); ok {
		logFile = v
	}

	// 范围 [1, 32]；超出截断。
	workers := fc.Workers
	if workers == 0 {
		workers = DefaultWorkers
	}
	workers = min(max(workers, 1), 32)

	opt := tiktok.DefaultOptions()
	if fc.TikTokVideoIndex != nil {
		opt.VideoIndex = *fc.TikTokVideoIndex
	}
	if fc.TikTokImageIndex != nil {
		opt.ImageIndex = *fc.TikTokImageIndex
	}
	if fc.TikTokBitrateInfoIndex != nil {
		opt.BitrateInfoIndex = *fc.TikTokBitrateInfoIndex
	}

	types := make([]domain.WorkType, 0, len(fc.ExcludedTypes))
	for _, s := range fc.ExcludedTypes {
		t, ok := domain.ParseWorkType(strings.TrimSpace(s))
		if !ok {
			return invalid(fmt.Errorf("excluded_types 中的类型无效：%q", s))
		}
		types = append(types, t)
	}

	return EffectiveConfig{
		Path:          absPath,
		Platform:      kind,
		DateFormat:    dateFormat,
		Location:      loc,
		Storage:       format,
		PostgresDSN:   dsn,
		FolderMode:    fc.FolderMode,
		ExcludeDirs:   append([]string(nil), fc.ExcludeDirs...),
		Workers:       workers,
		LogFile:       absCleanFrom(absPath, logFile),
		MetricsFile:   absCleanFrom(absPath, fc.MetricsFile),
		ExcludedTypes: types,
		TikTok:        opt,
	}, nil
}

func parsePlatform(p string) (platform.Kind, error) {
	switch k := platform.Kind(strings.ToLower(strings.TrimSpace(p))); k {
	case platform.Douyin, platform.TikTok:
		return k, nil
	case "":
		return "", fmt.Errorf("platform 不能为空")
	default:
		return "", fmt.Errorf("platform 只能是 douyin 或 tiktok，实际是 %q", p)
	}
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute；空串保持为空。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件；exists 表示文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, err
	}
	return fc, true, nil
}
