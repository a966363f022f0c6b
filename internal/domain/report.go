package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusProcessed = "processed"
	StatusEmpty     = "empty"
	StatusFailed    = "failed"
)

const (
	ErrCodeReadFailed        = "read_failed"
	ErrCodeDecodeFailed      = "decode_failed"
	ErrCodeInvalidInput      = "invalid_input"
	ErrCodeIdentityMismatch  = "identity_mismatch"
	ErrCodeNotFound          = "not_found"
	ErrCodeUnsupportedMode   = "unsupported_mode"
	ErrCodePersistFailed     = "persist_failed"
	ErrCodeStorageFailed     = "storage_failed"
	ErrCodeConfigNotFound    = "config_not_found"
	ErrCodeConfigInvalid     = "config_invalid"
	ErrCodeConfigMissingPath = "config_missing_path"
)

// FilterCounters 是自定义筛选的观测计数快照。
type FilterCounters struct {
	Total    int64 `json:"total"`
	Filtered int64 `json:"filtered"`
	Image    int64 `json:"image"`
	Live     int64 `json:"live"`
}

// RunReport 是对外稳定输出（report.json / stdout JSON）的结构。
type RunReport struct {
	RunID    string `json:"run_id"`
	Mode     string `json:"mode"`
	Platform string `json:"platform"`
	Path     string `json:"path"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Counters FilterCounters `json:"counters"`
	Summary  ReportSummary  `json:"summary"`
	Items    []ItemResult   `json:"items"`
}

type ReportSummary struct {
	Processed int `json:"processed"`
	Empty     int `json:"empty"`
	Failed    int `json:"failed"`

	Works    int `json:"works"`
	Recorded int `json:"recorded"`
	Dropped  int `json:"dropped"`
	Degraded int `json:"degraded"`
}

// ItemResult 是单个输入（payload 文件或账号）的处理结果。
type ItemResult struct {
	Source string `json:"source"`
	Status string `json:"status"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Extracted int `json:"extracted"`
	Dropped   int `json:"dropped"`
	Degraded  int `json:"degraded"`
	Recorded  int `json:"recorded"`

	// IDs 是最终返回（通过全部筛选）的作品 ID，保持提取顺序。
	IDs []string `json:"ids"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) items 稳定排序：按 source 字典序；source=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a := r.Items[i].Source
		b := r.Items[j].Source
		if a == "" {
			return false
		}
		if b == "" {
			return true
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusProcessed:
			s.Processed++
		case StatusEmpty:
			s.Empty++
		case StatusFailed:
			s.Failed++
		}
		s.Works += len(it.IDs)
		s.Recorded += it.Recorded
		s.Dropped += it.Dropped
		s.Degraded += it.Degraded
	}
	r.Summary = s
}

// HasFailure 报告是否存在失败条目（决定进程退出码）。
func (r RunReport) HasFailure() bool {
	for _, it := range r.Items {
		if it.Status == StatusFailed {
			return true
		}
	}
	return false
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// nil 切片统一输出为 []。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	a.Items = append([]ItemResult{}, r.Items...)
	for i := range a.Items {
		if a.Items[i].IDs == nil {
			a.Items[i].IDs = []string{}
		}
	}
	return json.Marshal(a)
}
