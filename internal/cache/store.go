package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Store 负责管理本地数据缓存的读写。磁盘布局遵循：
//
//	<BaseDir>/<name>    # 下载得到的完整文件
//
// 条目名在同一缓存目录内唯一，文件的 ModTime/Size 由文件系统提供。
type Store interface {
	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, name string) (*ReadResult, error)

	// Put 将下载正文写入缓存，并产出新的 Entry 描述。实现需通过临时文件 + rename
	// 保证写入原子性，失败时清理临时文件，并在复制过程中计算 SHA-256 摘要。
	// 当 opts.ExpectedSHA256 非空且与实际摘要不符时返回 *IntegrityError，正文不落盘。
	Put(ctx context.Context, name string, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除正文文件，通常用于清理校验失败的条目。
	Remove(ctx context.Context, name string) error

	// Path 返回条目落盘后的绝对路径，不检查文件是否已存在。
	Path(name string) (string, error)
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time

	// ExpectedSHA256 为期望的十六进制摘要，可带 sha256: 前缀；为空时不校验。
	ExpectedSHA256 string
}

// Entry 表示一次缓存写入或命中结果，包含绝对文件路径及文件信息。
type Entry struct {
	Name      string `json:"name"`
	FilePath  string `json:"file_path"`
	SizeBytes int64  `json:"size_bytes"`
	ModTime   time.Time

	// SHA256 是写入时计算的内容摘要，仅由 Put 填充。
	SHA256 string `json:"sha256,omitempty"`
}

// ReadResult 组合 Entry 与正文 Reader，便于上层直接流式消费缓存内容。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")

// IntegrityError 表示下载内容与期望摘要不符，写入被拒绝。
type IntegrityError struct {
	Name     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity check failed for %s: expected sha256 %s, got %s", e.Name, e.Expected, e.Actual)
}
