package regbench

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/regulatory-genomics/regbench-data/fetch"
	"github.com/regulatory-genomics/regbench-data/internal/config"
)

// DefaultBaseURL 指向托管基准数据的内容仓库。
const DefaultBaseURL = "https://osf.io"

// registryText 内嵌 data/registry.txt，进程内解析一次后只读。
//
//go:embed data/registry.txt
var registryText string

// Fetcher 是检索层依赖的下载契约，由 *fetch.Client 与测试替身实现。
// Fetch 走注册表约定（文件名 → 摘要 → 地址），Retrieve 走显式对象约定。
type Fetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
	Retrieve(ctx context.Context, obj fetch.RemoteObject, processors ...fetch.Processor) (string, error)
}

// Options configures a Client. The zero value is usable: files land in the
// operating system's user cache directory and downloads resolve against
// DefaultBaseURL with no logging and no progress output.
type Options struct {
	// CacheDir overrides the local cache directory.
	CacheDir string

	// BaseURL overrides the content store used for registry entries that do
	// not carry an explicit URL.
	BaseURL string

	// DownloadTimeout bounds a single download end to end; zero means no
	// limit, which suits multi-gigabyte genome files.
	DownloadTimeout time.Duration

	// Fetcher replaces the built-in fetch client entirely. When set, the
	// fields above are ignored; tests use this to avoid the network.
	Fetcher Fetcher

	// Logger receives structured retrieval events; nil discards them.
	Logger *logrus.Logger

	// Progress, when non-nil, is invoked with download progress.
	Progress fetch.ProgressFunc
}

// Client 是全部检索操作的入口。检索共享同一个 Fetcher 与缓存目录；
// 数据集注册表为包级静态数据，与 Client 实例无关。
type Client struct {
	fetcher Fetcher
	logger  *logrus.Logger
}

// New 构造检索客户端。未注入 Fetcher 时基于内嵌注册表搭建 fetch.Client。
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	fetcher := opts.Fetcher
	if fetcher == nil {
		cacheDir := opts.CacheDir
		if cacheDir == "" {
			cacheDir = config.DefaultCacheDir()
		}
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = DefaultBaseURL
		}

		fc, err := fetch.New(fetch.Options{
			CacheDir: cacheDir,
			BaseURL:  baseURL,
			Registry: strings.NewReader(registryText),
			Timeout:  opts.DownloadTimeout,
			Logger:   logger,
			Progress: opts.Progress,
		})
		if err != nil {
			return nil, fmt.Errorf("build fetch client: %w", err)
		}
		fetcher = fc
	}

	return &Client{fetcher: fetcher, logger: logger}, nil
}
