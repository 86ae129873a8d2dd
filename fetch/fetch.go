package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/regulatory-genomics/regbench-data/internal/cache"
	"github.com/regulatory-genomics/regbench-data/internal/logging"
)

// Shared HTTP transport tunings，复用长连接并集中配置超时。
var defaultTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   100,
	IdleConnTimeout:       90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 1 * time.Second,
	ForceAttemptHTTP2:     true,
	DialContext: (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext,
}

// newDownloadClient 返回共享 http.Client。timeout 为 0 时不限制整体时长，
// 以容纳体积达数 GB 的基因组文件；取消依赖调用方的 context。
func newDownloadClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: defaultTransport.Clone(),
	}
}

// Options 聚合构造 Client 所需的依赖，除 CacheDir 外均可省略。
type Options struct {
	// CacheDir 为本地缓存目录，必填。
	CacheDir string

	// BaseURL 在注册表条目或 RemoteObject 未携带完整 URL 时充当前缀。
	BaseURL string

	// Registry 为注册表文本来源；为 nil 时 Client 只接受显式 RemoteObject。
	Registry io.Reader

	// HTTPClient 覆盖默认的共享下载客户端，主要供测试注入。
	HTTPClient *http.Client

	// Timeout 控制单次下载的整体时长，0 表示不限制。HTTPClient 非空时忽略。
	Timeout time.Duration

	// Logger 为 nil 时丢弃全部日志输出。
	Logger *logrus.Logger

	// Progress 非空时按下载进度回调。
	Progress ProgressFunc
}

// Client 执行“查缓存 → 校验 → 回源下载 → 落盘”的检索全流程。
// 方法可以并发调用；同名条目的并发首写由缓存层的条目锁串行化。
type Client struct {
	store    cache.Store
	registry *Registry
	http     *http.Client
	baseURL  string
	logger   *logrus.Logger
	progress ProgressFunc
}

// New 构造检索客户端。注册表在此处一次性解析完毕，之后只读。
func New(opts Options) (*Client, error) {
	store, err := cache.NewStore(opts.CacheDir)
	if err != nil {
		return nil, err
	}

	registry := emptyRegistry()
	if opts.Registry != nil {
		registry, err = ParseRegistry(opts.Registry)
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = newDownloadClient(opts.Timeout)
	}

	return &Client{
		store:    store,
		registry: registry,
		http:     httpClient,
		baseURL:  opts.BaseURL,
		logger:   logger,
		progress: opts.Progress,
	}, nil
}

// Store 暴露底层缓存，供调用方查询已落盘条目的路径。
func (c *Client) Store() cache.Store {
	return c.store
}

// Fetch 按注册表约定检索文件：先查注册表获得远端对象，再走 Retrieve。
// 未注册的文件名直接报错。
func (c *Client) Fetch(ctx context.Context, name string) (string, error) {
	obj, ok := c.registry.Lookup(name)
	if !ok {
		return "", fmt.Errorf("file %q is not in the content registry", name)
	}
	return c.Retrieve(ctx, obj)
}

// Retrieve 检索显式寻址的远端对象，返回正文落盘后的绝对路径。
// 缓存命中且摘要匹配时不发起网络请求；摘要不符则告警并重新下载一次，
// 重新下载仍不符会以 *cache.IntegrityError 失败。processors 依次在
// 检索完成后执行，每个把缓存条目映射为派生条目（如解压）。
func (c *Client) Retrieve(ctx context.Context, obj RemoteObject, processors ...Processor) (string, error) {
	if obj.FileName == "" {
		return "", errors.New("remote object file name required")
	}

	started := time.Now()
	downloadID := uuid.NewString()

	hit, err := c.verifyCached(ctx, obj)
	if err != nil {
		return "", err
	}

	var written int64
	if !hit {
		written, err = c.download(ctx, obj, downloadID)
		if err != nil {
			c.logFailure(downloadID, obj, started, err)
			return "", err
		}
	}

	name := obj.FileName
	for _, proc := range processors {
		name, err = proc(ctx, c.store, name)
		if err != nil {
			c.logFailure(downloadID, obj, started, err)
			return "", err
		}
	}

	path, err := c.store.Path(name)
	if err != nil {
		return "", err
	}

	fields := logging.RetrieveFields(downloadID, obj.FileName, hit)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	if hit {
		c.logger.WithFields(fields).Debug("fetch_cache_hit")
	} else {
		fields["size_bytes"] = written
		c.logger.WithFields(fields).Info("fetch_complete")
	}
	return path, nil
}

// verifyCached 返回条目是否已在缓存且通过摘要校验。摘要不符时记录告警
// 并当作未命中处理，让调用方重新下载覆盖。
func (c *Client) verifyCached(ctx context.Context, obj RemoteObject) (bool, error) {
	result, err := c.store.Get(ctx, obj.FileName)
	if errors.Is(err, cache.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	result.Reader.Close()

	expected := cache.NormalizeDigest(obj.SHA256)
	if expected == "" {
		return true, nil
	}

	actual, err := cache.HashFile(result.Entry.FilePath)
	if err != nil {
		return false, err
	}
	if actual != expected {
		c.logger.WithFields(logrus.Fields{
			"action":   "retrieve",
			"name":     obj.FileName,
			"expected": expected,
			"actual":   actual,
		}).Warn("hash_mismatch")
		return false, nil
	}
	return true, nil
}

// download 发起一次 GET 并把正文经摘要校验写入缓存，返回写入字节数。
func (c *Client) download(ctx context.Context, obj RemoteObject, downloadID string) (int64, error) {
	target, err := obj.ResolveURL(c.baseURL)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, fmt.Errorf("build request for %s: %w", target, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("download %s: unexpected status %s", target, resp.Status)
	}

	body := newProgressReader(resp.Body, obj.FileName, resp.ContentLength, c.progress)
	entry, err := c.store.Put(ctx, obj.FileName, body, cache.PutOptions{
		ExpectedSHA256: obj.SHA256,
	})
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", obj.FileName, err)
	}

	c.logger.WithFields(logrus.Fields{
		"action":      "retrieve",
		"download_id": downloadID,
		"name":        obj.FileName,
		"url":         target,
		"size_bytes":  entry.SizeBytes,
	}).Debug("download_complete")
	return entry.SizeBytes, nil
}

func (c *Client) logFailure(downloadID string, obj RemoteObject, started time.Time, err error) {
	fields := logging.RetrieveFields(downloadID, obj.FileName, false)
	fields["elapsed_ms"] = time.Since(started).Milliseconds()
	fields["error"] = err.Error()
	c.logger.WithFields(fields).Error("retrieve_failed")
}
