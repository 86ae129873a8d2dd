package fetch

import "io"

// ProgressFunc 在下载过程中周期性收到 (文件名, 已写字节, 总字节) 回调。
// 上游未提供 Content-Length 时 total 为 -1。回调在下载 goroutine 内同步执行，
// 实现方不应阻塞。
type ProgressFunc func(name string, written, total int64)

// progressReader 包装响应正文，按读取进度驱动回调。
type progressReader struct {
	r       io.Reader
	name    string
	total   int64
	written int64
	fn      ProgressFunc
}

func newProgressReader(r io.Reader, name string, total int64, fn ProgressFunc) io.Reader {
	if fn == nil {
		return r
	}
	return &progressReader{r: r, name: name, total: total, fn: fn}
}

func (p *progressReader) Read(buf []byte) (int, error) {
	n, err := p.r.Read(buf)
	if n > 0 {
		p.written += int64(n)
		p.fn(p.name, p.written, p.total)
	}
	return n, err
}
