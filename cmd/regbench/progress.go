package main

import (
	"io"

	pb "gopkg.in/cheggaaa/pb.v1"
)

// progressRenderer 把 fetch 的进度回调映射到 pb 字节进度条。下载按顺序
// 进行，同一时刻只有一个活跃文件；换文件时结束上一个条。
type progressRenderer struct {
	out     io.Writer
	enabled bool
	bar     *pb.ProgressBar
	name    string
}

func newProgressRenderer(out io.Writer, enabled bool) *progressRenderer {
	return &progressRenderer{out: out, enabled: enabled}
}

// Update 实现 fetch.ProgressFunc。total 为 -1（长度未知）时退化为计数条。
func (p *progressRenderer) Update(name string, written, total int64) {
	if !p.enabled {
		return
	}
	if p.bar == nil || p.name != name {
		p.finish()
		p.name = name
		if total < 0 {
			total = 0
		}
		p.bar = pb.New64(total)
		p.bar.SetUnits(pb.U_BYTES)
		p.bar.Output = p.out
		p.bar.Prefix(name + " ")
		p.bar.Start()
	}
	p.bar.Set64(written)
}

// Close 结束仍在渲染的进度条，幂等。
func (p *progressRenderer) Close() {
	p.finish()
}

func (p *progressRenderer) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
		p.name = ""
	}
}
