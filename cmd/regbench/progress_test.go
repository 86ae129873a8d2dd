package main

import (
	"bytes"
	"testing"
)

func TestProgressRendererDisabledStaysSilent(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := newProgressRenderer(buf, false)
	renderer.Update("CAGE_K562_+.w5z", 10, 100)
	renderer.Close()
	if buf.Len() != 0 {
		t.Fatalf("关闭进度后不应有输出: %q", buf.String())
	}
}

func TestProgressRendererRendersAndFinishes(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := newProgressRenderer(buf, true)
	renderer.Update("genome.fa.gz", 50, 100)
	renderer.Update("genome.fa.gz", 100, 100)
	renderer.Close()
	if buf.Len() == 0 {
		t.Fatalf("开启进度时应有渲染输出")
	}
	// Close 幂等，重复调用不应 panic。
	renderer.Close()
}

func TestProgressRendererSwitchesFiles(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer := newProgressRenderer(buf, true)
	renderer.Update("a.w5z", 10, 10)
	renderer.Update("b.w5z", 5, -1)
	renderer.Close()
	if renderer.bar != nil {
		t.Fatalf("Close 后不应残留进度条")
	}
}
