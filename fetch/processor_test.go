package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"strings"
	"testing"

	"github.com/regulatory-genomics/regbench-data/internal/cache"
)

func gzipBytes(t *testing.T, body []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

func TestDecompressDerivesEntry(t *testing.T) {
	plain := []byte(">chr1\nACGT\n")
	server, stub := newContentStub(t, map[string][]byte{"genome.fa.gz": gzipBytes(t, plain)})

	client := newTestClient(t, Options{BaseURL: server.URL})
	ctx := context.Background()

	path, err := client.Retrieve(ctx, RemoteObject{FileName: "genome.fa.gz"}, Decompress())
	if err != nil {
		t.Fatalf("Retrieve 失败: %v", err)
	}
	if !strings.HasSuffix(path, "genome.fa") {
		t.Fatalf("解压后应返回去掉 .gz 的路径, got %q", path)
	}
	if got := readFile(t, path); !bytes.Equal(got, plain) {
		t.Fatalf("解压内容不符: %q", got)
	}

	// 压缩原文与解压结果都应留在缓存目录中。
	for _, name := range []string{"genome.fa.gz", "genome.fa"} {
		result, err := client.Store().Get(ctx, name)
		if err != nil {
			t.Fatalf("缓存缺少 %s: %v", name, err)
		}
		result.Reader.Close()
	}

	// 再次检索：压缩包命中缓存，解压处理器跳过，无新请求。
	if _, err := client.Retrieve(ctx, RemoteObject{FileName: "genome.fa.gz"}, Decompress()); err != nil {
		t.Fatalf("二次 Retrieve 失败: %v", err)
	}
	if stub.count("genome.fa.gz") != 1 {
		t.Fatalf("expected a single download, hits=%d", stub.count("genome.fa.gz"))
	}
}

func TestDecompressSkipsExistingTarget(t *testing.T) {
	client := newTestClient(t, Options{})
	ctx := context.Background()
	store := client.Store()

	if _, err := store.Put(ctx, "table.tsv", strings.NewReader("already here"), cache.PutOptions{}); err != nil {
		t.Fatalf("预置目标条目失败: %v", err)
	}
	// 源条目故意放入非 gzip 内容：目标已存在时不应再读源。
	if _, err := store.Put(ctx, "table.tsv.gz", strings.NewReader("not gzip"), cache.PutOptions{}); err != nil {
		t.Fatalf("预置源条目失败: %v", err)
	}

	name, err := Decompress()(ctx, store, "table.tsv.gz")
	if err != nil {
		t.Fatalf("目标已存在时应直接返回: %v", err)
	}
	if name != "table.tsv" {
		t.Fatalf("unexpected derived name %q", name)
	}
}

func TestDecompressRequiresGzSuffix(t *testing.T) {
	client := newTestClient(t, Options{})
	if _, err := Decompress()(context.Background(), client.Store(), "plain.txt"); err == nil {
		t.Fatalf("非 .gz 条目应报错")
	}
}

func TestDecompressRejectsCorruptArchive(t *testing.T) {
	client := newTestClient(t, Options{})
	ctx := context.Background()
	if _, err := client.Store().Put(ctx, "broken.txt.gz", strings.NewReader("not gzip at all"), cache.PutOptions{}); err != nil {
		t.Fatalf("预置缓存失败: %v", err)
	}
	if _, err := Decompress()(ctx, client.Store(), "broken.txt.gz"); err == nil {
		t.Fatalf("损坏的 gzip 内容应报错")
	}
}
