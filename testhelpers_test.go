package regbench

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/regulatory-genomics/regbench-data/fetch"
)

// fakeFetcher 是 Fetcher 的离线替身：把文件名映射到本地路径并记录调用，
// 让检索逻辑的测试完全不碰网络。
type fakeFetcher struct {
	mu sync.Mutex

	// files 服务 Fetch：注册表文件名 → 本地路径。
	files map[string]string
	// objects 服务 Retrieve：RemoteObject.FileName → 本地路径。
	objects map[string]string

	fetched         []string
	retrieved       []fetch.RemoteObject
	processorCounts []int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		files:   make(map[string]string),
		objects: make(map[string]string),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, name)

	path, ok := f.files[name]
	if !ok {
		return "", fmt.Errorf("file %q is not in the content registry", name)
	}
	return path, nil
}

func (f *fakeFetcher) Retrieve(ctx context.Context, obj fetch.RemoteObject, processors ...fetch.Processor) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retrieved = append(f.retrieved, obj)
	f.processorCounts = append(f.processorCounts, len(processors))

	path, ok := f.objects[obj.FileName]
	if !ok {
		return "", fmt.Errorf("object %q not stocked", obj.FileName)
	}
	return path, nil
}

func newFakeClient(t *testing.T, fetcher Fetcher) *Client {
	t.Helper()
	client, err := New(Options{Fetcher: fetcher})
	if err != nil {
		t.Fatalf("构造 Client 失败: %v", err)
	}
	return client
}

const screeningHeader = "chrom\tchrom_start\tchrom_end\tgene_symbol\tgene_chrom\tgene_TSS\tlabel\teffect_size\tadjusted_p_value"

// screeningFixtureRows 覆盖三种取值形态：双数值、effect_size 缺失、p 值缺失。
func screeningFixtureRows() []string {
	return []string{
		"chr1\t100\t200\tGENE1\tchr1\t1000\t1\t-0.5\t0.01",
		"chr1\t300\t400\tGENE2\tchr1\t2000\t0\tNA\t0.05",
		"chr2\t500\t600\tGENE3\tchr2\t9000\t1\t1.25\tNA",
	}
}

// writeScreeningTable 在 dir 下写出一个筛查表，文件名以 .gz 结尾时先压缩。
func writeScreeningTable(t *testing.T, dir, name string, rows []string) string {
	t.Helper()

	text := screeningHeader + "\n" + strings.Join(rows, "\n") + "\n"
	body := []byte(text)
	if strings.HasSuffix(name, ".gz") {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		if _, err := zw.Write(body); err != nil {
			t.Fatalf("gzip write: %v", err)
		}
		if err := zw.Close(); err != nil {
			t.Fatalf("gzip close: %v", err)
		}
		body = buf.Bytes()
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatalf("写入筛查表失败: %v", err)
	}
	return path
}

// loadScreeningFixture 解析一个夹具表并套上样本元数据，供拼接类测试复用。
func loadScreeningFixture(t *testing.T, rows []string, pValue *float64) *ScreeningResult {
	t.Helper()

	path := writeScreeningTable(t, t.TempDir(), "table.tsv", rows)
	table, err := readScreeningTable(path, pValue)
	if err != nil {
		t.Fatalf("解析筛查表失败: %v", err)
	}
	return &ScreeningResult{
		SampleTermID: "EFO:0002067",
		SampleName:   "K562",
		Assembly:     "GRCh38",
		Result:       table,
	}
}
