package regbench

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func enhancerMetadataYAML(id string, descriptors []sampleDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "id: %s\ndata:\n", id)
	for _, d := range descriptors {
		fmt.Fprintf(&b, "  - file: %s\n", d.File)
		fmt.Fprintf(&b, "    sample_term_id: %s\n", d.SampleTermID)
		fmt.Fprintf(&b, "    sample_name: %s\n", d.SampleName)
		fmt.Fprintf(&b, "    assembly: %s\n", d.Assembly)
	}
	return b.String()
}

// stockEnhancerFixture 为一个已登记的筛查数据集生成元数据与数据文件，
// 并登记到 fake 中，使 RetrieveEnhancer 全程离线。
func stockEnhancerFixture(t *testing.T, fake *fakeFetcher, dir, id string) {
	t.Helper()

	source, err := enhancerRegistry.lookup(id)
	if err != nil {
		t.Fatalf("数据集 %s 未登记: %v", id, err)
	}

	descriptors := make([]sampleDescriptor, 0, len(source.data))
	for _, d := range source.data {
		descriptors = append(descriptors, sampleDescriptor{
			File:         d.name,
			SampleTermID: "EFO:0002067",
			SampleName:   "K562",
			Assembly:     "GRCh38",
		})
		fake.files[d.dataFile] = writeScreeningTable(t, dir, d.dataFile, screeningFixtureRows())
	}

	metadataPath := filepath.Join(dir, source.metadataFile)
	if err := os.WriteFile(metadataPath, []byte(enhancerMetadataYAML(id, descriptors)), 0o644); err != nil {
		t.Fatalf("写入元数据失败: %v", err)
	}
	fake.files[source.metadataFile] = metadataPath
}

func TestListEnhancerContainsBuiltins(t *testing.T) {
	ids := ListEnhancer()
	want := []string{"Gasperini2019", "Nasser2021", "Schraivogel2020"}
	if len(ids) != len(want) {
		t.Fatalf("内置数据集数量不符: %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("注册顺序不符: got %v, want %v", ids, want)
		}
	}
}

func TestPValueHelper(t *testing.T) {
	p := PValue(0.05)
	if p == nil || *p != 0.05 {
		t.Fatalf("PValue 应返回指向字面量的指针, got %v", p)
	}
}

func TestLoadDatasetMapsDescriptors(t *testing.T) {
	dir := t.TempDir()

	metadataPath := filepath.Join(dir, "metadata.yaml")
	yamlText := enhancerMetadataYAML("Demo2024", []sampleDescriptor{
		{File: "a.tsv", SampleTermID: "EFO:0002067", SampleName: "K562", Assembly: "GRCh38"},
		{File: "b.tsv.gz", SampleTermID: "EFO:0001187", SampleName: "HepG2", Assembly: "GRCh38"},
	})
	if err := os.WriteFile(metadataPath, []byte(yamlText), 0o644); err != nil {
		t.Fatalf("写入元数据失败: %v", err)
	}

	files := []DataFile{
		{Name: "a.tsv", Path: writeScreeningTable(t, dir, "a.tsv", screeningFixtureRows())},
		{Name: "b.tsv.gz", Path: writeScreeningTable(t, dir, "b.tsv.gz", []string{
			"chr3\t700\t800\tGENE4\tchr3\t100\t0\t0.1\t0.2",
		})},
	}

	dataset, err := LoadDataset(metadataPath, files, nil)
	if err != nil {
		t.Fatalf("LoadDataset 失败: %v", err)
	}
	if dataset.ID != "Demo2024" {
		t.Fatalf("数据集 id 不符: %q", dataset.ID)
	}
	if len(dataset.Results) != 2 {
		t.Fatalf("应得到两个样本结果: %d", len(dataset.Results))
	}

	first := dataset.Results[0]
	if first.SampleTermID != "EFO:0002067" || first.SampleName != "K562" || first.Assembly != "GRCh38" {
		t.Fatalf("样本属性映射不符: %+v", first)
	}
	if first.Len() != 3 {
		t.Fatalf("第一个表行数不符: %d", first.Len())
	}

	second := dataset.Results[1]
	if second.SampleName != "HepG2" || second.Len() != 1 {
		t.Fatalf("第二个表映射不符: %+v, 行数 %d", second, second.Len())
	}
}

func TestLoadDatasetMissingDescriptor(t *testing.T) {
	dir := t.TempDir()

	metadataPath := filepath.Join(dir, "metadata.yaml")
	yamlText := enhancerMetadataYAML("Demo2024", []sampleDescriptor{
		{File: "a.tsv", SampleTermID: "EFO:0002067", SampleName: "K562", Assembly: "GRCh38"},
	})
	if err := os.WriteFile(metadataPath, []byte(yamlText), 0o644); err != nil {
		t.Fatalf("写入元数据失败: %v", err)
	}

	files := []DataFile{
		{Name: "c.tsv", Path: writeScreeningTable(t, dir, "c.tsv", screeningFixtureRows())},
	}
	_, err := LoadDataset(metadataPath, files, nil)
	if err == nil || !strings.Contains(err.Error(), "file c.tsv not found in metadata") {
		t.Fatalf("缺失描述项应点名报错, got %v", err)
	}
}

func TestLoadDatasetRejectsBadMetadata(t *testing.T) {
	dir := t.TempDir()
	metadataPath := filepath.Join(dir, "metadata.yaml")
	if err := os.WriteFile(metadataPath, []byte("\tid: bad-indent"), 0o644); err != nil {
		t.Fatalf("写入元数据失败: %v", err)
	}
	if _, err := LoadDataset(metadataPath, nil, nil); err == nil {
		t.Fatalf("非法 YAML 应报错")
	}
}

func TestRetrieveEnhancerSingleDataset(t *testing.T) {
	fake := newFakeFetcher()
	stockEnhancerFixture(t, fake, t.TempDir(), "Gasperini2019")

	client := newFakeClient(t, fake)
	datasets, err := client.RetrieveEnhancer(context.Background(), EnhancerQuery{IDs: []string{"Gasperini2019"}})
	if err != nil {
		t.Fatalf("RetrieveEnhancer 失败: %v", err)
	}
	if len(datasets) != 1 {
		t.Fatalf("应只返回请求的数据集: %v", datasets)
	}

	dataset := datasets["Gasperini2019"]
	if dataset == nil || dataset.ID != "Gasperini2019" {
		t.Fatalf("数据集缺失或 id 不符: %+v", dataset)
	}
	if len(dataset.Results) != 1 || dataset.Results[0].Len() != 3 {
		t.Fatalf("筛查结果不符: %+v", dataset.Results)
	}

	// 元数据先于数据文件检索。
	if len(fake.fetched) != 2 || !strings.HasSuffix(fake.fetched[0], "metadata.yaml") {
		t.Fatalf("检索顺序不符: %v", fake.fetched)
	}
}

func TestRetrieveEnhancerDefaultsToAllDatasets(t *testing.T) {
	fake := newFakeFetcher()
	dir := t.TempDir()
	for _, id := range ListEnhancer() {
		stockEnhancerFixture(t, fake, dir, id)
	}

	client := newFakeClient(t, fake)
	datasets, err := client.RetrieveEnhancer(context.Background(), EnhancerQuery{})
	if err != nil {
		t.Fatalf("RetrieveEnhancer 失败: %v", err)
	}
	if len(datasets) != len(ListEnhancer()) {
		t.Fatalf("未指定 id 时应返回全部数据集: %v", datasets)
	}
	for _, id := range ListEnhancer() {
		dataset, ok := datasets[id]
		if !ok || dataset.ID != id {
			t.Fatalf("缺少数据集 %s: %v", id, datasets)
		}
	}
}

func TestRetrieveEnhancerAppliesThreshold(t *testing.T) {
	fake := newFakeFetcher()
	stockEnhancerFixture(t, fake, t.TempDir(), "Nasser2021")

	client := newFakeClient(t, fake)
	datasets, err := client.RetrieveEnhancer(context.Background(), EnhancerQuery{
		IDs:    []string{"Nasser2021"},
		PValue: PValue(0.05),
	})
	if err != nil {
		t.Fatalf("RetrieveEnhancer 失败: %v", err)
	}

	labels, err := datasets["Nasser2021"].Results[0].Result.Col("label").Int()
	if err != nil {
		t.Fatalf("label 列应为整数: %v", err)
	}
	if labels[0] != 1 || labels[1] != 1 || labels[2] != 0 {
		t.Fatalf("阈值重标后 label 应为 [1 1 0], got %v", labels)
	}
}

func TestRetrieveEnhancerUnknownID(t *testing.T) {
	client := newFakeClient(t, newFakeFetcher())

	_, err := client.RetrieveEnhancer(context.Background(), EnhancerQuery{IDs: []string{"Fulco2019"}})
	var notFound *DatasetNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("未登记数据集应返回 DatasetNotFoundError, got %v", err)
	}
	if notFound.Assay != "enhancer" {
		t.Fatalf("Assay 字段不符: %+v", notFound)
	}
}
