package regbench

import (
	"context"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// enhancerSource 登记一个筛查数据集的元数据文件与数据文件。Name 是
// 元数据 data 段使用的逻辑文件名，DataFile 是内容仓注册表里的条目名。
type enhancerSource struct {
	metadataFile string
	data         []enhancerFile
}

type enhancerFile struct {
	name     string
	dataFile string
}

var enhancerRegistry = newDatasetRegistry[enhancerSource]("enhancer")

func init() {
	enhancerRegistry.mustRegister("Gasperini2019", enhancerSource{
		metadataFile: "Gasperini_2019_Cell_metadata.yaml",
		data: []enhancerFile{
			{name: "Gasperini2019.tsv.gz", dataFile: "Gasperini_2019_Cell_Gasperini2019.tsv.gz"},
		},
	})
	enhancerRegistry.mustRegister("Nasser2021", enhancerSource{
		metadataFile: "Nasser_2021_Nature_metadata.yaml",
		data: []enhancerFile{
			{name: "Nasser2021.tsv.gz", dataFile: "Nasser_2021_Nature_Nasser2021.tsv.gz"},
		},
	})
	enhancerRegistry.mustRegister("Schraivogel2020", enhancerSource{
		metadataFile: "Schraivogel_2020_NatMethods_metadata.yaml",
		data: []enhancerFile{
			{name: "Schraivogel2020.tsv.gz", dataFile: "Schraivogel_2020_NatMethods_Schraivogel2020.tsv.gz"},
		},
	})
}

// ListEnhancer lists all available enhancer-screening dataset ids.
func ListEnhancer() []string {
	return enhancerRegistry.list()
}

// EnhancerQuery selects enhancer datasets to retrieve. Empty IDs means every
// registered dataset. A non-nil PValue recomputes each result's label column
// from adjusted_p_value at that threshold; nil passes source labels through.
type EnhancerQuery struct {
	IDs    []string
	PValue *float64
}

// PValue 是在 EnhancerQuery 与 LoadDataset 中内联阈值字面量的辅助函数。
func PValue(v float64) *float64 {
	return &v
}

// RetrieveEnhancer fetches and parses the selected enhancer-screening
// datasets, returning them keyed by dataset id.
func (c *Client) RetrieveEnhancer(ctx context.Context, q EnhancerQuery) (map[string]*Dataset, error) {
	ids := q.IDs
	if len(ids) == 0 {
		ids = ListEnhancer()
	}

	datasets := make(map[string]*Dataset, len(ids))
	for _, id := range ids {
		source, err := enhancerRegistry.lookup(id)
		if err != nil {
			return nil, err
		}

		metadataPath, err := c.fetcher.Fetch(ctx, source.metadataFile)
		if err != nil {
			return nil, err
		}

		files := make([]DataFile, 0, len(source.data))
		for _, d := range source.data {
			path, err := c.fetcher.Fetch(ctx, d.dataFile)
			if err != nil {
				return nil, err
			}
			files = append(files, DataFile{Name: d.name, Path: path})
		}

		dataset, err := LoadDataset(metadataPath, files, q.PValue)
		if err != nil {
			return nil, fmt.Errorf("load dataset %s: %w", id, err)
		}
		datasets[id] = dataset
	}
	return datasets, nil
}

// Dataset is a named collection of screening results sharing a publication.
type Dataset struct {
	ID      string
	Results []*ScreeningResult
}

// DataFile pairs a logical file name (as referenced by the metadata
// descriptor) with the local path of the fetched file.
type DataFile struct {
	Name string
	Path string
}

// datasetMetadata 对应元数据 YAML 的顶层结构。
type datasetMetadata struct {
	ID   string             `yaml:"id"`
	Data []sampleDescriptor `yaml:"data"`
}

// sampleDescriptor 描述单个数据文件的样本属性。
type sampleDescriptor struct {
	File         string `yaml:"file"`
	SampleTermID string `yaml:"sample_term_id"`
	SampleName   string `yaml:"sample_name"`
	Assembly     string `yaml:"assembly"`
}

// LoadDataset reads a YAML metadata descriptor and parses each data file
// into a ScreeningResult carrying the sample attributes of its descriptor
// entry. A data file whose logical name is absent from the descriptor fails
// the whole load. pValue is forwarded to the table parser (see
// EnhancerQuery).
func LoadDataset(metadataPath string, files []DataFile, pValue *float64) (*Dataset, error) {
	f, err := os.Open(metadataPath)
	if err != nil {
		return nil, fmt.Errorf("open metadata: %w", err)
	}
	defer f.Close()

	var metadata datasetMetadata
	if err := yaml.NewDecoder(f).Decode(&metadata); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", metadataPath, err)
	}

	descriptors := make(map[string]sampleDescriptor, len(metadata.Data))
	for _, d := range metadata.Data {
		descriptors[d.File] = d
	}

	results := make([]*ScreeningResult, 0, len(files))
	for _, file := range files {
		info, ok := descriptors[file.Name]
		if !ok {
			return nil, fmt.Errorf("file %s not found in metadata", file.Name)
		}

		table, err := readScreeningTable(file.Path, pValue)
		if err != nil {
			return nil, err
		}
		results = append(results, &ScreeningResult{
			SampleTermID: info.SampleTermID,
			SampleName:   info.SampleName,
			Assembly:     info.Assembly,
			Result:       table,
		})
	}

	return &Dataset{ID: metadata.ID, Results: results}, nil
}
