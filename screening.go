package regbench

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// 筛查表的固定列。chrom_start/chrom_end/gene_TSS 在源数据中为无符号坐标，
// 引擎侧用有符号 int 表示，人类基因组坐标远在安全范围内。
var screeningColumns = []string{
	"chrom",
	"chrom_start",
	"chrom_end",
	"gene_symbol",
	"gene_chrom",
	"gene_TSS",
	"label",
	"effect_size",
	"adjusted_p_value",
}

var screeningTypes = map[string]series.Type{
	"chrom":            series.String,
	"chrom_start":      series.Int,
	"chrom_end":        series.Int,
	"gene_symbol":      series.String,
	"gene_chrom":       series.String,
	"gene_TSS":         series.Int,
	"label":            series.Int,
	"effect_size":      series.Float,
	"adjusted_p_value": series.Float,
}

// missingToken 在 effect_size / adjusted_p_value 列中表示缺失值。
const missingToken = "NA"

// 缺失值只允许出现在两列度量中；其余列带缺失视为损坏的输入。
var nullableScreeningColumns = map[string]bool{
	"effect_size":      true,
	"adjusted_p_value": true,
}

// ScreeningResult is one sample's parsed enhancer-screening table plus the
// identifying metadata from its dataset descriptor. The identity fields are
// fixed at construction; Result holds the fixed-schema table:
//
//	chrom          string  candidate element chromosome
//	chrom_start    int     candidate element start
//	chrom_end      int     candidate element end
//	gene_symbol    string  tested gene
//	gene_chrom     string  gene chromosome
//	gene_TSS       int     gene transcription start site
//	label          int     1 = significant regulatory pair, 0 = not
//	effect_size    float   NaN when the screen reported "NA"
//	adjusted_p_value float NaN when the screen reported "NA"
//
// Only effect_size and adjusted_p_value may carry missing values; parsing
// fails when any other column does.
type ScreeningResult struct {
	SampleTermID string
	SampleName   string
	Assembly     string
	Result       dataframe.DataFrame
}

// Len returns the number of element-gene pairs in the result table.
func (r *ScreeningResult) Len() int {
	return r.Result.Nrow()
}

// LabelCount pairs a label value with the number of rows carrying it.
type LabelCount struct {
	Label int
	Count int
}

// LabelCounts tallies rows per label value, sorted by label ascending. It
// fails when the label column cannot be read as integers.
func (r *ScreeningResult) LabelCounts() ([]LabelCount, error) {
	labels, err := r.Result.Col("label").Int()
	if err != nil {
		return nil, fmt.Errorf("label column: %w", err)
	}

	counts := make(map[int]int)
	for _, label := range labels {
		counts[label]++
	}

	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

// DistanceToTSS returns, per row, the absolute distance from the candidate
// element's midpoint to the gene's transcription start site.
func (r *ScreeningResult) DistanceToTSS() []float64 {
	starts := r.Result.Col("chrom_start").Float()
	ends := r.Result.Col("chrom_end").Float()
	tss := r.Result.Col("gene_TSS").Float()

	out := make([]float64, len(starts))
	for i := range starts {
		out[i] = math.Abs((starts[i]+ends[i])/2 - tss[i])
	}
	return out
}

// readScreeningTable 把一个制表符分隔的筛查表解析为固定模式的 DataFrame。
// 路径以 .gz 结尾时先透明解压；字面量 NA 仅在 effect_size 与
// adjusted_p_value 中映射为 NaN，其余列出现缺失值直接报错。pValue 非空时
// 按阈值重算 label 列。
func readScreeningTable(path string, pValue *float64) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open screening table: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("decompress screening table %s: %w", path, err)
		}
		defer gz.Close()
		reader = gz
	}

	df := dataframe.ReadCSV(reader,
		dataframe.WithDelimiter('\t'),
		dataframe.HasHeader(true),
		dataframe.WithTypes(screeningTypes),
		dataframe.NaNValues([]string{missingToken}),
	)
	if df.Err != nil {
		return df, fmt.Errorf("parse screening table %s: %w", path, df.Err)
	}

	if err := checkScreeningColumns(df); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("screening table %s: %w", path, err)
	}

	if pValue != nil {
		df = relabelByPValue(df, *pValue)
		if df.Err != nil {
			return df, fmt.Errorf("relabel screening table %s: %w", path, df.Err)
		}
	}
	return df, nil
}

// checkScreeningColumns 校验固定列齐全，且缺失值只出现在允许的两列，
// 违例时报错并点名。
func checkScreeningColumns(df dataframe.DataFrame) error {
	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range screeningColumns {
		if !present[name] {
			return fmt.Errorf("missing column %s", name)
		}
		if !nullableScreeningColumns[name] && df.Col(name).HasNaN() {
			return fmt.Errorf("column %s contains missing values", name)
		}
	}
	return nil
}

// relabelByPValue 以显著性阈值重算 label：adjusted_p_value ≤ threshold 记 1，
// 否则（包括缺失）记 0，覆盖源数据原有的 label。
func relabelByPValue(df dataframe.DataFrame, threshold float64) dataframe.DataFrame {
	adjusted := df.Col("adjusted_p_value").Float()
	labels := make([]int, len(adjusted))
	for i, v := range adjusted {
		if !math.IsNaN(v) && v <= threshold {
			labels[i] = 1
		}
	}
	return df.Mutate(series.New(labels, series.Int, "label"))
}

// Concatenate stacks the tables of two or more screening results in input
// order. All inputs must share the same sample_term_id, sample_name, and
// assembly; the first mismatching field fails the call. Inputs are left
// unmodified.
func Concatenate(results ...*ScreeningResult) (*ScreeningResult, error) {
	if len(results) == 0 {
		return nil, errors.New("no results to concatenate")
	}

	first := results[0]
	for _, r := range results[1:] {
		switch {
		case r.SampleTermID != first.SampleTermID:
			return nil, fmt.Errorf("concatenate: sample_term_id mismatch: %q vs %q", first.SampleTermID, r.SampleTermID)
		case r.SampleName != first.SampleName:
			return nil, fmt.Errorf("concatenate: sample_name mismatch: %q vs %q", first.SampleName, r.SampleName)
		case r.Assembly != first.Assembly:
			return nil, fmt.Errorf("concatenate: assembly mismatch: %q vs %q", first.Assembly, r.Assembly)
		}
	}

	combined := first.Result.Copy()
	for _, r := range results[1:] {
		combined = combined.RBind(r.Result)
		if combined.Err != nil {
			return nil, fmt.Errorf("concatenate: %w", combined.Err)
		}
	}

	return &ScreeningResult{
		SampleTermID: first.SampleTermID,
		SampleName:   first.SampleName,
		Assembly:     first.Assembly,
		Result:       combined,
	}, nil
}

// TaggedResult associates a screening result with a provenance key for
// ConcatenateTagged.
type TaggedResult struct {
	Source string
	Result *ScreeningResult
}

// ConcatenateTagged behaves like Concatenate but first adds a "source"
// column to each input's table, filled with that input's key, so rows stay
// attributable after stacking. Input tables are copied, not mutated.
func ConcatenateTagged(results ...TaggedResult) (*ScreeningResult, error) {
	if len(results) == 0 {
		return nil, errors.New("no results to concatenate")
	}

	tagged := make([]*ScreeningResult, len(results))
	for i, tr := range results {
		table := tr.Result.Result
		source := make([]string, table.Nrow())
		for j := range source {
			source[j] = tr.Source
		}
		table = table.Mutate(series.New(source, series.String, "source"))
		if table.Err != nil {
			return nil, fmt.Errorf("concatenate: tag source %q: %w", tr.Source, table.Err)
		}
		tagged[i] = &ScreeningResult{
			SampleTermID: tr.Result.SampleTermID,
			SampleName:   tr.Result.SampleName,
			Assembly:     tr.Result.Assembly,
			Result:       table,
		}
	}
	return Concatenate(tagged...)
}
