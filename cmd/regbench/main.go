package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	regbench "github.com/regulatory-genomics/regbench-data"
	"github.com/regulatory-genomics/regbench-data/internal/config"
	"github.com/regulatory-genomics/regbench-data/internal/logging"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	verb        string
	assay       string
	ids         []string
	pValue      *float64
	genomeName  string
	annotation  bool
	configPath  string
	checkOnly   bool
	showVersion bool
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(stdErr, "加载配置失败: %v\n", err)
		return 1
	}

	logger, err := logging.InitLogger(*cfg)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化日志失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		fields["cache_dir"] = cfg.CacheDir
		fields["base_url"] = cfg.BaseURL
		fields["result"] = "ok"
		logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	switch opts.verb {
	case "list":
		return runList(opts)
	case "retrieve":
		return runRetrieve(opts, cfg, logger)
	case "genome":
		return runGenome(opts, cfg, logger)
	default:
		fmt.Fprintln(stdErr, "用法: regbench <list|retrieve|genome> [flags]")
		return 2
	}
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
// 首个非 flag 参数视为子命令；无子命令时仅支持 -version / -check-config。
func parseCLIFlags(args []string) (cliOptions, error) {
	verb := ""
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		verb = args[0]
		args = args[1:]
	}
	switch verb {
	case "", "list", "retrieve", "genome":
	default:
		return cliOptions{}, fmt.Errorf("未知子命令 %q（可用: list, retrieve, genome）", verb)
	}

	fs := flag.NewFlagSet("regbench", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
		assay      string
		idsFlag    string
		pValueFlag float64
		name       string
		annotation bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认纯内置配置，可被 REGBENCH_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")
	fs.StringVar(&assay, "assay", "", "检测类型: cage|rna|eqtl|enhancer|genome")
	fs.StringVar(&idsFlag, "id", "", "数据集 id，逗号分隔")
	fs.Float64Var(&pValueFlag, "p-value", 0, "显著性阈值，按 adjusted_p_value 重算 label 列")
	fs.StringVar(&name, "name", "", "基因组组装名，如 GRCh38")
	fs.BoolVar(&annotation, "annotation", false, "获取注释 (GFF3) 而非序列 (FASTA)")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	var pValue *float64
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "p-value" {
			pValue = &pValueFlag
		}
	})

	path := os.Getenv("REGBENCH_CONFIG")
	if configFlag != "" {
		path = configFlag
	}

	var ids []string
	for _, raw := range strings.Split(idsFlag, ",") {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, id)
		}
	}

	return cliOptions{
		verb:        verb,
		assay:       assay,
		ids:         ids,
		pValue:      pValue,
		genomeName:  name,
		annotation:  annotation,
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}, nil
}

// listFuncs 固定各检测类型的枚举顺序，保证输出稳定。
var listFuncs = []struct {
	assay string
	list  func() []string
}{
	{"cage", regbench.ListCAGE},
	{"rna", regbench.ListRNA},
	{"eqtl", regbench.ListEQTL},
	{"enhancer", regbench.ListEnhancer},
	{"genome", regbench.ListGenomes},
}

// runList 离线枚举数据集 id，不构造检索客户端。
func runList(opts cliOptions) int {
	matched := false
	for _, entry := range listFuncs {
		if opts.assay != "" && opts.assay != entry.assay {
			continue
		}
		matched = true
		for _, id := range entry.list() {
			fmt.Fprintf(stdOut, "%s\t%s\n", entry.assay, id)
		}
	}
	if !matched {
		fmt.Fprintf(stdErr, "未知检测类型: %s\n", opts.assay)
		return 2
	}
	return 0
}

func runRetrieve(opts cliOptions, cfg *config.Config, logger *logrus.Logger) int {
	if opts.assay == "" {
		fmt.Fprintln(stdErr, "retrieve 需要 -assay")
		return 2
	}
	if opts.assay != "enhancer" && len(opts.ids) == 0 {
		fmt.Fprintln(stdErr, "retrieve 需要 -id")
		return 2
	}

	client, renderer, err := buildClient(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建检索客户端失败: %v\n", err)
		return 1
	}
	defer renderer.Close()

	ctx := context.Background()
	switch opts.assay {
	case "cage", "rna":
		var tracks map[string]regbench.StrandedTracks
		if opts.assay == "cage" {
			tracks, err = client.RetrieveCAGE(ctx, opts.ids...)
		} else {
			tracks, err = client.RetrieveRNA(ctx, opts.ids...)
		}
		if err != nil {
			fmt.Fprintf(stdErr, "检索失败: %v\n", err)
			return 1
		}
		renderer.Close()
		for _, id := range opts.ids {
			pair := tracks[id]
			fmt.Fprintf(stdOut, "%s\tplus=%s\tminus=%s\n", id, pair.Plus, pair.Minus)
		}
	case "eqtl":
		datasets, err := client.RetrieveEQTL(ctx, opts.ids...)
		if err != nil {
			fmt.Fprintf(stdErr, "检索失败: %v\n", err)
			return 1
		}
		renderer.Close()
		for _, id := range opts.ids {
			fmt.Fprintf(stdOut, "%s\t%d records\n", id, len(datasets[id]))
		}
	case "enhancer":
		datasets, err := client.RetrieveEnhancer(ctx, regbench.EnhancerQuery{IDs: opts.ids, PValue: opts.pValue})
		if err != nil {
			fmt.Fprintf(stdErr, "检索失败: %v\n", err)
			return 1
		}
		renderer.Close()
		ids := opts.ids
		if len(ids) == 0 {
			ids = regbench.ListEnhancer()
		}
		for _, id := range ids {
			dataset := datasets[id]
			fmt.Fprintf(stdOut, "Dataset %s: %d results\n", dataset.ID, len(dataset.Results))
			for _, result := range dataset.Results {
				counts, err := result.LabelCounts()
				if err != nil {
					fmt.Fprintf(stdErr, "统计标签失败: %v\n", err)
					return 1
				}
				fmt.Fprintf(stdOut, "  sample=%s labels=%s\n", result.SampleName, formatLabelCounts(counts))
			}
		}
	default:
		fmt.Fprintf(stdErr, "未知检测类型: %s\n", opts.assay)
		return 2
	}
	return 0
}

func runGenome(opts cliOptions, cfg *config.Config, logger *logrus.Logger) int {
	if opts.genomeName == "" {
		fmt.Fprintln(stdErr, "genome 需要 -name")
		return 2
	}

	client, renderer, err := buildClient(cfg, logger)
	if err != nil {
		fmt.Fprintf(stdErr, "构建检索客户端失败: %v\n", err)
		return 1
	}
	defer renderer.Close()

	ctx := context.Background()
	var path string
	if opts.annotation {
		path, err = client.FetchGenomeAnnotation(ctx, opts.genomeName)
	} else {
		path, err = client.FetchGenomeFASTA(ctx, opts.genomeName)
	}
	if err != nil {
		fmt.Fprintf(stdErr, "获取基因组失败: %v\n", err)
		return 1
	}
	renderer.Close()
	fmt.Fprintln(stdOut, path)
	return 0
}

// buildClient 按配置组装检索客户端；进度条仅在 ShowProgress 打开时接入。
func buildClient(cfg *config.Config, logger *logrus.Logger) (*regbench.Client, *progressRenderer, error) {
	renderer := newProgressRenderer(stdOut, cfg.ShowProgress)

	clientOpts := regbench.Options{
		CacheDir:        cfg.CacheDir,
		BaseURL:         cfg.BaseURL,
		DownloadTimeout: cfg.DownloadTimeout.DurationValue(),
		Logger:          logger,
	}
	if cfg.ShowProgress {
		clientOpts.Progress = renderer.Update
	}

	client, err := regbench.New(clientOpts)
	if err != nil {
		return nil, nil, err
	}
	return client, renderer, nil
}

// formatLabelCounts 将标签计数渲染为 "0:1500 1:320" 形式。
func formatLabelCounts(counts []regbench.LabelCount) string {
	if len(counts) == 0 {
		return "-"
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d:%d", c.Label, c.Count)
	}
	return strings.Join(parts, " ")
}
