package extract

// 扫描件抽取通道的命令行入口：读取视觉模型导出的CSV文本，
// 修复、归一化后走与在线采集相同的存储后端

import (
	"context"

	"github.com/gaokaodata/crawler/extractor"
	"github.com/gaokaodata/crawler/log"
	"github.com/gaokaodata/crawler/spider"
	"github.com/gaokaodata/crawler/storage/jsonstorage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "ingest extracted records from scanned score tables.",
	Long:  "ingest extracted records from scanned score tables.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		Run()
	},
}

func init() {
	ExtractCmd.Flags().StringVar(&inputFile, "file", "", "extractor output file (csv lines)")
	ExtractCmd.Flags().StringVar(&school, "school", "", "school name for all records")
	ExtractCmd.Flags().StringVar(&year, "year", "", "admission year")
	ExtractCmd.Flags().StringVar(&province, "province", "", "province")
	ExtractCmd.Flags().StringVar(&outputDir, "out", "output", "output directory")
	ExtractCmd.MarkFlagRequired("file")
	ExtractCmd.MarkFlagRequired("school")
}

var inputFile string
var school string
var year string
var province string
var outputDir string

func Run() {
	plugin := log.NewStdoutPlugin(zapcore.InfoLevel)
	logger := log.NewLogger(plugin)
	zap.ReplaceGlobals(logger)

	storage, err := jsonstorage.New(
		jsonstorage.WithDir(outputDir),
		jsonstorage.WithLogger(logger.Named("jsonstorage")),
	)
	if err != nil {
		logger.Error("create storage failed", zap.Error(err))
		return
	}

	meta := extractor.Meta{School: school, Year: year, Province: province}
	records, err := extractor.Ingest(context.Background(),
		extractor.NewFileSource(inputFile), nil, meta, spider.DefaultGroupRules)
	if err != nil {
		logger.Error("ingest failed", zap.String("file", inputFile), zap.Error(err))
		return
	}

	name := school
	if year != "" {
		name += "-" + year
	}
	if err := storage.Save(name, records...); err != nil {
		logger.Error("save failed", zap.Error(err))
		return
	}
	logger.Info("extract finished",
		zap.String("file", inputFile),
		zap.Int("records", len(records)),
	)
}
