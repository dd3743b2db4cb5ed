package scrape

import (
	"context"
	"time"

	"github.com/gaokaodata/crawler/browser"
	"github.com/gaokaodata/crawler/engine"
	"github.com/gaokaodata/crawler/limiter"
	"github.com/gaokaodata/crawler/log"
	"github.com/gaokaodata/crawler/proxy"
	"github.com/gaokaodata/crawler/spider"
	"github.com/gaokaodata/crawler/storage/excelstorage"
	"github.com/gaokaodata/crawler/storage/jsonstorage"
	"github.com/gaokaodata/crawler/storage/sqlstorage"
	"github.com/gaokaodata/crawler/tasklib"
	"github.com/go-micro/plugins/v4/config/encoder/toml"
	"github.com/spf13/cobra"
	"go-micro.dev/v4/config"
	"go-micro.dev/v4/config/reader"
	"go-micro.dev/v4/config/reader/json"
	"go-micro.dev/v4/config/source"
	"go-micro.dev/v4/config/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

var ScrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "run score crawling tasks.",
	Long:  "run score crawling tasks.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		Run()
	},
}

func init() {
	ScrapeCmd.Flags().StringVar(
		&configPath, "config", "config.toml", "set config file path")
	ScrapeCmd.Flags().StringVar(
		&onlyTask, "task", "", "run only the named task")
}

var configPath string
var onlyTask string

func Run() {
	// 通过toml加载配置
	enc := toml.NewEncoder()
	cfg, err := config.NewConfig(config.WithReader(json.NewReader(reader.WithEncoder(enc))))
	if err != nil {
		panic(err)
	}
	if err := cfg.Load(file.NewSource(
		file.WithPath(configPath),
		source.WithEncoder(enc),
	)); err != nil {
		panic(err)
	}

	// log
	logText := cfg.Get("logLevel").String("INFO")
	logLevel, err := zapcore.ParseLevel(logText)
	if err != nil {
		panic(err)
	}
	plugin := log.NewStdoutPlugin(logLevel)
	logger := log.NewLogger(plugin)
	logger.Info("log init end")
	zap.ReplaceGlobals(logger)

	// 浏览器配置
	proxyURLs := cfg.Get("browser", "proxy").StringSlice([]string{})
	navTimeout := cfg.Get("browser", "timeout").Int(30000)
	headless := cfg.Get("browser", "headless").Bool(true)
	controlURL := cfg.Get("browser", "controlURL").String("")

	var p proxy.SwitchFunc
	if len(proxyURLs) > 0 {
		if p, err = proxy.RoundRobinProxySwitcher(proxyURLs...); err != nil {
			logger.Error("RoundRobinProxySwitcher failed", zap.Error(err))
		}
	}

	ctx := context.Background()
	rodBrowser, err := browser.NewRod(ctx,
		browser.WithHeadless(headless),
		browser.WithControlURL(controlURL),
		browser.WithProxy(p),
		browser.WithNavTimeout(time.Duration(navTimeout)*time.Millisecond),
		browser.WithLogger(logger.Named("browser")),
	)
	if err != nil {
		logger.Error("create browser failed", zap.Error(err))
		return
	}
	defer rodBrowser.Close()

	// 存储器配置
	storage, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("create storage failed", zap.Error(err))
		return
	}

	// 初始化任务
	var tcfg []spider.TaskConfig
	if err := cfg.Get("Tasks").Scan(&tcfg); err != nil {
		logger.Error("init tasks", zap.Error(err))
	}
	tasks := ParseTaskConfig(logger, storage, tcfg)

	screenshotDir := cfg.Get("browser", "screenshotDir").String("")
	for _, t := range tasks {
		if onlyTask != "" && t.Name != onlyTask {
			continue
		}
		agg := engine.NewAggregator(t.Name, t.Storage, logger.Named("aggregator"))
		err := engine.RunParallel(ctx, t, browser.WithTaskCookie(rodBrowser, t.Cookie), agg,
			engine.WithLogger(logger.Named(t.Name)),
			engine.WithScreenshotDir(screenshotDir),
		)
		if err != nil {
			logger.Error("task aborted",
				zap.String("task", t.Name),
				zap.Int("records", agg.Total()),
				zap.Error(err),
			)
			continue
		}
		logger.Info("task finished",
			zap.String("task", t.Name),
			zap.Int("records", agg.Total()),
		)
	}
}

// 按配置组合启用的存储后端
func buildStorage(cfg config.Config, logger *zap.Logger) (spider.DataRepository, error) {
	backends := cfg.Get("storage", "backends").StringSlice([]string{"json"})

	var repos spider.MultiRepository
	for _, b := range backends {
		switch b {
		case "json":
			s, err := jsonstorage.New(
				jsonstorage.WithDir(cfg.Get("storage", "outputDir").String("output")),
				jsonstorage.WithLogger(logger.Named("jsonstorage")),
			)
			if err != nil {
				return nil, err
			}
			repos = append(repos, s)
		case "excel":
			s, err := excelstorage.New(
				excelstorage.WithPath(cfg.Get("storage", "excelPath").String("output/records.xlsx")),
				excelstorage.WithLogger(logger.Named("excelstorage")),
			)
			if err != nil {
				return nil, err
			}
			repos = append(repos, s)
		case "sql":
			s, err := sqlstorage.New(
				sqlstorage.WithSQLURL(cfg.Get("storage", "sqlURL").String("")),
				sqlstorage.WithLogger(logger.Named("sqlstorage")),
				sqlstorage.WithBatchCount(cfg.Get("storage", "batchCount").Int(100)),
			)
			if err != nil {
				return nil, err
			}
			repos = append(repos, s)
		default:
			logger.Warn("unknown storage backend", zap.String("backend", b))
		}
	}
	return repos, nil
}

// 把配置文件中的任务配置套用到已注册的门户定义上，返回可运行的任务列表
func ParseTaskConfig(logger *zap.Logger, s spider.DataRepository, cfgs []spider.TaskConfig) []*spider.Task {
	tasks := make([]*spider.Task, 0, len(cfgs))
	for _, cfg := range cfgs {
		t, ok := tasklib.Store.Get(cfg.Name)
		if !ok {
			logger.Error("task not registered", zap.String("name", cfg.Name))
			continue
		}
		t.SetLogger(logger)
		t.Storage = s

		if cfg.School != "" {
			t.School = cfg.School
		}
		if cfg.Cookie != "" {
			t.Cookie = cfg.Cookie
		}
		if cfg.WaitTime > 0 {
			t.WaitTime = cfg.WaitTime
		}
		if cfg.SettleTimeout > 0 {
			t.SettleTimeout = time.Duration(cfg.SettleTimeout) * time.Millisecond
		}
		if cfg.Retry > 0 {
			t.Retry = cfg.Retry
		}
		if cfg.Parallel > 0 {
			t.Parallel = cfg.Parallel
		}

		var limits []limiter.RateLimiter
		if len(cfg.Limits) > 0 {
			for _, lcfg := range cfg.Limits {
				bucket := lcfg.Bucket
				if bucket <= 0 {
					bucket = 1
				}
				l := rate.NewLimiter(limiter.Per(lcfg.EventCount, time.Duration(lcfg.EventDur)*time.Second), bucket)
				limits = append(limits, l)
			}
			t.Limit = limiter.Multi(limits...)
		}
		tasks = append(tasks, t)
	}
	return tasks
}
