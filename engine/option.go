package engine

import (
	"time"

	"go.uber.org/zap"
)

type Option func(opts *options)

// 遍历引擎配置选项
type options struct {
	logger        *zap.Logger
	opTimeout     time.Duration // 单次页面操作（读选项、提交选择）的超时
	probeTimeout  time.Duration // 探测筛选控件是否存在的超时，超时视为维度缺失
	backoff       time.Duration // 选择失败重试的基础退避间隔，按次指数放大
	screenshotDir string        // 非空时分支失败截图保存目录
	onlyTop       string        // 并行模式下限定本引擎只遍历的顶层标签
}

var defaultOptions = options{
	logger:       zap.NewNop(),
	opTimeout:    10 * time.Second,
	probeTimeout: 3 * time.Second,
	backoff:      500 * time.Millisecond,
}

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithOpTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.opTimeout = d
	}
}

func WithProbeTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.probeTimeout = d
	}
}

func WithBackoff(d time.Duration) Option {
	return func(opts *options) {
		opts.backoff = d
	}
}

func WithScreenshotDir(dir string) Option {
	return func(opts *options) {
		opts.screenshotDir = dir
	}
}

func withOnlyTop(label string) Option {
	return func(opts *options) {
		opts.onlyTop = label
	}
}
