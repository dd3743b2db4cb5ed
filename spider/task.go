package spider

import (
	"time"

	"github.com/gaokaodata/crawler/limiter"
	"go.uber.org/zap"
)

// config.toml中一条任务的配置
type TaskConfig struct {
	Name          string
	School        string
	Cookie        string
	WaitTime      int64
	SettleTimeout int64 // 毫秒
	Retry         int
	Parallel      int // 顶层分支并行会话数，0或1为串行
	Limits        []LimitConfig
}

type LimitConfig struct {
	EventCount int
	EventDur   int // 秒
	Bucket     int // 桶大小
}

// 科类到专业组的等价推断规则，仅在表格和筛选链都没有给出专业组时使用
// 这是站点沿用的启发式映射，不保证对所有年份省份成立，可通过WithGroupRules覆盖
var DefaultGroupRules = map[string]string{
	"综合改革": "物理组",
	"理科":   "理工",
	"文科":   "文史",
}

// 一个院校采集任务：入口页面、筛选维度定义、启用的表格布局及运行策略
type Task struct {
	Options
}

// 根据传入的配置创建一个任务实例
func NewTask(opts ...Option) *Task {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	t := &Task{}
	t.Options = options
	return t
}

func (t *Task) Logger() *zap.Logger {
	return t.logger
}

// 注册表里的任务定义在运行前由命令行注入日志器
func (t *Task) SetLogger(logger *zap.Logger) {
	t.logger = logger
}

type Options struct {
	Name          string        `json:"name"`   // 任务名称，应保证唯一性
	School        string        `json:"school"` // 院校名称，写入每条记录
	URL           string        `json:"url"`    // 查询页入口
	Cookie        string        `json:"cookie"`
	WaitTime      int64         `json:"wait_time"` // 每次筛选操作后的随机休眠上限，秒
	Facets        FacetSpec     // 筛选维度定义，顺序即下探顺序
	Layouts       []string      // 该站点可能出现的表格布局tag，空表示全部已注册布局
	GroupRules    map[string]string
	ResultJS      string        // 返回结果区域outerHTML的页面脚本
	ResultXPath   string        // 非空时先用XPath从整页定位结果容器，再做布局识别
	SettleJS      string        // 判断筛选联动是否完成的页面脚本，返回布尔值
	SettleTimeout time.Duration // 等待联动稳定的上限
	Retry         int           // 单个选项选择失败的重试次数
	Parallel      int           // 顶层分支并行会话数
	Storage       DataRepository
	Limit         limiter.RateLimiter
	logger        *zap.Logger
}

var defaultOptions = Options{
	logger:        zap.NewNop(),
	WaitTime:      2,
	SettleTimeout: 10 * time.Second,
	Retry:         2,
	GroupRules:    DefaultGroupRules,
}

type Option func(opts *Options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.logger = logger
	}
}

func WithName(name string) Option {
	return func(opts *Options) {
		opts.Name = name
	}
}

func WithSchool(school string) Option {
	return func(opts *Options) {
		opts.School = school
	}
}

func WithURL(url string) Option {
	return func(opts *Options) {
		opts.URL = url
	}
}

func WithCookie(cookie string) Option {
	return func(opts *Options) {
		opts.Cookie = cookie
	}
}

func WithWaitTime(waitTime int64) Option {
	return func(opts *Options) {
		opts.WaitTime = waitTime
	}
}

func WithFacets(facets FacetSpec) Option {
	return func(opts *Options) {
		opts.Facets = facets
	}
}

func WithLayouts(layouts ...string) Option {
	return func(opts *Options) {
		opts.Layouts = layouts
	}
}

func WithGroupRules(rules map[string]string) Option {
	return func(opts *Options) {
		opts.GroupRules = rules
	}
}

func WithResultJS(js string) Option {
	return func(opts *Options) {
		opts.ResultJS = js
	}
}

func WithResultXPath(xpath string) Option {
	return func(opts *Options) {
		opts.ResultXPath = xpath
	}
}

func WithSettleJS(js string) Option {
	return func(opts *Options) {
		opts.SettleJS = js
	}
}

func WithSettleTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.SettleTimeout = timeout
	}
}

func WithRetry(retry int) Option {
	return func(opts *Options) {
		opts.Retry = retry
	}
}

func WithParallel(parallel int) Option {
	return func(opts *Options) {
		opts.Parallel = parallel
	}
}

func WithStorage(s DataRepository) Option {
	return func(opts *Options) {
		opts.Storage = s
	}
}

func WithLimit(l limiter.RateLimiter) Option {
	return func(opts *Options) {
		opts.Limit = l
	}
}
