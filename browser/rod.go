package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/gaokaodata/crawler/proxy"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// 基于go-rod的浏览器实例，一个实例可派生多个独立页面会话
type Rod struct {
	options
	browser    *rod.Browser
	controlURL string
}

type options struct {
	headless    bool
	controlURL  string // 非空时直连已有的调试端口，不再自行启动
	proxyFunc   proxy.SwitchFunc
	cookie      string
	navTimeout  time.Duration
	logger      *zap.Logger
}

var defaultRodOptions = options{
	headless:   true,
	navTimeout: 30 * time.Second,
	logger:     zap.NewNop(),
}

type RodOption func(opts *options)

func WithHeadless(headless bool) RodOption {
	return func(opts *options) {
		opts.headless = headless
	}
}

func WithControlURL(u string) RodOption {
	return func(opts *options) {
		opts.controlURL = u
	}
}

func WithProxy(p proxy.SwitchFunc) RodOption {
	return func(opts *options) {
		opts.proxyFunc = p
	}
}

func WithCookie(cookie string) RodOption {
	return func(opts *options) {
		opts.cookie = cookie
	}
}

func WithNavTimeout(d time.Duration) RodOption {
	return func(opts *options) {
		opts.navTimeout = d
	}
}

func WithLogger(logger *zap.Logger) RodOption {
	return func(opts *options) {
		opts.logger = logger
	}
}

// 启动或连接Chrome并返回浏览器实例
func NewRod(ctx context.Context, opts ...RodOption) (*Rod, error) {
	options := defaultRodOptions
	for _, opt := range opts {
		opt(&options)
	}
	r := &Rod{}
	r.options = options

	controlURL := options.controlURL
	if controlURL == "" {
		launch := launcher.New().Headless(options.headless)
		if options.proxyFunc != nil {
			p, err := options.proxyFunc()
			if err != nil {
				return nil, fmt.Errorf("get proxy: %w", err)
			}
			launch = launch.Set(flags.ProxyServer, p)
		}
		u, err := launch.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	r.browser = browser
	r.controlURL = controlURL
	r.logger.Info("browser connected", zap.String("control_url", controlURL))
	return r, nil
}

// 派生一个独立页面会话
func (r *Rod) NewDriver(ctx context.Context) (Driver, error) {
	page, err := r.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if _, err := page.SetExtraHeaders([]string{"Accept-Language", "zh-CN,zh;q=0.9"}); err != nil {
		r.logger.Warn("set headers failed", zap.Error(err))
	}
	return &rodPage{
		page:       page,
		cookie:     r.cookie,
		navTimeout: r.navTimeout,
		logger:     r.logger,
	}, nil
}

func (r *Rod) Close() error {
	if r.browser == nil {
		return nil
	}
	return r.browser.Close()
}

// 任务级Cookie包装：派生会话时用任务配置的Cookie覆盖浏览器级默认
func WithTaskCookie(base Factory, cookie string) Factory {
	if cookie == "" {
		return base
	}
	return &cookieFactory{base: base, cookie: cookie}
}

type cookieFactory struct {
	base   Factory
	cookie string
}

func (f *cookieFactory) NewDriver(ctx context.Context) (Driver, error) {
	d, err := f.base.NewDriver(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := d.(*rodPage); ok {
		p.cookie = f.cookie
	}
	return d, nil
}

// 单个页面会话上的Driver实现
type rodPage struct {
	page       *rod.Page
	cookie     string
	navTimeout time.Duration
	logger     *zap.Logger
}

func (p *rodPage) Navigate(ctx context.Context, url string) error {
	if p.cookie != "" {
		if err := p.setCookies(url); err != nil {
			p.logger.Warn("set cookies failed", zap.Error(err))
		}
	}
	page := p.page.Context(ctx).Timeout(p.navTimeout)
	if err := page.Navigate(url); err != nil {
		return err
	}
	return page.WaitLoad()
}

func (p *rodPage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := p.page.Context(ctx).Timeout(timeout).Element(selector)
	return err
}

func (p *rodPage) EvaluateInPage(ctx context.Context, js string, args ...interface{}) ([]byte, error) {
	res, err := p.page.Context(ctx).Evaluate(&rod.EvalOptions{
		JS:           js,
		JSArgs:       args,
		ByValue:      true,
		AwaitPromise: true,
	})
	if err != nil {
		return nil, err
	}
	if res == nil {
		return []byte("null"), nil
	}
	return json.Marshal(res.Value.Val())
}

func (p *rodPage) Screenshot(path string) error {
	data, err := p.page.Screenshot(false, nil)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (p *rodPage) Close() error {
	return p.page.Close()
}

// 把任务配置中的cookie串注入当前页面域
func (p *rodPage) setCookies(pageURL string) error {
	cookies, err := parseCookie(p.cookie, pageURL)
	if err != nil {
		return err
	}
	return p.page.SetCookies(cookies)
}
