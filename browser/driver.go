package browser

import (
	"context"
	"time"
)

// 浏览器自动化原语，遍历引擎只依赖这四个操作
// 页面是进程级的可变共享状态，同一个Driver同一时刻只能有一个遍历帧在操作
type Driver interface {
	// 跳转到目标地址并等待页面加载完成
	Navigate(ctx context.Context, url string) error
	// 在限定时间内等待选择器命中，超时返回错误
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// 在页面中执行脚本，返回结果的JSON编码
	EvaluateInPage(ctx context.Context, js string, args ...interface{}) ([]byte, error)
	// 截图保存到指定路径，仅用于诊断，失败不影响正确性
	Screenshot(path string) error
	Close() error
}

// 会话工厂，顶层分支并行时为每个分支创建独立会话
type Factory interface {
	NewDriver(ctx context.Context) (Driver, error)
}
