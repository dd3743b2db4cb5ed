package proxy

import (
	"errors"
	"net/url"
	"sync/atomic"
)

// 返回下一次浏览器启动应使用的代理地址
// 每个顶层分支会话启动独立的浏览器实例，轮询取用代理
type SwitchFunc func() (string, error)

type roundRobinSwitcher struct {
	proxyURLs []string
	index     uint32
}

// 按轮询顺序返回一个代理地址
func (r *roundRobinSwitcher) Next() (string, error) {
	if len(r.proxyURLs) == 0 {
		return "", errors.New("empty proxy urls")
	}
	index := atomic.AddUint32(&r.index, 1) - 1
	return r.proxyURLs[index%uint32(len(r.proxyURLs))], nil
}

// 校验传入的代理地址列表并创建轮询切换函数
func RoundRobinProxySwitcher(proxyURLs ...string) (SwitchFunc, error) {
	if len(proxyURLs) < 1 {
		return nil, errors.New("proxy URL list is empty")
	}
	for _, u := range proxyURLs {
		if _, err := url.Parse(u); err != nil {
			return nil, err
		}
	}
	return (&roundRobinSwitcher{proxyURLs: proxyURLs}).Next, nil
}
