package browser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// 将请求头风格的cookie串解析为rod的cookie参数，域取自页面地址
func parseCookie(cookie, pageURL string) ([]*proto.NetworkCookieParam, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}
	var params []*proto.NetworkCookieParam
	for _, pair := range strings.Split(cookie, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		params = append(params, &proto.NetworkCookieParam{
			Name:   strings.TrimSpace(name),
			Value:  strings.TrimSpace(value),
			Domain: u.Hostname(),
			Path:   "/",
		})
	}
	return params, nil
}
