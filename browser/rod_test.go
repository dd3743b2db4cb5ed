package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pageFactory struct {
	d Driver
}

func (f pageFactory) NewDriver(ctx context.Context) (Driver, error) {
	return f.d, nil
}

// 任务配置的Cookie注入到为该任务派生的会话，覆盖浏览器级默认
func TestWithTaskCookie(t *testing.T) {
	page := &rodPage{cookie: "global=1"}
	f := WithTaskCookie(pageFactory{d: page}, "JSESSIONID=abc123; route=node1")

	d, err := f.NewDriver(context.Background())
	assert.NoError(t, err)
	got, ok := d.(*rodPage)
	assert.True(t, ok)
	assert.Equal(t, "JSESSIONID=abc123; route=node1", got.cookie)
}

// 任务未配置Cookie时不包装，会话沿用浏览器级配置
func TestWithTaskCookie_Empty(t *testing.T) {
	base := pageFactory{d: &rodPage{cookie: "global=1"}}
	f := WithTaskCookie(base, "")
	assert.Equal(t, Factory(base), f)

	d, err := f.NewDriver(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "global=1", d.(*rodPage).cookie)
}
