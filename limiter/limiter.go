package limiter

import (
	"context"
	"sort"
	"time"

	"golang.org/x/time/rate"
)

// 限速器接口，统一不同限速器的行为
// 页面上的每次筛选操作前都会调用Wait，避免触发站点的访问频率限制
type RateLimiter interface {
	Wait(context.Context) error
	Limit() rate.Limit
}

// 将多个限速器按速率限制从小到大排序，组合成一个多级限速器
func Multi(limiters ...RateLimiter) *multiLimiter {
	byLimit := func(i, j int) bool {
		return limiters[i].Limit() < limiters[j].Limit()
	}
	sort.Slice(limiters, byLimit)
	return &multiLimiter{limiters: limiters}
}

type multiLimiter struct {
	limiters []RateLimiter
}

// 依次等待每个限速器放行，任一限速器报错则立即返回
func (l *multiLimiter) Wait(ctx context.Context) error {
	for _, l := range l.limiters {
		if err := l.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// 返回最严格（最小）的速率限制
func (l *multiLimiter) Limit() rate.Limit {
	return l.limiters[0].Limit()
}

// 指定时间窗口内允许的事件数，换算为两个令牌之间的时间间隔
func Per(eventCount int, duration time.Duration) rate.Limit {
	return rate.Every(duration / time.Duration(eventCount))
}
