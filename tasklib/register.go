package tasklib

import (
	"github.com/gaokaodata/crawler/tasklib/bit"
	"github.com/gaokaodata/crawler/tasklib/hitjs"
	"github.com/gaokaodata/crawler/tasklib/nankai"
	"go.uber.org/zap"
)

func init() {
	Store.Add(bit.Task)
	Store.Add(nankai.Task)
	if err := Store.AddJSPortal(hitjs.Portal); err != nil {
		zap.S().Errorw("register js portal failed", "name", hitjs.Portal.Name, "error", err)
	}
}
