package spider

// 存储引擎的统一规范
// 遍历引擎在每个顶层分支完成时按逻辑名落盘一批记录，结束时再落盘全量
type DataRepository interface {
	Save(name string, records ...*Record) error
}

// 组合多个存储后端，依次写入，任一失败继续写其余后端后返回首个错误
type MultiRepository []DataRepository

func (m MultiRepository) Save(name string, records ...*Record) error {
	var first error
	for _, repo := range m {
		if err := repo.Save(name, records...); err != nil && first == nil {
			first = err
		}
	}
	return first
}
