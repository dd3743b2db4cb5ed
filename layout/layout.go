package layout

// 表格布局注册表
// 每种布局是一组必需表头加一张表头到规范字段的映射表，新院校的新表格形态
// 通过注册新布局接入，不在遍历核心里做分支

const (
	TagGeneral = "general" // 普通批次汇总表，按省份/科类一行
	TagByMajor = "byMajor" // 分专业明细表，按专业一行
	TagUnknown = "unknown" // 未识别布局，按列位置做尽力映射的降级模式
)

type Layout struct {
	Tag      string
	Headers  map[string]string // 表头文本→规范字段名
	Required []string          // 全部命中才算识别成功
	MinCells int               // 少于该列数的行直接跳过
}

var (
	list []*Layout
	hash = map[string]*Layout{}
)

// 注册一种表格布局，识别时按注册顺序尝试，先完全匹配者生效
func Register(l *Layout) {
	hash[l.Tag] = l
	list = append(list, l)
}

func Get(tag string) (*Layout, bool) {
	l, ok := hash[tag]
	return l, ok
}

// 未识别布局下按列位置猜测的字段顺序，是各站点明细表共有的前缀形态
var positionalFields = []string{"major", "lowestScore", "highestScore", "lowestRank", "specialtyGroup"}

var unknownLayout = &Layout{
	Tag:      TagUnknown,
	Headers:  map[string]string{},
	MinCells: 2,
}

func init() {
	Register(&Layout{
		Tag: TagGeneral,
		Headers: map[string]string{
			"年份":   "year",
			"省份":   "province",
			"校区":   "campus",
			"科类":   "category",
			"批次":   "admissionType",
			"录取批次": "admissionType",
			"招生类型": "admissionType",
			"计划数":  "plannedCount",
			"录取数":  "admittedCount",
			"最低分":  "lowestScore",
			"最高分":  "highestScore",
			"最低分排名": "lowestRank",
			"省控线":  "controlLine",
			"控制线":  "controlLine",
		},
		Required: []string{"省份", "最低分"},
		MinCells: 2,
	})
	Register(&Layout{
		Tag: TagByMajor,
		Headers: map[string]string{
			"专业":              "major",
			"专业名称":            "major",
			"科类":              "category",
			"校区":              "campus",
			"计划数":             "plannedCount",
			"最低分":             "lowestScore",
			"最高分":             "highestScore",
			"平均分":             "avgScore",
			"最低分排名":           "lowestRank",
			"专业组":             "specialtyGroup",
			"专业组/科目类/单设志愿":    "specialtyGroup",
		},
		Required: []string{"专业", "最低分"},
		MinCells: 3,
	})
}
