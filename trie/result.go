package trie

// https://github.com/yuwf/wordtrie

import "github.com/pkg/errors"

var (
	// 添加子节点时已存在相同字符
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// 不支持插入空词
	ErrEmptyWord = errors.New("empty word")
)

// Handle 插入词的标识，只用来比较和查找，0不对应任何词
type Handle uint32

const NoHandle Handle = 0

// MatchResult 扫描结果
type MatchResult struct {
	Handle Handle // 匹配到的词，和Insert返回的值相同
	End    int    // 匹配词最后一个字符在输入中的位置
}
