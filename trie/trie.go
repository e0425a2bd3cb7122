package trie

// https://github.com/yuwf/wordtrie

// Trie 前缀树
// 内部不加锁，Insert不能和其他操作并发，建好后多个协程同时Scan是安全的
// 扫描时每个起始位置都从根节点重新匹配，不使用失败指针，开销为 输入长度*最长匹配长度
type Trie[S Symbol] struct {
	root   *Node[S] // 空前缀，自身的symbol不参与比较
	handle Handle   // 最后分配的Handle
}

func New[S Symbol]() *Trie[S] {
	var zero S
	return &Trie[S]{root: newNode(zero)}
}

// Insert 插入一个词，返回词的标识
// 重复插入返回相同的标识，不会创建新节点
// 空词返回ErrEmptyWord
func (t *Trie[S]) Insert(word []S) (Handle, error) {
	if len(word) == 0 {
		return NoHandle, ErrEmptyWord
	}
	node := t.root
	for _, s := range word {
		next := node.FindChild(s)
		if next == nil {
			child, err := node.AddChild(s)
			if err != nil {
				// 不会出现，FindChild刚确认过
				return NoHandle, err
			}
			next = child
		}
		node = next
	}
	if !node.end {
		node.MarkEndOfWord()
		t.handle++
		node.handle = t.handle
	}
	return node.handle, nil
}

// Scan 扫描输入，返回所有匹配
// 结果先按起始位置升序，同一起始位置按结束位置升序
// stopAtFirstMatchPerStart为true时，每个起始位置只返回最短的那个匹配
func (t *Trie[S]) Scan(input []S, stopAtFirstMatchPerStart bool) []MatchResult {
	var results []MatchResult
	for i := range input {
		results = t.ScanAt(input, i, stopAtFirstMatchPerStart, results)
	}
	return results
}

// ScanAt 只从start位置开始匹配，结果追加到out后返回
func (t *Trie[S]) ScanAt(input []S, start int, stopAtFirstMatchPerStart bool, out []MatchResult) []MatchResult {
	if start < 0 {
		return out
	}
	node := t.root
	for cursor := start; cursor < len(input); cursor++ {
		node = node.FindChild(input[cursor])
		if node == nil {
			return out
		}
		if node.end {
			out = append(out, MatchResult{Handle: node.handle, End: cursor})
			if stopAtFirstMatchPerStart {
				return out
			}
		}
	}
	return out
}

// Compact 收缩所有节点的存储
func (t *Trie[S]) Compact() {
	t.root.Compact()
}

// Validate 检查整棵树的状态，空树合法
func (t *Trie[S]) Validate() bool {
	if t.root.children == nil {
		return true
	}
	return t.root.Validate()
}

// Len 不同词的数量
func (t *Trie[S]) Len() int {
	return int(t.handle)
}

// NodeCount 节点数量，包含根节点
func (t *Trie[S]) NodeCount() int {
	return t.root.count()
}
