package trie

// https://github.com/yuwf/wordtrie

import (
	"cmp"
	"sort"
)

// Symbol 节点字符类型，只要求可比较大小
type Symbol interface {
	cmp.Ordered
}

// Node 前缀树节点
// children按symbol严格升序，不存在重复，首次添加子节点时才分配
type Node[S Symbol] struct {
	symbol   S
	end      bool   // 是否是一个词的结尾
	handle   Handle // end为true时有效
	children []*Node[S]
}

func newNode[S Symbol](s S) *Node[S] {
	return &Node[S]{symbol: s}
}

func (n *Node[S]) Symbol() S {
	return n.symbol
}

// 子节点中第一个symbol>=s的位置
func (n *Node[S]) lowerBound(s S) int {
	return sort.Search(len(n.children), func(i int) bool {
		return n.children[i].symbol >= s
	})
}

// AddChild 添加子节点，保持有序
// 已存在相同symbol的子节点返回ErrDuplicateSymbol，调用方应当直接使用已存在的节点
func (n *Node[S]) AddChild(s S) (*Node[S], error) {
	i := n.lowerBound(s)
	if i < len(n.children) && n.children[i].symbol == s {
		return nil, ErrDuplicateSymbol
	}
	child := newNode(s)
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = child
	return child, nil
}

// FindChild 二分查找子节点，没有返回nil
func (n *Node[S]) FindChild(s S) *Node[S] {
	i := n.lowerBound(s)
	if i < len(n.children) && n.children[i].symbol == s {
		return n.children[i]
	}
	return nil
}

// MarkEndOfWord 标记词结尾，可重复调用
func (n *Node[S]) MarkEndOfWord() {
	n.end = true
}

func (n *Node[S]) IsEndOfWord() bool {
	return n.end
}

// Handle 词的标识，不是词结尾时返回NoHandle
func (n *Node[S]) Handle() Handle {
	if !n.end {
		return NoHandle
	}
	return n.handle
}

// IsLeaf 没有子节点
func (n *Node[S]) IsLeaf() bool {
	return len(n.children) == 0
}

// Len 子节点数量
func (n *Node[S]) Len() int {
	return len(n.children)
}

// Compact 递归收缩children的容量，不改变结构
// 一般批量插入后调用一次
func (n *Node[S]) Compact() {
	if len(n.children) == 0 {
		return
	}
	if cap(n.children) > len(n.children) {
		children := make([]*Node[S], len(n.children))
		copy(children, n.children)
		n.children = children
	}
	for _, c := range n.children {
		c.Compact()
	}
}

// Validate 递归检查节点状态
// children分配了就不能为空，必须严格升序，叶子节点必须是词结尾
func (n *Node[S]) Validate() bool {
	if n.children == nil {
		return n.end
	}
	if len(n.children) == 0 {
		return false
	}
	for i, c := range n.children {
		if i > 0 && n.children[i-1].symbol >= c.symbol {
			return false
		}
		if !c.Validate() {
			return false
		}
	}
	return true
}

func (n *Node[S]) count() int {
	cnt := 1
	for _, c := range n.children {
		cnt += c.count()
	}
	return cnt
}
