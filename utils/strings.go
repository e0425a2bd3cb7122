package utils

// https://github.com/yuwf/wordtrie

import (
	"unsafe"
)

// 零拷贝转换，返回的[]byte不能修改
func StringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func BytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// IsMatch 通配符匹配 ?匹配一个字符 *匹配任意个字符
func IsMatch(pattern, s string) bool {
	p, i := 0, 0
	star, mark := -1, 0
	for i < len(s) {
		if p < len(pattern) && (pattern[p] == '?' || pattern[p] == s[i]) {
			p++
			i++
		} else if p < len(pattern) && pattern[p] == '*' {
			star = p
			mark = i
			p++
		} else if star != -1 {
			p = star + 1
			mark++
			i = mark
		} else {
			return false
		}
	}
	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}
