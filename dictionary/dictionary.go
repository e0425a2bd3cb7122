package dictionary

// https://github.com/yuwf/wordtrie

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yuwf/wordtrie/trie"
	"github.com/yuwf/wordtrie/utils"
)

// Match 一次匹配，Start和End都是字符(rune)位置，End包含在匹配内
type Match struct {
	Word   string      `json:"word"`
	Handle trie.Handle `json:"-"`
	Start  int         `json:"start"`
	End    int         `json:"end"`
}

type Stats struct {
	Words int `json:"words"`
	Nodes int `json:"nodes"`
}

// Dictionary 字符串词典，维护 Handle->词 的映射
// 协程安全，添加词时加写锁，查找加读锁
type Dictionary struct {
	sync.RWMutex
	trie  *trie.Trie[rune]
	words map[trie.Handle]string
}

func New() *Dictionary {
	return &Dictionary{
		trie:  trie.New[rune](),
		words: map[trie.Handle]string{},
	}
}

// NewWithWords 创建并批量添加
func NewWithWords(words []string) (*Dictionary, error) {
	d := New()
	if err := d.AddWords(words); err != nil {
		return nil, err
	}
	return d, nil
}

// Add 添加一个词，重复添加返回相同的Handle
func (d *Dictionary) Add(word string) (trie.Handle, error) {
	d.Lock()
	defer d.Unlock()
	return d.add(word)
}

func (d *Dictionary) add(word string) (trie.Handle, error) {
	h, err := d.trie.Insert([]rune(word))
	if err != nil {
		return trie.NoHandle, errors.Wrapf(err, "add word %q", word)
	}
	d.words[h] = word
	return h, nil
}

// AddWords 批量添加，完成后收缩存储
// 遇到错误的词会跳过，返回第一个错误
func (d *Dictionary) AddWords(words []string) error {
	d.Lock()
	defer d.Unlock()

	var first error
	for _, w := range words {
		if _, err := d.add(w); err != nil {
			log.Warn().Err(err).Str("word", w).Msg("Dictionary AddWords skip")
			if first == nil {
				first = err
			}
		}
	}
	d.trie.Compact()
	return first
}

// Word 通过Handle找到词
func (d *Dictionary) Word(h trie.Handle) (string, bool) {
	d.RLock()
	defer d.RUnlock()
	w, ok := d.words[h]
	return w, ok
}

// Search 查找text中出现的所有词，包括重叠和嵌套的
// 结果按起始位置升序，同一起始位置按长度升序
// stopAtFirst为true时每个起始位置只返回最短的词
func (d *Dictionary) Search(text string, stopAtFirst bool) []Match {
	input := []rune(text)

	d.RLock()
	defer d.RUnlock()
	results := d.trie.Scan(input, stopAtFirst)
	if len(results) == 0 {
		return nil
	}
	matches := make([]Match, 0, len(results))
	for _, r := range results {
		word := d.words[r.Handle]
		matches = append(matches, Match{
			Word:   word,
			Handle: r.Handle,
			Start:  r.End - len([]rune(word)) + 1,
			End:    r.End,
		})
	}
	return matches
}

// Contains 是否包含任意一个词
func (d *Dictionary) Contains(text string) bool {
	input := []rune(text)

	d.RLock()
	defer d.RUnlock()
	var out []trie.MatchResult
	for i := range input {
		if out = d.trie.ScanAt(input, i, true, out[:0]); len(out) > 0 {
			return true
		}
	}
	return false
}

// SearchBatch 用协程池并发查找，结果顺序和texts一致
func (d *Dictionary) SearchBatch(texts []string, stopAtFirst bool) [][]Match {
	results := make([][]Match, len(texts))
	tasks := make([]func(), len(texts))
	for i := range texts {
		i := i
		tasks[i] = func() {
			results[i] = d.Search(texts[i], stopAtFirst)
		}
	}
	utils.SubmitWait(tasks)
	return results
}

// Len 词的数量
func (d *Dictionary) Len() int {
	d.RLock()
	defer d.RUnlock()
	return len(d.words)
}

// Words 所有的词，排序后返回
func (d *Dictionary) Words() []string {
	d.RLock()
	words := make([]string, 0, len(d.words))
	for _, w := range d.words {
		words = append(words, w)
	}
	d.RUnlock()
	sort.Strings(words)
	return words
}

// Compact 收缩存储，一般在批量Add之后调用
func (d *Dictionary) Compact() {
	d.Lock()
	defer d.Unlock()
	d.trie.Compact()
}

func (d *Dictionary) Stats() Stats {
	d.RLock()
	defer d.RUnlock()
	return Stats{Words: len(d.words), Nodes: d.trie.NodeCount()}
}

func (d *Dictionary) Validate() bool {
	d.RLock()
	defer d.RUnlock()
	return d.trie.Validate()
}
