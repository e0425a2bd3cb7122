package dictionary

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuwf/wordtrie/trie"
)

func TestDictionaryAdd(t *testing.T) {
	d := New()
	fox, err := d.Add("fox")
	require.NoError(t, err)
	dog, err := d.Add("dog")
	require.NoError(t, err)
	assert.NotEqual(t, fox, dog)

	again, err := d.Add("fox")
	require.NoError(t, err)
	assert.Equal(t, fox, again)
	assert.Equal(t, 2, d.Len())

	w, ok := d.Word(fox)
	assert.True(t, ok)
	assert.Equal(t, "fox", w)
	_, ok = d.Word(trie.NoHandle)
	assert.False(t, ok)

	_, err = d.Add("")
	assert.ErrorIs(t, err, trie.ErrEmptyWord)
	assert.Equal(t, 2, d.Len())
	assert.True(t, d.Validate())
}

func TestDictionaryAddWords(t *testing.T) {
	d, err := NewWithWords([]string{"cat", "car", "cab", "cat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"cab", "car", "cat"}, d.Words())
	assert.Equal(t, Stats{Words: 3, Nodes: 6}, d.Stats())

	// 空词跳过 其他照常添加
	d = New()
	err = d.AddWords([]string{"a", "", "b"})
	assert.ErrorIs(t, err, trie.ErrEmptyWord)
	assert.Equal(t, []string{"a", "b"}, d.Words())

	_, err = NewWithWords([]string{""})
	assert.Error(t, err)
}

func TestDictionarySearch(t *testing.T) {
	d, err := NewWithWords([]string{"ab", "bc", "fox", "foxes", "狐狸"})
	require.NoError(t, err)

	matches := d.Search("abc", false)
	require.Len(t, matches, 2)
	assert.Equal(t, Match{Word: "ab", Handle: matches[0].Handle, Start: 0, End: 1}, matches[0])
	assert.Equal(t, Match{Word: "bc", Handle: matches[1].Handle, Start: 1, End: 2}, matches[1])

	matches = d.Search("foxes", false)
	require.Len(t, matches, 2)
	assert.Equal(t, "fox", matches[0].Word)
	assert.Equal(t, "foxes", matches[1].Word)
	assert.Equal(t, 0, matches[1].Start)
	assert.Equal(t, 4, matches[1].End)

	matches = d.Search("foxes", true)
	require.Len(t, matches, 1)
	assert.Equal(t, "fox", matches[0].Word)

	// rune位置
	matches = d.Search("一只狐狸", false)
	require.Len(t, matches, 1)
	assert.Equal(t, Match{Word: "狐狸", Handle: matches[0].Handle, Start: 2, End: 3}, matches[0])

	assert.Nil(t, d.Search("", false))
	assert.Nil(t, d.Search("nothing here", false))
	assert.Nil(t, New().Search("abc", false))
}

func TestDictionaryContains(t *testing.T) {
	d, err := NewWithWords([]string{"smallest", "dog"})
	require.NoError(t, err)
	assert.False(t, d.Contains("small"))
	assert.False(t, d.Contains(""))
	assert.True(t, d.Contains("the lazy dog"))
	assert.True(t, d.Contains("smallest"))
	assert.False(t, New().Contains("dog"))
}

func TestDictionarySearchBatch(t *testing.T) {
	d, err := NewWithWords([]string{"fox", "dog"})
	require.NoError(t, err)

	texts := make([]string, 200)
	for i := range texts {
		switch i % 3 {
		case 0:
			texts[i] = fmt.Sprintf("%d fox", i)
		case 1:
			texts[i] = "dog fox"
		default:
			texts[i] = "cat"
		}
	}
	results := d.SearchBatch(texts, false)
	require.Len(t, results, len(texts))
	for i, r := range results {
		assert.Equal(t, d.Search(texts[i], false), r, texts[i])
	}
	assert.Empty(t, d.SearchBatch(nil, false))
}

func TestDictionaryConcurrent(t *testing.T) {
	d := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Add(fmt.Sprintf("w%d_%d", i, j))
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.Search("w1_1 w2_2 w3_3", false)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, d.Len())
	assert.True(t, d.Validate())
	matches := d.Search("w1_1", false)
	require.NotEmpty(t, matches)
	assert.Equal(t, "w1_1", matches[len(matches)-1].Word)
}

func BenchmarkSearchBatch(b *testing.B) {
	d, _ := NewWithWords([]string{"leaves", "leafless", "bower", "green", "no", "see", "shade"})
	texts := make([]string, 64)
	for i := range texts {
		texts[i] = "Where leafless oaks towered high above, I sat within an undergrove"
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.SearchBatch(texts, false)
	}
}
