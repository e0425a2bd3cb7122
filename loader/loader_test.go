package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type confTest struct {
	Name  string   `json:"name"`
	Words []string `json:"words"`
	Port  int      `json:"port"`

	upper string
}

func (c *confTest) Create() {
	c.Port = 8080
}

func (c *confTest) Normalize() {
	c.upper = strings.ToUpper(c.Name)
}

func TestJsonLoaderDefault(t *testing.T) {
	var l JsonLoader[confTest]
	conf := l.Get()
	require.NotNil(t, conf)
	assert.Equal(t, 8080, conf.Port)
	assert.Nil(t, l.GetSrc())
	assert.ErrorIs(t, l.SaveFile(filepath.Join(t.TempDir(), "x.json")), ErrNoSrc)
}

func TestJsonLoaderLoad(t *testing.T) {
	var l JsonLoader[confTest]
	var olds, news []*confTest
	l.RegHook(func(old, new *confTest) {
		olds = append(olds, old)
		news = append(news, new)
	})

	require.NoError(t, l.Load([]byte(`{"name":"animals","words":["fox","dog"]}`), "mem"))
	conf := l.Get()
	assert.Equal(t, "animals", conf.Name)
	assert.Equal(t, "ANIMALS", conf.upper)
	assert.Equal(t, []string{"fox", "dog"}, conf.Words)
	assert.Equal(t, 8080, conf.Port)
	require.Len(t, news, 1)
	assert.Same(t, conf, news[0])

	// 相同内容不触发
	require.NoError(t, l.Load([]byte(`{"name":"animals","words":["fox","dog"]}`), "mem"))
	assert.Len(t, news, 1)

	assert.Error(t, l.Load([]byte(`{"name":`), "mem"))
	assert.Same(t, conf, l.Get())

	require.NoError(t, l.LoadBy(&confTest{Name: "colors", Port: 1}))
	assert.Equal(t, "colors", l.Get().Name)
	assert.Equal(t, 1, l.Get().Port)
	require.Len(t, olds, 2)
	assert.Same(t, conf, olds[1])
}

func TestJsonLoaderPrepareHook(t *testing.T) {
	var l JsonLoader[confTest]
	var seen []string
	prepareId := l.RegPrepareHook(func(old, new *confTest) {
		// 生效前Get还是旧配置
		assert.Same(t, old, l.Get())
		new.Words = append(new.Words, "merged")
		seen = append(seen, "prepare")
	})
	updateId := l.RegHook(func(old, new *confTest) {
		assert.Same(t, new, l.Get())
		seen = append(seen, "update")
	})
	l.RegHook(func(old, new *confTest) {
		panic("hook panic")
	})

	require.NoError(t, l.Load([]byte(`{"name":"a","words":["fox"]}`), "mem"))
	assert.Equal(t, []string{"fox", "merged"}, l.Get().Words)
	assert.Equal(t, []string{"prepare", "update"}, seen)

	l.UnregHook(prepareId)
	l.UnregHook(updateId)
	require.NoError(t, l.Load([]byte(`{"name":"b","words":["dog"]}`), "mem"))
	assert.Equal(t, []string{"dog"}, l.Get().Words)
	assert.Len(t, seen, 2)
}

func TestJsonLoaderFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"file","port":9000}`), 0644))

	var l JsonLoader[confTest]
	require.NoError(t, l.LoadFile(path))
	assert.Equal(t, "file", l.Get().Name)
	assert.Equal(t, 9000, l.Get().Port)

	saved := filepath.Join(dir, "saved.json")
	require.NoError(t, l.SaveFile(saved))
	data, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"file","port":9000}`, string(data))

	assert.Error(t, l.LoadFile(filepath.Join(dir, "missing.json")))
}

func TestLocalWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "words.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"v1"}`), 0644))

	watch, err := NewLocalWatch()
	require.NoError(t, err)
	defer watch.Close()

	var l JsonLoader[confTest]
	require.NoError(t, watch.ListenFile(path, &l, true))
	assert.True(t, watch.IsWatching(path))
	assert.Equal(t, "v1", l.Get().Name)

	// 重复监听
	require.NoError(t, watch.ListenFile(path, &l, false))

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"v2"}`), 0644))
	assert.Eventually(t, func() bool { return l.Get().Name == "v2" }, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, watch.CancelListenFile(path))
	assert.False(t, watch.IsWatching(path))

	require.NoError(t, os.WriteFile(path, []byte(`{"name":"v3"}`), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, "v2", l.Get().Name)
}

func TestLocalWatchImmediatelyFail(t *testing.T) {
	watch, err := NewLocalWatch()
	require.NoError(t, err)
	defer watch.Close()

	var l JsonLoader[confTest]
	path := filepath.Join(t.TempDir(), "missing.json")
	assert.Error(t, watch.ListenFile(path, &l, true))
	assert.False(t, watch.IsWatching(path))
}
