package loader

// https://github.com/yuwf/wordtrie

// Loader 配置接口
type Loader interface {
	// 获取原始配置 返回nil表示未加载
	GetSrc() []byte

	// 加载接口 src：原始配置数据 path：相关的路径，只用作日志
	Load(src []byte, path string) error

	// 从本地文件加载
	LoadFile(path string) error

	// 保存本地
	SaveFile(path string) error
}

// 创建对象时调用，用来设置默认值
type Creater interface {
	Create()
}

// json读取完后调用
type Normalizer interface {
	Normalize()
}
