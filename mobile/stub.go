//go:build !mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 普通桌面构建不包含绑定代码，仅在 -tags mobile 时编译 mobile.go 和 embed.go。
package mobile

// Available 报告当前构建是否包含移动端绑定
func Available() bool { return false }
