// Package data 嵌入默认参数 schema 和示例特效
//
// go:embed 指令只能嵌入所在包目录及其子目录的文件，
// 因此文件与本声明放在一起，其他包通过 pkg/embedded 访问。
package data

import "embed"

// SchemaPath 嵌入的默认参数 schema
const SchemaPath = "data/schema/particle_params.xml"

// SampleLibraryPath 嵌入的示例特效库
const SampleLibraryPath = "data/effects/sample_fire.yaml"

//go:embed schema effects
var files embed.FS

// FS 返回嵌入的文件，路径相对于本目录（"schema/particle_params.xml"）
func FS() embed.FS {
	return files
}
