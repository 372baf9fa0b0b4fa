// Package config 编辑器的持久化设置
package config

import (
	"fmt"
	"os"

	"github.com/decker502/fxlib/internal/schema"
	"github.com/decker502/fxlib/pkg/export"
	"gopkg.in/yaml.v3"
)

// EditorSettings 特效编辑器的用户级选项
//
// YAML 示例：
//
//	exportAllParameters: false
//	renderMode: GPU
//	sandboxVersion: 1.0.0.0
//	particleVersion: "24"
//	libraryName: Fire
//	schemaPath: data/schema/particle_params.xml
type EditorSettings struct {
	ExportAllParameters bool   `yaml:"exportAllParameters"`
	RenderMode          string `yaml:"renderMode"`
	SandboxVersion      string `yaml:"sandboxVersion"`
	ParticleVersion     string `yaml:"particleVersion"`
	LibraryName         string `yaml:"libraryName"`
	SchemaPath          string `yaml:"schemaPath"`
	LastExportPath      string `yaml:"lastExportPath,omitempty"`
}

// DefaultSettings 返回默认设置（没有存储时使用）
func DefaultSettings() *EditorSettings {
	return &EditorSettings{
		ExportAllParameters: false,
		RenderMode:          schema.VisibilityAll,
		SandboxVersion:      export.DefaultSandboxVersion,
		ParticleVersion:     export.DefaultParticleVersion,
		LibraryName:         "Particles",
		SchemaPath:          "data/schema/particle_params.xml",
	}
}

// fillDefaults 用默认值填充空字段
func (s *EditorSettings) fillDefaults() {
	d := DefaultSettings()
	if s.RenderMode == "" {
		s.RenderMode = d.RenderMode
	}
	if s.SandboxVersion == "" {
		s.SandboxVersion = d.SandboxVersion
	}
	if s.ParticleVersion == "" {
		s.ParticleVersion = d.ParticleVersion
	}
	if s.LibraryName == "" {
		s.LibraryName = d.LibraryName
	}
	if s.SchemaPath == "" {
		s.SchemaPath = d.SchemaPath
	}
}

// ExportOptions 将设置转换为导出器选项
func (s *EditorSettings) ExportOptions() export.Options {
	return export.Options{
		ExportAllParameters: s.ExportAllParameters,
		RenderMode:          s.RenderMode,
		SandboxVersion:      s.SandboxVersion,
		ParticleVersion:     s.ParticleVersion,
	}
}

// LoadSettingsFile 从 YAML 文件读取设置，缺失字段使用默认值
func LoadSettingsFile(path string) (*EditorSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	return parseSettings(data)
}

func parseSettings(data []byte) (*EditorSettings, error) {
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	s.fillDefaults()
	return s, nil
}
