package effect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Library 以 YAML 编写的具名特效集合
//
//	name: Fire
//	effects:
//	  - name: Torch
//	    params:
//	      fParticleLifeTime: 2.5
//	      cColor: {r: 255, g: 128, b: 0}
//	    expressions:
//	      fAlpha: "${fParticleLifeTime} / 5"
//	    curves:
//	      alphaOverLife: "0,1 1,0"
//	    children:
//	      - name: Sparks
type Library struct {
	Name    string   `yaml:"name"`
	Effects []*State `yaml:"effects"`
}

// LoadLibraryYAML 解码特效库文档
func LoadLibraryYAML(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse effect library: %w", err)
	}
	if len(lib.Effects) == 0 {
		return nil, fmt.Errorf("effect library %q contains no effects", lib.Name)
	}
	return &lib, nil
}

// LoadLibraryFile 从磁盘读取特效库文档
func LoadLibraryFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effect library %s: %w", path, err)
	}
	lib, err := LoadLibraryYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}
