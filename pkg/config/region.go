package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

// regionState is the on-disk form of the remembered capture region.
type regionState struct {
	Region frame.Rect `yaml:"region"`
}

// LoadRegion reads the last used region. ok is false when none was saved.
func LoadRegion(fs ports.FileSystem, path string) (frame.Rect, bool, error) {
	exists, err := fs.Exists(path)
	if err != nil || !exists {
		return frame.Rect{}, false, err
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return frame.Rect{}, false, err
	}

	var st regionState
	if err := yaml.Unmarshal(data, &st); err != nil {
		return frame.Rect{}, false, fmt.Errorf("parse region state: %w", err)
	}
	if st.Region.Empty() {
		return frame.Rect{}, false, nil
	}
	return st.Region, true, nil
}

// SaveRegion remembers r for the next session.
func SaveRegion(fs ports.FileSystem, path string, r frame.Rect) error {
	data, err := yaml.Marshal(regionState{Region: r})
	if err != nil {
		return err
	}
	return fs.WriteFile(path, data)
}
