package batch

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type trackFile struct {
	Tracks []string `yaml:"tracks"`
}

// LoadTracks reads a track list from a yaml file.
//
//	tracks:
//	  - barber
//	  - Road America
func LoadTracks(fs afero.Fs, path string) ([]string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	var tf trackFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(tf.Tracks) == 0 {
		return nil, fmt.Errorf("%s: no tracks defined", path)
	}
	return tf.Tracks, nil
}
