package main

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

// BatchConfig is the shared refactor configuration applied to every file
// matched by mdr batch's glob, loaded from a YAML file via --config.
type BatchConfig struct {
	Dims       string `yaml:"dims"`
	Level      uint8  `yaml:"level"`
	Planes     uint8  `yaml:"planes"`
	Negabinary bool   `yaml:"negabinary"`
	Lossless   string `yaml:"lossless"`
	Estimator  string `yaml:"estimator"`
	ElemType   string `yaml:"type"`
	OutDir     string `yaml:"out_dir"`
}

func loadBatchConfig(path string) (BatchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BatchConfig{}, err
	}
	var cfg BatchConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return BatchConfig{}, err
	}
	return cfg, nil
}
