package main

import (
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/eringen/blogfs"
)

func loadConfig() (blogfs.Config, error) {
	var cfg blogfs.Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return blogfs.Config{}, err
	}
	return cfg, nil
}

func configDescription() (string, error) {
	var cfg blogfs.Config
	return cleanenv.GetDescription(&cfg, nil)
}
