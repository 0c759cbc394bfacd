package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.DatabaseFilePath = "/data/booknest.sqlite"
	cfg.ServerHost = "0.0.0.0"

	if path := os.Getenv("DATABASE_FILE_PATH"); path != "" {
		cfg.DatabaseFilePath = path
	}
	if dir := os.Getenv("IMPORT_DIRECTORY"); dir != "" {
		cfg.ImportDir = dir
	}
	if dir := os.Getenv("IMAGES_DIRECTORY"); dir != "" {
		cfg.ImagesDir = dir
	}
	if dir := os.Getenv("ASSETS_DIRECTORY"); dir != "" {
		cfg.AssetsDir = dir
	}
}
