package config

import "time"

type Config struct {
	// General configuration
	Log Log `yaml:"log" mapstructure:"log" validate:"required"`

	// Storage and transfer
	Backend   Backend   `yaml:"backend" mapstructure:"backend" validate:"required"`
	Datalake  Datalake  `yaml:"datalake" mapstructure:"datalake"`
	Local     Local     `yaml:"local" mapstructure:"local"`
	Transfer  Transfer  `yaml:"transfer" mapstructure:"transfer" validate:"required"`
	Generator Generator `yaml:"generator" mapstructure:"generator" validate:"required"`
	Verify    Verify    `yaml:"verify" mapstructure:"verify"`

	// Infrastructure components
	History History `yaml:"history" mapstructure:"history"`
}

type Log struct {
	Level     string `yaml:"level" mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format    string `yaml:"format" mapstructure:"format" validate:"oneof=json text"`
	AddSource bool   `yaml:"addSource" mapstructure:"addSource"`
}

type Backend struct {
	Type string `yaml:"type" mapstructure:"type" validate:"required,oneof=datalake storj local"`
}

type Datalake struct {
	// Endpoint is a printf template taking the account name, or a fixed URL
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"required"`
}

type Local struct {
	Root string `yaml:"root" mapstructure:"root" validate:"required"`
}

type Transfer struct {
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	ChunkSize        int64         `yaml:"chunkSize" mapstructure:"chunkSize" validate:"gte=0"`
	Concurrency      int           `yaml:"concurrency" mapstructure:"concurrency" validate:"gte=0,lte=65535"`
	ProgressInterval time.Duration `yaml:"progressInterval" mapstructure:"progressInterval" validate:"gt=0"`
}

type Generator struct {
	ChunkSize int  `yaml:"chunkSize" mapstructure:"chunkSize" validate:"required,gte=1"`
	ExactSize bool `yaml:"exactSize" mapstructure:"exactSize"`
}

type Verify struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

type History struct {
	// Path is the sqlite file recording runs, empty disables the history
	Path string `yaml:"path" mapstructure:"path"`
}
