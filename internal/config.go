package internal

import "time"

type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,required=true"`

	JWTSecret string `env:"JWT_SECRET,required=true"`

	LexiconFilepath   string        `env:"LEXICON_FILEPATH"`
	ModerationTimeout time.Duration `env:"MODERATION_TIMEOUT,required=true"`

	BufferSize       int           `env:"BUFFER_SIZE,required=true"`
	LatencyThreshold time.Duration `env:"LATENCY_THRESHOLD,required=true"`
	MetricInterval   time.Duration `env:"METRIC_INTERVAL,required=true"`
}
