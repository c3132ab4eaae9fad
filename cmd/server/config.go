package main

import "time"

type Config struct {
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	DebugPort            int           `env:"DEBUG_PORT,default=8089"`
	TokenSecret          string        `env:"TOKEN_SECRET,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,default=64"`
	PresenceDebounce     time.Duration `env:"PRESENCE_DEBOUNCE,default=2s"`
	SnapshotInterval     time.Duration `env:"SNAPSHOT_INTERVAL,default=30s"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
}
