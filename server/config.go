package server

import (
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

// Config holds the server settings read from conf/config.ini. Missing file
// or keys fall back to the defaults below.
type Config struct {
	Addr          string
	ReadBufSize   int
	WriteBufSize  int
	PropCacheSize int
	LogLevel      string
}

// LoadConfig reads the ini file at path. A missing file is not an error:
// the defaults are returned and a warning is logged.
func LoadConfig(path string) Config {
	cfg := Config{
		Addr:          ":9000",
		ReadBufSize:   1024,
		WriteBufSize:  1024,
		PropCacheSize: 4096,
		LogLevel:      "info",
	}

	file, err := ini.Load(path)
	if err != nil {
		log.WithError(err).Warn("config file not readable, using defaults")
		return cfg
	}

	srv := file.Section("server")
	cfg.Addr = srv.Key("Addr").MustString(cfg.Addr)
	cfg.ReadBufSize = srv.Key("ReadBufSize").MustInt(cfg.ReadBufSize)
	cfg.WriteBufSize = srv.Key("WriteBufSize").MustInt(cfg.WriteBufSize)
	cfg.LogLevel = srv.Key("LogLevel").MustString(cfg.LogLevel)

	cfg.PropCacheSize = file.Section("props").Key("CacheSize").MustInt(cfg.PropCacheSize)

	return cfg
}
