package main

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"thloop/props"
	"thloop/server"
)

func main() {
	cfg := server.LoadConfig("conf/config.ini")

	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufSize,
		WriteBufferSize: cfg.WriteBufSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	ev := props.NewWater(cfg.PropCacheSize)
	s := server.NewServer(cfg.Addr, upgrader, ev)
	if err := s.Serve(); err != nil {
		log.Fatal(err)
	}
}
