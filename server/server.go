package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"thloop/model"
	"thloop/props"
)

type Server struct {
	addr     string
	upgrader websocket.Upgrader
	ev       props.Evaluator
}

func NewServer(addr string, upgrader websocket.Upgrader, ev props.Evaluator) *Server {
	return &Server{
		addr:     addr,
		upgrader: upgrader,
		ev:       ev,
	}
}

// serveWs handles websocket requests from the peer. Every client gets its
// own hub; the property evaluator (and its cache) is shared.
func (s *Server) serveWs(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Error("upgrade failed")
		return
	}
	defer conn.Close()

	hub := NewHub(s.ev, conn)
	defer hub.close()
	go hub.handleRequest()
	go hub.handleResponse()

	for {
		var msg model.Msg
		if err := conn.ReadJSON(&msg); err != nil {
			log.WithError(err).Info("client disconnected")
			return
		}
		hub.msg <- msg
	}
}

func (s *Server) Serve() error {
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.serveWs(w, r)
	})
	log.WithField("addr", s.addr).Info("listening")
	return http.ListenAndServe(s.addr, nil)
}
