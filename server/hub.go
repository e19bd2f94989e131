package server

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"thloop/model"
	"thloop/network"
	"thloop/props"
	"thloop/solver"
)

// Hub serves one websocket client: it receives build/solve requests and
// streams progress frames and the final solution back.
type Hub struct {
	ev   props.Evaluator
	conn *websocket.Conn

	// request
	msg chan model.Msg
	// response
	reply chan model.Msg
	done  chan struct{}
}

func NewHub(ev props.Evaluator, conn *websocket.Conn) *Hub {
	return &Hub{
		ev:    ev,
		conn:  conn,
		msg:   make(chan model.Msg, 10),
		reply: make(chan model.Msg, 64),
		done:  make(chan struct{}),
	}
}

func (h *Hub) close() { close(h.done) }

func (h *Hub) handleResponse() {
	for {
		select {
		case reply := <-h.reply:
			if err := h.conn.WriteJSON(&reply); err != nil {
				log.WithError(err).Error("write failed")
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) handleRequest() {
	for {
		select {
		case msg := <-h.msg:
			switch msg.Type {
			case "check":
				h.check(msg.Content)
			case "solve":
				h.solve(msg.Content)
			default:
				log.WithField("type", msg.Type).Warn("no such message type")
				h.sendError("unknown message type: " + msg.Type)
			}
		case <-h.done:
			return
		}
	}
}

func (h *Hub) send(typ string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Error("marshal failed")
		return
	}
	select {
	case h.reply <- model.Msg{Type: typ, Content: string(data)}:
	case <-h.done:
	}
}

func (h *Hub) sendError(msg string) {
	h.send("error", model.SolveReply{Status: "failed", Message: msg})
}

// check builds the network and verifies the degrees of freedom without
// iterating.
func (h *Hub) check(content string) {
	var def model.NetworkDef
	if err := json.Unmarshal([]byte(content), &def); err != nil {
		h.sendError(err.Error())
		return
	}
	net, err := BuildNetwork(def, h.ev)
	if err != nil {
		h.sendError(err.Error())
		return
	}
	if err := net.CheckDOF(solver.DefaultOptions().Friction); err != nil {
		h.sendError(err.Error())
		return
	}
	h.send("checked", model.SolveReply{Status: "ok"})
}

func (h *Hub) solve(content string) {
	var req model.SolveRequest
	if err := json.Unmarshal([]byte(content), &req); err != nil {
		h.sendError(err.Error())
		return
	}
	net, err := BuildNetwork(req.Network, h.ev)
	if err != nil {
		h.sendError(err.Error())
		return
	}

	opts, err := solveOptions(req.Options)
	if err != nil {
		h.sendError(err.Error())
		return
	}
	opts.Progress = func(iter int, norm, damping float64) {
		h.send("progress", model.ProgressFrame{Iter: iter, Norm: norm, Damping: damping})
	}

	res, solveErr := solver.Solve(net, opts)
	reply := model.SolveReply{
		Status:       res.Status.String(),
		Iterations:   res.Iterations,
		ResidualNorm: res.ResidualNorm,
		Message:      res.Message,
	}
	if solveErr == nil {
		reply.Connections = readConnections(net)
	}
	h.send("solved", reply)
}

func solveOptions(def model.SolveOptionsDef) (solver.Options, error) {
	opts := solver.DefaultOptions()
	if def.MaxIter > 0 {
		opts.MaxIter = def.MaxIter
	}
	if def.Tol > 0 {
		opts.Tol = def.Tol
	}
	if def.FDEps > 0 {
		opts.FDEps = def.FDEps
	}
	if def.Damping != nil {
		opts.Damping = *def.Damping
	}
	if def.Workers > 0 {
		opts.Workers = def.Workers
	}
	friction, err := frictionModel(def.Friction)
	if err != nil {
		return opts, err
	}
	if friction != 0 {
		opts.Friction = friction
	}
	return opts, nil
}

func readConnections(net *network.Network) []network.ConnState {
	conns := net.Connections()
	out := make([]network.ConnState, 0, len(conns))
	for _, c := range conns {
		cs, err := net.ReadState(c)
		if err != nil {
			log.WithError(err).WithField("conn", c.Name).Warn("readback failed")
			continue
		}
		out = append(out, cs)
	}
	return out
}
