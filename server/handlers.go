package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TFMV/kolgraph/fixtures"
	"github.com/TFMV/kolgraph/ingest"
	"github.com/TFMV/kolgraph/models"
	"github.com/TFMV/kolgraph/physics"
	"github.com/TFMV/kolgraph/render"
)

var indexTemplate = template.Must(template.New("index").Parse(indexHTML))

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Error encoding JSON response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, details ...string) {
	s.respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
		Details: details,
	})
}

// respondLoopError maps a failed loop call to a status
func (s *Server) respondLoopError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, physics.ErrLoopStopped):
		s.respondError(w, http.StatusNotFound, "session closed")
	default:
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	}
}

// lookup resolves the {id} path value, writing 404 when absent
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	id := r.PathValue("id")
	sess, ok := s.get(id)
	if !ok {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id))
		return nil, false
	}
	sess.touch(time.Now())
	return sess, true
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Fixtures []string
		Sessions []SessionResponse
	}{Fixtures: s.source.Names()}
	for _, sess := range s.list() {
		data.Sessions = append(data.Sessions, sess.response())
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Warn("Error rendering index", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "ok", Sessions: s.SessionCount()})
}

func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.source.Names())
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	out := []SessionResponse{}
	for _, sess := range s.list() {
		out = append(out, sess.response())
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		w.Header().Set("Retry-After", "1")
		s.respondError(w, http.StatusTooManyRequests, "session creation rate exceeded")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	network, source, status, err := s.resolveNetwork(&req)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			details := make([]string, len(verr.Errors))
			for i, fe := range verr.Errors {
				details[i] = fe.Field + ": " + fe.Message
			}
			s.respondError(w, status, "invalid network", details...)
			return
		}
		s.respondError(w, status, err.Error())
		return
	}

	width, height := req.Width, req.Height
	if width == 0 {
		width = s.cfg.Viewport.Width
	}
	if height == 0 {
		height = s.cfg.Viewport.Height
	}
	if width < 0 || height < 0 {
		s.respondError(w, http.StatusBadRequest, "width and height must be positive")
		return
	}

	seed := s.cfg.ResolveSeed(req.Seed)
	state := physics.Initialize(network, width, height, s.cfg.StateOptions(seed)...)
	if req.Jitter != nil {
		if *req.Jitter {
			state.SetPerturber(s.cfg.NewJitter(seed))
		} else {
			state.SetPerturber(nil)
		}
	}

	id := uuid.New().String()
	loop := physics.NewLoop(state, physics.LoopOptions{
		FPS:      s.cfg.Loop.FPS,
		Observer: s.metrics,
		Logger:   s.logger.With(zap.String("session", id)),
	})
	sess := &session{
		id:        id,
		network:   network,
		loop:      loop,
		width:     width,
		height:    height,
		createdAt: time.Now(),
	}
	sess.touch(sess.createdAt)

	if err := s.add(sess); err != nil {
		sess.loop.Stop()
		switch {
		case errors.Is(err, errTooManySessions):
			s.respondError(w, http.StatusTooManyRequests, err.Error())
		default:
			s.respondError(w, http.StatusServiceUnavailable, err.Error())
		}
		return
	}
	s.metrics.SessionOpened(source)

	s.logger.Info("Session created",
		zap.String("session", id),
		zap.String("network", network.Name),
		zap.Int("nodes", len(network.Nodes)),
		zap.Int("edges", len(network.Edges)))

	s.respondJSON(w, http.StatusCreated, sess.response())
}

// resolveNetwork picks the request's network, returning the metrics source
// label and the status to use on failure
func (s *Server) resolveNetwork(req *CreateSessionRequest) (*models.Network, string, int, error) {
	switch {
	case req.Network != nil && req.Fixture != "":
		return nil, "", http.StatusBadRequest, errors.New("set either fixture or network, not both")

	case req.Network != nil:
		if n := len(req.Network.Nodes); n > s.cfg.Server.MaxNodes {
			return nil, "", http.StatusBadRequest,
				fmt.Errorf("network has %d nodes, the limit is %d", n, s.cfg.Server.MaxNodes)
		}
		if err := ingest.Validate(req.Network); err != nil {
			return nil, "", http.StatusBadRequest, err
		}
		network := req.Network.Clone()
		if network.ID == "" {
			network.ID = uuid.New().String()
		}
		if network.Name == "" {
			network.Name = "API Import"
		}
		return network, "network", 0, nil

	case req.Fixture != "":
		network, err := s.source.Load(req.Fixture)
		if errors.Is(err, fixtures.ErrUnknownFixture) {
			return nil, "", http.StatusBadRequest, err
		}
		if err != nil {
			return nil, "", http.StatusInternalServerError, err
		}
		return network, "fixture", 0, nil

	default:
		return nil, "", http.StatusBadRequest, errors.New("fixture or network is required")
	}
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.remove(id) {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("session %q not found", id))
		return
	}
	s.metrics.SessionClosed("deleted")
	s.logger.Info("Session deleted", zap.String("session", id))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	frame, err := sess.loop.Snapshot(r.Context())
	if err != nil {
		s.respondLoopError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, frame)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "svg"
	}
	renderer, err := render.GetRenderer(format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.writeRendered(w, r, sess, renderer, format, false)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	s.writeRendered(w, r, sess, &render.HTMLRenderer{}, "html", true)
}

func (s *Server) writeRendered(w http.ResponseWriter, r *http.Request, sess *session, renderer render.Renderer, format string, live bool) {
	frame, err := sess.loop.Snapshot(r.Context())
	if err != nil {
		s.respondLoopError(w, err)
		return
	}

	opts := render.NewDefaultOptions(format)
	opts.Title = sess.network.Name
	if live {
		opts.SessionURL = "/api/sessions/" + sess.id
	}

	out, err := renderer.Render(frame, opts)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	x, errX := strconv.ParseFloat(r.URL.Query().Get("x"), 64)
	y, errY := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if errX != nil || errY != nil {
		s.respondError(w, http.StatusBadRequest, "x and y must be numbers")
		return
	}

	info, hit, err := sess.loop.Hover(r.Context(), x, y)
	if err != nil {
		s.respondLoopError(w, err)
		return
	}
	if !hit {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respondJSON(w, http.StatusOK, info)
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req PinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.X == nil || req.Y == nil {
		s.respondError(w, http.StatusBadRequest, "x and y are required")
		return
	}

	node := r.PathValue("node")
	pinned, err := sess.loop.Pin(r.Context(), node, *req.X, *req.Y)
	if err != nil {
		s.respondLoopError(w, err)
		return
	}
	if !pinned {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", node))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	node := r.PathValue("node")
	unpinned, err := sess.loop.Unpin(r.Context(), node)
	if err != nil {
		s.respondLoopError(w, err)
		return
	}
	if !unpinned {
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", node))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>kolgraph - HCP Influence Networks</title>
  <style>
    body { font-family: 'Helvetica Neue', Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; color: #333; }
    .container { max-width: 960px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
    h1 { margin-top: 0; border-bottom: 2px solid #eee; padding-bottom: 10px; }
    .btn { background: #4285f4; color: white; border: none; padding: 8px 16px; border-radius: 4px; cursor: pointer; font-size: 14px; margin-right: 8px; }
    li { margin: 6px 0; }
  </style>
</head>
<body>
<div class="container">
  <h1>HCP Influence Networks</h1>
  <h2>Networks</h2>
  <div>
  {{range .Fixtures}}<button class="btn" data-fixture="{{.}}">{{.}}</button>{{end}}
  </div>
  <h2>Live sessions</h2>
  <ul>
  {{range .Sessions}}<li><a href="{{.ViewURL}}">{{.Network}}</a> ({{.Nodes}} nodes, {{.Edges}} edges)</li>
  {{else}}<li>none</li>{{end}}
  </ul>
</div>
<script>
document.querySelectorAll('[data-fixture]').forEach(btn => {
  btn.addEventListener('click', () => {
    fetch('/api/sessions', {
      method: 'POST',
      headers: {'Content-Type': 'application/json'},
      body: JSON.stringify({fixture: btn.dataset.fixture})
    }).then(r => r.json()).then(s => { if (s.view_url) window.location = s.view_url; });
  });
});
</script>
</body>
</html>
`

// handleNodes lists the session's nodes, optionally narrowed by
// ?category= and ?kol=true. The node set is immutable, so the loop is not
// involved.
func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	category := r.URL.Query().Get("category")
	kolOnly := false
	if v := r.URL.Query().Get("kol"); v != "" {
		var err error
		if kolOnly, err = strconv.ParseBool(v); err != nil {
			s.respondError(w, http.StatusBadRequest, "kol must be a boolean")
			return
		}
	}

	network := sess.network
	var nodes []models.Node
	switch {
	case category != "" && kolOnly:
		nodes = network.FilterNodes(func(n *models.Node) bool {
			return n.KOL && n.Category == category
		})
	case category != "":
		nodes = network.FindNodesByCategory(category)
	case kolOnly:
		nodes = network.KOLs()
	default:
		nodes = network.Nodes
	}
	if nodes == nil {
		nodes = []models.Node{}
	}

	s.respondJSON(w, http.StatusOK, NodeListResponse{
		Nodes:      nodes,
		Categories: network.Categories(),
	})
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}

	node, err := sess.network.FindNodeByID(r.PathValue("node"))
	if err != nil {
		s.respondError(w, http.StatusNotFound, err.Error())
		return
	}

	connections := sess.network.FindConnectedNodes(node.ID)
	if connections == nil {
		connections = []models.Node{}
	}
	s.respondJSON(w, http.StatusOK, NodeDetailResponse{Node: node, Connections: connections})
}
