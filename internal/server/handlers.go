package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/laneview/pkg/buildinfo"
	"github.com/matzehuels/laneview/pkg/errors"
	"github.com/matzehuels/laneview/pkg/layout"
	"github.com/matzehuels/laneview/pkg/render"
	"github.com/matzehuels/laneview/pkg/scenario"
	"github.com/matzehuels/laneview/pkg/session"
)

type sessionResponse struct {
	ID        string          `json:"id"`
	ExpiresAt time.Time       `json:"expires_at"`
	Document  render.Document `json:"document"`
}

type stepsResponse struct {
	sessionResponse
	Steps []scenario.StepResult `json:"steps"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var cfg scenario.Config
	if err := s.decode(w, r, &cfg); err != nil {
		s.writeError(w, err)
		return
	}
	sess, err := session.New(cfg, s.opts.SessionTTL)
	if err != nil {
		s.writeError(w, err)
		return
	}
	st, err := sess.Open(s.logger)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), sess, st); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Info("session created", "id", sess.ID, "policy", cfg.Policy, "items", len(sess.Config.Items))
	writeJSON(w, http.StatusCreated, response(sess, st))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	sess, st, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response(sess, st))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	if err := session.ValidateID(id); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeSessionNotFound, err, "session %s", id))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.locks.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

// handleSteps applies the posted steps in order. Either all of them take
// effect or, when one fails, none.
func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if err := s.decode(w, r, &raw); err != nil {
		s.writeError(w, err)
		return
	}
	steps, err := parseSteps(raw)
	if err != nil {
		s.writeError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	sess, st, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := stepsResponse{}
	for i, step := range steps {
		res, err := st.Apply(step)
		res.Index = i + 1
		if err != nil {
			s.writeError(w, fmt.Errorf("step %d (%s): %w", res.Index, step.Op, err))
			return
		}
		resp.Steps = append(resp.Steps, res)
	}
	if err := s.save(r.Context(), sess, st); err != nil {
		s.writeError(w, err)
		return
	}
	resp.sessionResponse = response(sess, st)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	_, st, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st.Engine.Save())
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap layout.Snapshot
	if err := s.decode(w, r, &snap); err != nil {
		s.writeError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	sess, st, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := st.Resume(snap); err != nil {
		s.writeError(w, err)
		return
	}
	if err := st.Engine.Layout(); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.save(r.Context(), sess, st); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, response(sess, st))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	defer s.lock(id)()
	_, st, err := s.open(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	doc := st.Document()

	q := r.URL.Query()
	var (
		body        []byte
		contentType string
	)
	switch format := q.Get("format"); format {
	case "", "json":
		body, err = render.RenderJSON(doc, render.WithIndent())
		contentType = "application/json"
	case "svg":
		opts := []render.SVGOption{render.WithLanes(), render.WithLabels()}
		if q.Get("overscan") == "true" {
			opts = append(opts, render.WithOverscan())
		}
		body = render.RenderSVG(doc, opts...)
		contentType = "image/svg+xml"
	case "dot":
		body = []byte(render.ToDOT(doc, render.DOTOptions{Detailed: q.Get("detailed") == "true"}))
		contentType = "text/vnd.graphviz"
	case "graph":
		body, err = render.RenderDOT(r.Context(), render.ToDOT(doc, render.DOTOptions{}))
		contentType = "image/svg+xml"
	case "text":
		cw, ch := queryInt(q.Get("cell_width"), 10), queryInt(q.Get("cell_height"), 20)
		body = []byte(render.RenderText(doc, render.TextOptions{CellWidth: cw, CellHeight: ch, Legend: true}))
		contentType = "text/plain; charset=utf-8"
	default:
		err = errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want json, svg, dot, graph or text)", format)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// open loads a session and rebuilds its engine.
func (s *Server) open(ctx context.Context, id string) (*session.Session, *scenario.State, error) {
	if err := session.ValidateID(id); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeSessionNotFound, err, "session %s", id)
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "load session %s", id)
	}
	if sess == nil {
		return nil, nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	st, err := sess.Open(s.logger)
	if err != nil {
		return nil, nil, err
	}
	return sess, st, nil
}

func (s *Server) save(ctx context.Context, sess *session.Session, st *scenario.State) error {
	sess.Capture(st)
	sess.Touch(s.opts.SessionTTL)
	if err := s.store.Set(ctx, sess); err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "store session %s", sess.ID)
	}
	return nil
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func parseSteps(raw json.RawMessage) ([]scenario.Step, error) {
	var steps []scenario.Step
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &steps); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode steps")
		}
	} else {
		var step scenario.Step
		if err := json.Unmarshal(trimmed, &step); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode step")
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no steps")
	}
	for i, st := range steps {
		if err := st.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "step %d", i+1)
		}
	}
	return steps, nil
}

func response(sess *session.Session, st *scenario.State) sessionResponse {
	return sessionResponse{ID: sess.ID, ExpiresAt: sess.ExpiresAt, Document: st.Document()}
}

func queryInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

// writeError maps err's code to a status. Broken layout invariants are
// logged since they point at a policy bug rather than a bad request.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = err.Error()
	if errors.IsInvariant(err) {
		s.logger.Error("layout invariant", "code", body.Error.Code, "error", errors.UserMessage(err))
	}
	writeJSON(w, body.Error.Code.HTTPStatus(), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
