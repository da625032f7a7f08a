// Package server exposes the logbook over a localhost JSON API: the
// dashboard, the mission form session, suggestion lists, geolocation,
// sketch rendering, export and backup/restore.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/saviobatista/rpas-logbook/internal/dashboard"
	"github.com/saviobatista/rpas-logbook/internal/export"
	"github.com/saviobatista/rpas-logbook/internal/geo"
	"github.com/saviobatista/rpas-logbook/internal/lists"
	"github.com/saviobatista/rpas-logbook/internal/mission"
	"github.com/saviobatista/rpas-logbook/internal/sketch"
	"github.com/saviobatista/rpas-logbook/internal/store"
	"github.com/saviobatista/rpas-logbook/internal/types"
)

// maxRestoreBytes bounds the restore upload; sketches and weather photos
// make real backups a few megabytes.
const maxRestoreBytes = 64 << 20

// Default sketch surface, matching the form's drawing area.
const (
	defaultSketchWidth  = 600
	defaultSketchHeight = 400
)

// Server handles the logbook API. It owns at most one form draft at a time:
// one user drives one draft.
type Server struct {
	store   store.Store
	locator *geo.Locator
	logger  *zap.Logger
	prefix  string
	now     func() time.Time

	mu    sync.Mutex
	draft *mission.Form
}

// New creates a server around the given store and locator.
func New(st store.Store, locator *geo.Locator, logger *zap.Logger, prefix string) *Server {
	return &Server{
		store:   st,
		locator: locator,
		logger:  logger,
		prefix:  prefix,
		now:     time.Now,
	}
}

// Handler returns the API routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/missions", s.handleListMissions)
	mux.HandleFunc("GET /api/missions/{id}", s.handleGetMission)
	mux.HandleFunc("DELETE /api/missions/{id}", s.handleDeleteMission)

	mux.HandleFunc("POST /api/draft", s.handleOpenDraft)
	mux.HandleFunc("GET /api/draft", s.handleGetDraft)
	mux.HandleFunc("POST /api/draft/update", s.handleDraftUpdate)
	mux.HandleFunc("POST /api/draft/coords", s.handleDraftCoords)
	mux.HandleFunc("POST /api/draft/aerodromes", s.handleDraftAerodromes)
	mux.HandleFunc("POST /api/draft/risk", s.handleDraftRisk)
	mux.HandleFunc("POST /api/draft/next", s.handleDraftNext)
	mux.HandleFunc("POST /api/draft/back", s.handleDraftBack)
	mux.HandleFunc("POST /api/draft/save", s.handleDraftSave)

	mux.HandleFunc("GET /api/lists", s.handleGetLists)
	mux.HandleFunc("POST /api/lists/{name}", s.handleAddListEntry)
	mux.HandleFunc("DELETE /api/lists/{name}", s.handleRemoveListEntry)

	mux.HandleFunc("POST /api/locate", s.handleLocate)
	mux.HandleFunc("POST /api/sketch", s.handleSketch)

	mux.HandleFunc("GET /api/export/csv", s.handleExportCSV)
	mux.HandleFunc("GET /api/backup", s.handleBackup)
	mux.HandleFunc("POST /api/restore", s.handleRestore)

	return mux
}

// --- dashboard ---

func (s *Server) handleListMissions(w http.ResponseWriter, r *http.Request) {
	missions, err := s.store.ListMissions(r.Context())
	if err != nil {
		s.storeError(w, "list missions", err)
		return
	}

	matched := dashboard.Filter(missions, r.URL.Query().Get("q"))
	views := make([]missionView, len(matched))
	for i, m := range matched {
		views[i] = missionView{Mission: m, TimeRange: timeRange(m)}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(matched),
		"missions": views,
	})
}

// missionView is a dashboard list entry: the record plus its card clock line.
type missionView struct {
	types.Mission
	TimeRange string `json:"timeRange,omitempty"`
}

func timeRange(m types.Mission) string {
	if m.Start == "" {
		return ""
	}
	if m.End == "" {
		return types.FormatClock(m.Start)
	}
	return types.FormatClock(m.Start) + " - " + types.FormatClock(m.End)
}

func (s *Server) handleGetMission(w http.ResponseWriter, r *http.Request) {
	m, err := s.store.GetMission(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "mission not found")
		return
	}
	if err != nil {
		s.storeError(w, "get mission", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMission(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteMission(r.Context(), id); err != nil {
		s.storeError(w, "delete mission", err)
		return
	}
	s.logger.Info("mission deleted", zap.String("id", id))
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- form wizard ---

func (s *Server) handleOpenDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	form := mission.New()
	if req.ID != "" {
		m, err := s.store.GetMission(r.Context(), req.ID)
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "mission not found")
			return
		}
		if err != nil {
			s.storeError(w, "load mission for editing", err)
			return
		}
		form = mission.Edit(*m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = form
	s.writeDraft(w, form)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, func(form *mission.Form) error { return nil })
}

func (s *Server) handleDraftUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withDraft(w, func(form *mission.Form) error {
		return form.Set(req.Field, req.Value)
	})
}

func (s *Server) handleDraftCoords(w http.ResponseWriter, r *http.Request) {
	var req types.Coordinates
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withDraft(w, func(form *mission.Form) error {
		form.SetCoords(req.Lat, req.Lng)
		return nil
	})
}

func (s *Server) handleDraftAerodromes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Op    string `json:"op"`
		Value string `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withDraft(w, func(form *mission.Form) error {
		switch req.Op {
		case "add":
			form.AddAerodrome(req.Value)
		case "remove":
			form.RemoveAerodrome(req.Value)
		default:
			return fmt.Errorf("unknown aerodrome op %q", req.Op)
		}
		return nil
	})
}

func (s *Server) handleDraftRisk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hazard  string `json:"hazard"`
		Field   string `json:"field"`
		Value   string `json:"value"`
		Checked bool   `json:"checked"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.withDraft(w, func(form *mission.Form) error {
		if req.Field == "checked" {
			return form.CheckRisk(req.Hazard, req.Checked)
		}
		return form.SetRiskField(req.Hazard, req.Field, req.Value)
	})
}

func (s *Server) handleDraftNext(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, func(form *mission.Form) error {
		form.Next()
		return nil
	})
}

func (s *Server) handleDraftBack(w http.ResponseWriter, r *http.Request) {
	s.withDraft(w, func(form *mission.Form) error {
		form.Back()
		return nil
	})
}

func (s *Server) handleDraftSave(w http.ResponseWriter, r *http.Request) {
	// The lock spans the whole save so no other draft request can mutate the
	// form mid-save or observe a half-closed session.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draft == nil {
		writeError(w, http.StatusConflict, "no draft in progress")
		return
	}

	saved, err := s.draft.Save(s.now())
	if errors.Is(err, mission.ErrValidation) || errors.Is(err, mission.ErrNotFinalStep) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	ls, err := s.loadLists(r)
	if err != nil {
		s.storeError(w, "load lists", err)
		return
	}
	if lists.Learn(ls, saved) {
		if err := s.store.PutLists(r.Context(), ls); err != nil {
			s.storeError(w, "save lists", err)
			return
		}
	}

	if err := s.store.PutMission(r.Context(), saved); err != nil {
		s.storeError(w, "save mission", err)
		return
	}

	s.draft = nil

	s.logger.Info("mission saved",
		zap.String("id", saved.ID),
		zap.String("location", saved.Location),
		zap.String("pilot", saved.Pilot))
	writeJSON(w, http.StatusOK, saved)
}

// --- suggestion lists ---

func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	ls, err := s.loadLists(r)
	if err != nil {
		s.storeError(w, "load lists", err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

func (s *Server) handleAddListEntry(w http.ResponseWriter, r *http.Request) {
	s.mutateList(w, r, lists.Add)
}

func (s *Server) handleRemoveListEntry(w http.ResponseWriter, r *http.Request) {
	s.mutateList(w, r, lists.Remove)
}

func (s *Server) mutateList(w http.ResponseWriter, r *http.Request, op func(types.SuggestionLists, string, string) bool) {
	name := r.PathValue("name")
	if !lists.ValidName(name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown list %q", name))
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ls, err := s.loadLists(r)
	if err != nil {
		s.storeError(w, "load lists", err)
		return
	}
	if op(ls, name, req.Value) {
		if err := s.store.PutLists(r.Context(), ls); err != nil {
			s.storeError(w, "save lists", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, ls[name])
}

// --- geolocation ---

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	fix, err := s.locator.Locate(r.Context())
	if err != nil {
		s.logger.Warn("geolocation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "could not acquire position; coordinates unchanged")
		return
	}
	writeJSON(w, http.StatusOK, fix)
}

// --- sketch ---

func (s *Server) handleSketch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width       int              `json:"width"`
		Height      int              `json:"height"`
		Color       string           `json:"color"`
		StrokeWidth float64          `json:"strokeWidth"`
		Background  string           `json:"background"`
		Paths       [][]sketch.Point `json:"paths"`

		// When set, path points are client (touch/pointer) coordinates and
		// Rect is the on-screen bounds of the drawing surface.
		Rect *struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
			W float64 `json:"w"`
			H float64 `json:"h"`
		} `json:"rect"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Width <= 0 {
		req.Width = defaultSketchWidth
	}
	if req.Height <= 0 {
		req.Height = defaultSketchHeight
	}

	canvas := sketch.New(req.Width, req.Height)
	if req.Background != "" {
		data, err := base64.StdEncoding.DecodeString(req.Background)
		if err != nil {
			writeError(w, http.StatusBadRequest, "background is not valid base64")
			return
		}
		img, err := sketch.DecodeImage(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		canvas.SetBackground(img)
	}
	if req.Color != "" {
		if err := canvas.SetColor(req.Color); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.StrokeWidth > 0 {
		canvas.SetStrokeWidth(req.StrokeWidth)
	}
	for _, path := range req.Paths {
		if req.Rect != nil {
			mapped := make([]sketch.Point, len(path))
			for i, p := range path {
				mapped[i] = sketch.Normalize(p.X, p.Y,
					req.Rect.X, req.Rect.Y, req.Rect.W, req.Rect.H,
					req.Width, req.Height)
			}
			path = mapped
		}
		canvas.DrawPath(path)
	}

	snap, err := canvas.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"sketch": base64.StdEncoding.EncodeToString(snap),
	})
}

// --- export / backup / restore ---

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	missions, err := s.store.ListMissions(r.Context())
	if err != nil {
		s.storeError(w, "list missions", err)
		return
	}
	if len(missions) == 0 {
		writeError(w, http.StatusNotFound, "no missions to export")
		return
	}

	filename := export.CSVFilename(s.prefix, s.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteCSV(w, dashboard.Filter(missions, "")); err != nil {
		s.logger.Error("csv export failed", zap.Error(err))
	}
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	missions, err := s.store.ListMissions(r.Context())
	if err != nil {
		s.storeError(w, "list missions", err)
		return
	}
	ls, err := s.loadLists(r)
	if err != nil {
		s.storeError(w, "load lists", err)
		return
	}

	filename := export.BackupFilename(s.prefix, s.now())
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := export.WriteBackup(w, dashboard.Filter(missions, ""), ls, s.now()); err != nil {
		s.logger.Error("backup failed", zap.Error(err))
	}
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRestoreBytes))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("restore document exceeds %d bytes", tooLarge.Limit))
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read restore document")
		return
	}

	doc, err := export.ParseBackup(body)
	if errors.Is(err, export.ErrMalformedBackup) {
		writeError(w, http.StatusBadRequest, "not a valid backup document: missing mission array")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The client confirms against this count before committing.
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"confirmRequired": true,
			"count":           len(doc.Missions),
		})
		return
	}

	if err := s.store.Restore(r.Context(), doc.Missions, doc.Lists); err != nil {
		s.storeError(w, "restore", err)
		return
	}

	// Re-read so the response reflects the store, not the request.
	missions, err := s.store.ListMissions(r.Context())
	if err != nil {
		s.storeError(w, "list missions", err)
		return
	}

	s.logger.Info("restore complete", zap.Int("missions", len(missions)))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "restored",
		"count":  len(missions),
	})
}

// --- helpers ---

// loadLists reads the persisted suggestion lists with the built-in defaults
// merged in, so new defaults reappear even in old stores.
func (s *Server) loadLists(r *http.Request) (types.SuggestionLists, error) {
	persisted, err := s.store.GetLists(r.Context())
	if err != nil {
		return nil, err
	}
	return lists.MergeDefaults(persisted), nil
}

// withDraft runs op against the current draft and writes the resulting draft
// state, or a conflict when no draft is open. The session lock is held across
// the mutation and the response snapshot; Form itself is not concurrency-safe.
func (s *Server) withDraft(w http.ResponseWriter, op func(*mission.Form) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.draft == nil {
		writeError(w, http.StatusConflict, "no draft in progress")
		return
	}
	if err := op(s.draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeDraft(w, s.draft)
}

func (s *Server) writeDraft(w http.ResponseWriter, form *mission.Form) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"step":  form.Step(),
		"draft": form.Draft(),
	})
}

func (s *Server) storeError(w http.ResponseWriter, action string, err error) {
	s.logger.Error("store operation failed", zap.String("action", action), zap.Error(err))
	writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to %s", action))
}

func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil // empty body means all-defaults
	}
	if err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
