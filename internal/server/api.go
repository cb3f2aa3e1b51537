package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"

	"playbridge/internal/models"
	"playbridge/internal/repositories"
	"playbridge/internal/services"
	"playbridge/internal/tasks"
)

// API exposes the sync engine over HTTP.
//
// The history repository is optional; when nil, completed syncs are not
// recorded and GET /api/history returns 404.
type API struct {
	registry *services.Registry
	history  *repositories.SyncRunRepository
	logger   *log.Logger
}

// NewAPI creates the sync API backed by the given service registry.
func NewAPI(registry *services.Registry, history *repositories.SyncRunRepository, logger *log.Logger) *API {
	return &API{registry: registry, history: history, logger: logger}
}

// Register mounts all API routes on the router.
func (a *API) Register(r Router) {
	r.Handle(http.MethodGet, "/api/services", http.HandlerFunc(a.handleServices))
	r.Handle(http.MethodGet, "/api/playlists/{service}", http.HandlerFunc(a.handlePlaylists))
	r.Handle(http.MethodGet, "/api/sync/capabilities", http.HandlerFunc(a.handleCapabilities))
	r.Handle(http.MethodPost, "/api/sync/validate", http.HandlerFunc(a.handleValidate))
	r.Handle(http.MethodPost, "/api/sync/playlist", http.HandlerFunc(a.handleSyncPlaylist))
	r.Handle(http.MethodGet, "/api/history", http.HandlerFunc(a.handleHistory))
}

// syncRequest is the JSON body for validate and sync requests.
type syncRequest struct {
	Source              string `json:"source"`
	Destination         string `json:"destination"`
	PlaylistID          string `json:"playlist_id"`
	PlaylistName        string `json:"playlist_name,omitempty"`
	PlaylistDescription string `json:"playlist_description,omitempty"`
	UpdateExisting      bool   `json:"update_existing,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// engineFor resolves a source/destination pair into a sync engine.
func (a *API) engineFor(source, destination string) (*tasks.PlaylistEngine, services.Service, error) {
	if source == "" || destination == "" {
		return nil, nil, fmt.Errorf("source and destination are required")
	}
	if source == destination {
		return nil, nil, fmt.Errorf("source and destination must differ")
	}

	src, err := a.registry.Get(source)
	if err != nil {
		return nil, nil, err
	}
	dst, err := a.registry.Get(destination)
	if err != nil {
		return nil, nil, err
	}

	return tasks.NewPlaylistEngine(src, dst, a.logger), src, nil
}

// handleServices lists the configured services and their capabilities.
func (a *API) handleServices(w http.ResponseWriter, r *http.Request) {
	type serviceEntry struct {
		Key          string              `json:"key"`
		Name         string              `json:"name"`
		Capabilities models.Capabilities `json:"capabilities"`
	}

	entries := []serviceEntry{}
	for _, key := range a.registry.Names() {
		svc, err := a.registry.Get(key)
		if err != nil {
			continue
		}
		entries = append(entries, serviceEntry{
			Key:          key,
			Name:         svc.Name(),
			Capabilities: svc.Capabilities(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"services": entries})
}

// handlePlaylists lists the playlists visible to one service.
func (a *API) handlePlaylists(w http.ResponseWriter, r *http.Request) {
	svc, err := a.registry.Get(r.PathValue("service"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	playlists, err := svc.GetPlaylists(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"playlists": playlists})
}

// handleCapabilities reports the merged capabilities of a service pair.
func (a *API) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	engine, _, err := a.engineFor(r.URL.Query().Get("source"), r.URL.Query().Get("destination"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, engine.SyncCapabilities())
}

// handleValidate runs pre-flight checks for a sync without starting it.
func (a *API) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.PlaylistID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("playlist_id is required"))
		return
	}

	engine, _, err := a.engineFor(req.Source, req.Destination)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, engine.ValidateSync(r.Context(), req.PlaylistID))
}

// progressEvent is the SSE payload for one progress update.
type progressEvent struct {
	Phase   string `json:"phase"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Percent int    `json:"percent"`
	Message string `json:"message"`
}

// handleSyncPlaylist runs a sync and streams progress as Server-Sent Events.
//
// The stream emits a "start" event, one "progress" event per engine update,
// and finally either "complete" with the sync result or "error" with a
// message. Progress updates may be dropped under backpressure; the terminal
// event is always sent.
func (a *API) handleSyncPlaylist(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.PlaylistID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("playlist_id is required"))
		return
	}

	engine, _, err := a.engineFor(req.Source, req.Destination)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sendEvent(w, flusher, "start", map[string]string{
		"source":      req.Source,
		"destination": req.Destination,
		"playlist_id": req.PlaylistID,
	})

	progress := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})

	var result *models.SyncResult
	var syncErr error

	go func() {
		defer close(done)
		defer close(progress)
		result, syncErr = engine.SyncPlaylist(r.Context(), req.PlaylistID, tasks.SyncOptions{
			PlaylistName:        req.PlaylistName,
			PlaylistDescription: req.PlaylistDescription,
			UpdateExisting:      req.UpdateExisting,
		}, progress)
	}()

	for update := range progress {
		sendEvent(w, flusher, "progress", progressEvent{
			Phase:   update.Phase.String(),
			Step:    update.Step,
			Total:   update.Total,
			Percent: update.Percent,
			Message: update.Message,
		})
	}
	<-done

	if a.history != nil && result != nil {
		if _, err := a.history.Record(req.PlaylistID, result); err != nil {
			a.logger.Error("failed to record sync run", "error", err)
		}
	}

	if syncErr != nil {
		sendEvent(w, flusher, "error", errorResponse{Error: syncErr.Error()})
		return
	}
	sendEvent(w, flusher, "complete", result)
}

// handleHistory lists recent sync runs.
func (a *API) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.history == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("sync history not configured"))
		return
	}

	criteria := map[string]any{"limit": 50}
	if v := r.URL.Query().Get("source"); v != "" {
		criteria["source_service"] = v
	}
	if v := r.URL.Query().Get("destination"); v != "" {
		criteria["destination_service"] = v
	}

	runs, err := a.history.List(criteria)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []*repositories.SyncRun{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// sendEvent writes one SSE event and flushes it to the client.
func sendEvent(w http.ResponseWriter, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
