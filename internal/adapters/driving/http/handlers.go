package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// maxUploadBytes caps one document upload request
const maxUploadBytes = 32 << 20

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health endpoints

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady checks the backing stores before reporting ready
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":  s.version,
		"greeting": domain.Greeting,
	})
}

// Chat endpoints

// ChatRequest is one user message addressed to a session
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// BookingOutcome reports what happened to a booking completed this turn
type BookingOutcome struct {
	ID        string `json:"id"`
	Persisted bool   `json:"persisted"`
	Notified  bool   `json:"notified"`
	Warning   string `json:"warning,omitempty"`
}

// ChatResponse is the assistant's side of one turn
type ChatResponse struct {
	SessionID string          `json:"session_id"`
	Reply     string          `json:"reply"`
	Booking   *BookingOutcome `json:"booking,omitempty"`
}

// handleChat runs one conversation turn. When the turn completes a booking
// flow, the finalized record is handed to the booking service here, once.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	result, err := s.conversationService.HandleUserMessage(r.Context(), req.SessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "message must not be empty")
		case errors.Is(err, domain.ErrSessionBusy):
			writeError(w, http.StatusConflict, "a turn is already in progress for this session")
		default:
			s.logger.Error("chat turn failed", "session", req.SessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "conversation turn failed")
		}
		return
	}

	resp := ChatResponse{
		SessionID: req.SessionID,
		Reply:     result.Reply,
	}

	if result.CompletedBooking != nil {
		resp.Booking = s.emitBooking(r, result.CompletedBooking)
	}

	writeJSON(w, http.StatusOK, resp)
}

// emitBooking hands one completed booking to the collaborators.
// A persistence failure is reported in the outcome, not as a turn failure:
// the conversation already concluded and the reply still stands.
func (s *Server) emitBooking(r *http.Request, rec *domain.BookingRecord) *BookingOutcome {
	emit, err := s.bookingService.Emit(r.Context(), rec)
	if err != nil {
		s.logger.Error("booking emission failed", "booking", rec.ID, "error", err)
		return &BookingOutcome{
			ID:      rec.ID,
			Warning: "booking could not be persisted",
		}
	}

	outcome := &BookingOutcome{
		ID:        emit.BookingID,
		Persisted: emit.Persisted,
		Notified:  emit.Notified,
		Warning:   emit.Warning,
	}
	if emit.Warning != "" {
		s.logger.Warn("booking emitted with warning", "booking", emit.BookingID, "warning", emit.Warning)
	}
	return outcome
}

// HistoryResponse is a session's message history
type HistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []domain.Message `json:"messages"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	messages, err := s.conversationService.History(r.Context(), sessionID)
	if err != nil {
		s.logger.Error("history lookup failed", "session", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

func (s *Server) handleResetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.conversationService.Reset(r.Context(), sessionID); err != nil {
		s.logger.Error("session reset failed", "session", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to reset session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Knowledge base endpoints

// UploadedTask reports one enqueued ingestion task
type UploadedTask struct {
	TaskID   string `json:"task_id"`
	Document string `json:"document"`
}

// UploadResponse lists the ingestion tasks created for an upload batch
type UploadResponse struct {
	Tasks []UploadedTask `json:"tasks"`
}

// handleUploadDocuments accepts a multipart batch of documents and queues
// one ingestion task per file. Ingestion itself happens in the worker.
func (s *Server) handleUploadDocuments(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart request")
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files provided")
		return
	}

	resp := UploadResponse{Tasks: make([]UploadedTask, 0, len(files))}

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read uploaded file")
			return
		}

		task := domain.NewIngestTask(domain.RawDocument{
			Name:     header.Filename,
			MimeType: detectMimeType(header),
			Data:     data,
		})
		if err := s.taskQueue.Enqueue(r.Context(), task); err != nil {
			s.logger.Error("failed to enqueue ingest task", "document", header.Filename, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to queue document")
			return
		}

		resp.Tasks = append(resp.Tasks, UploadedTask{
			TaskID:   task.ID,
			Document: header.Filename,
		})
	}

	writeJSON(w, http.StatusAccepted, resp)
}

// detectMimeType resolves a content type for an upload, preferring the
// declared header and falling back to the file extension
func detectMimeType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if ct := mime.TypeByExtension(filepath.Ext(header.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// TaskResponse is the status view of an ingestion task.
// The document payload is deliberately omitted.
type TaskResponse struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Document    string     `json:"document"`
	Status      string     `json:"status"`
	Attempts    int        `json:"attempts"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := r.PathValue("id")

	task, err := s.taskQueue.GetTask(r.Context(), taskID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		s.logger.Error("task lookup failed", "task", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	writeJSON(w, http.StatusOK, TaskResponse{
		ID:          task.ID,
		Type:        string(task.Type),
		Document:    task.Payload["name"],
		Status:      string(task.Status),
		Attempts:    task.Attempts,
		Error:       task.Error,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		CompletedAt: task.CompletedAt,
	})
}

// SearchRequest is a nearest-neighbour query over the knowledge base
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k,omitempty"`
}

// SearchResult is one retrieved chunk with its score
type SearchResult struct {
	Content  string  `json:"content"`
	Source   string  `json:"source"`
	Position int     `json:"position"`
	Score    float64 `json:"score"`
}

// SearchResponse lists retrieved chunks, most relevant first
type SearchResponse struct {
	Results []SearchResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks, err := s.retrieverService.Retrieve(r.Context(), req.Query, req.K)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "query must not be empty")
		case errors.Is(err, domain.ErrEmbeddingUnavailable):
			writeError(w, http.StatusServiceUnavailable, "embedding service unavailable")
		default:
			s.logger.Error("search failed", "error", err)
			writeError(w, http.StatusInternalServerError, "search failed")
		}
		return
	}

	resp := SearchResponse{Results: make([]SearchResult, 0, len(chunks))}
	for _, rc := range chunks {
		resp.Results = append(resp.Results, SearchResult{
			Content:  rc.Chunk.Content,
			Source:   rc.Chunk.SourceDocument,
			Position: rc.Chunk.Position,
			Score:    rc.Score,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// Booking endpoints

// BookingsResponse lists persisted bookings, newest first
type BookingsResponse struct {
	Bookings []*domain.BookingRecord `json:"bookings"`
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	bookings, err := s.bookingService.List(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("booking list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []*domain.BookingRecord{}
	}

	writeJSON(w, http.StatusOK, BookingsResponse{Bookings: bookings})
}

// Admin endpoints

// StatsResponse combines knowledge base and queue counters
type StatsResponse struct {
	KnowledgeBase *domain.KnowledgeBaseStats `json:"knowledge_base"`
	Queue         *QueueStatsView            `json:"queue,omitempty"`
}

// QueueStatsView is the queue counter subset exposed over the API
type QueueStatsView struct {
	Pending    int64 `json:"pending"`
	Processing int64 `json:"processing"`
	Failed     int64 `json:"failed"`
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	kb, err := s.indexerService.Stats(r.Context())
	if err != nil {
		s.logger.Error("stats lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	resp := StatsResponse{KnowledgeBase: kb}

	if s.taskQueue != nil {
		if qs, err := s.taskQueue.Stats(r.Context()); err == nil {
			resp.Queue = &QueueStatsView{
				Pending:    qs.PendingCount,
				Processing: qs.ProcessingCount,
				Failed:     qs.FailedCount,
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// Helpers

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
