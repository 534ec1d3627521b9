// Command server wires every internal component together and exposes
// the thin HTTP surface described in §6 of the spec. The HTTP layer
// itself is explicitly out of the core's scope -- this file is glue,
// not behavior: request parsing in, Orchestrator/DAO/Schedule calls
// out, JSON back.
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/answerextract"
	"github.com/front-desk-ai/rag-orchestrator/internal/config"
	"github.com/front-desk-ai/rag-orchestrator/internal/embeddings"
	"github.com/front-desk-ai/rag-orchestrator/internal/entity"
	"github.com/front-desk-ai/rag-orchestrator/internal/intent"
	"github.com/front-desk-ai/rag-orchestrator/internal/knowledge"
	"github.com/front-desk-ai/rag-orchestrator/internal/kvstore"
	"github.com/front-desk-ai/rag-orchestrator/internal/orchestrator"
	"github.com/front-desk-ai/rag-orchestrator/internal/schedule"
	"github.com/front-desk-ai/rag-orchestrator/internal/session"
	"github.com/front-desk-ai/rag-orchestrator/internal/vectordb"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	kv, err := kvstore.NewRedisStore(cfg.KVStore.URL, cfg.KVStore.Password, logger)
	if err != nil {
		logger.Fatal("failed to connect to kv store", zap.Error(err))
	}

	provider := embeddings.NewHTTPProvider(os.Getenv("EMBEDDING_PROVIDER_URL"), cfg.Embed.APIKey, "", cfg.Embed.Timeout, logger)
	embedSvc := embeddings.NewService(provider, embeddings.NewKVCache(kv), 2048)

	vectorClient := vectordb.NewClient(vectordb.Config{
		URL:            cfg.VectorDB.URL,
		APIKey:         cfg.VectorDB.APIKey,
		CollectionName: cfg.VectorDB.CollectionName,
		Dim:            cfg.EmbeddingDim,
	}, logger)

	dao := knowledge.NewDAO(vectorClient, embedSvc, kv, logger)
	answerExtractor := answerextract.NewExtractor(embedSvc)

	intentBackend := intent.SelectBackend(os.Getenv("INTENT_MODEL_PATH"), logger)
	classifier := intent.NewClassifier(intentBackend)

	entities := entity.NewExtractor()
	scheduleIface := schedule.NewInterface(kv, logger)
	memory := session.NewMemory(kv, logger)

	orch := orchestrator.New(classifier, entities, dao, answerExtractor, scheduleIface, memory, kv, logger)

	srv := newServer(orch, dao, scheduleIface, logger)

	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	httpServer := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if err := kv.Close(); err != nil {
		logger.Error("kv store close failed", zap.Error(err))
	}
}

// server holds the handlers; kept tiny and un-abstracted since the HTTP
// surface is explicitly not part of the core per §1.
type server struct {
	orch     *orchestrator.Orchestrator
	dao      *knowledge.DAO
	schedule *schedule.Interface
	logger   *zap.Logger
}

func newServer(orch *orchestrator.Orchestrator, dao *knowledge.DAO, sched *schedule.Interface, logger *zap.Logger) *server {
	return &server{orch: orch, dao: dao, schedule: sched, logger: logger}
}

func (s *server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/chat", s.handleChat)
	mux.HandleFunc("/knowledge", s.handleKnowledge)
	mux.HandleFunc("/knowledge/reset", s.handleKnowledgeReset)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	orchestrator.Response
	SessionID string `json:"session_id"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	resp := s.orch.Handle(r.Context(), req.Message, req.SessionID)
	writeJSON(w, http.StatusOK, chatResponse{Response: resp, SessionID: req.SessionID})
}

type knowledgeRequest struct {
	Documents []knowledge.Document `json:"documents"`
}

func (s *server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	var req knowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	chunkCount, err := s.dao.Upsert(r.Context(), req.Documents)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "ingest failed", "details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":             true,
		"document_count": len(req.Documents),
		"chunk_count":    chunkCount,
	})
}

func (s *server) handleKnowledgeReset(w http.ResponseWriter, r *http.Request) {
	if err := s.dao.Reset(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "reset failed", "details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

