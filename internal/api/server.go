package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"agid/internal/agid"
	"agid/internal/auth"
	"agid/internal/config"
	"agid/internal/database"
	"agid/internal/fastagi"
	"agid/internal/websocket"
)

// Server es la superficie REST de monitoreo del daemon
type Server struct {
	config     *config.Config
	repo       *database.Repository
	authn      *auth.Authenticator
	agiServer  *fastagi.Server
	dispatcher *agid.Dispatcher
	hub        *websocket.Hub
}

// NewServer crea un nuevo servidor API
func NewServer(cfg *config.Config, repo *database.Repository, authn *auth.Authenticator,
	agiServer *fastagi.Server, dispatcher *agid.Dispatcher, hub *websocket.Hub) *Server {
	return &Server{
		config:     cfg,
		repo:       repo,
		authn:      authn,
		agiServer:  agiServer,
		dispatcher: dispatcher,
		hub:        hub,
	}
}

// Start inicia el servidor HTTP
func (s *Server) Start() error {
	addr := s.config.API.Address()
	log.Printf("[API] Iniciando servidor en %s", addr)

	mux := http.NewServeMux()

	// Endpoints públicos
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/login", s.handleLogin)
	mux.HandleFunc("/ws", s.hub.HandleWebSocket)

	// Endpoints protegidos
	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("/api/v1/sessions", s.handleSessions)
	protectedMux.HandleFunc("/api/v1/handlers", s.handleHandlers)
	protectedMux.HandleFunc("/api/v1/requests", s.handleRequests)

	mainHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/login" || !strings.HasPrefix(r.URL.Path, "/api/v1/") {
			mux.ServeHTTP(w, r)
			return
		}
		s.authn.Middleware(protectedMux).ServeHTTP(w, r)
	})

	log.Printf("[API] Servidor iniciado correctamente")
	return http.ListenAndServe(addr, s.corsMiddleware(mainHandler))
}

// corsMiddleware agrega headers CORS si está habilitado y recupera pánicos
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.API.EnableCORS {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[API] PANIC RECOVERED: %v", rec)
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, `{"error": "Internal Server Error"}`)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// handleHealth endpoint de salud
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":          "ok",
		"active_sessions": s.agiServer.ActiveSessionCount(),
		"ws_clients":      s.hub.ClientCount(),
	})
}

// handleLogin procesa el inicio de sesión
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "JSON inválido", http.StatusBadRequest)
		return
	}

	user, err := s.repo.GetAPIUser(creds.Username)
	if err != nil {
		// No revelar si el usuario existe
		log.Printf("[Auth] Fallo login para usuario: %s", creds.Username)
		http.Error(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}

	if err := auth.VerifyPassword(user.PasswordHash, creds.Password); err != nil {
		log.Printf("[Auth] Contraseña incorrecta para usuario: %s", creds.Username)
		http.Error(w, "Credenciales inválidas", http.StatusUnauthorized)
		return
	}

	token, err := s.authn.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		http.Error(w, "Error generando token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"token": token,
		"user": map[string]string{
			"username": user.Username,
			"role":     user.Role,
		},
	})
}

// handleSessions devuelve la instantánea de sesiones AGI activas
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count":    s.agiServer.ActiveSessionCount(),
		"sessions": s.agiServer.Sessions(),
	})
}

// handleHandlers devuelve los nombres de script registrados
func (s *Server) handleHandlers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"handlers": s.dispatcher.Scripts(),
	})
}

// handleRequests devuelve el registro reciente de peticiones atendidas
func (s *Server) handleRequests(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 {
			limit = l
		}
	}

	logs, err := s.repo.GetRecentRequestLogs(limit)
	if err != nil {
		log.Printf("[API] Error consultando registros: %v", err)
		http.Error(w, "Error obteniendo registros", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
