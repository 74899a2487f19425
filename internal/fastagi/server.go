package fastagi

import (
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// HandleFunc procesa una petición AGI ya parseada (entorno y argumentos
// listos). El servidor registra el error devuelto; la clasificación fina
// (colgados, dialplan break) es responsabilidad del despachador
type HandleFunc func(a *AGI) error

// SessionInfo es la instantánea de una sesión activa, para la superficie de
// monitoreo
type SessionInfo struct {
	ID         string    `json:"id"`
	Script     string    `json:"script"`
	Channel    string    `json:"channel"`
	UniqueID   string    `json:"uniqueid"`
	RemoteAddr string    `json:"remote_addr"`
	StartedAt  time.Time `json:"started_at"`
}

// Server representa el servidor FastAGI: una goroutine por conexión, una
// petición por conexión
type Server struct {
	addr     string
	handle   HandleFunc
	listener net.Listener

	mu     sync.Mutex
	active map[string]SessionInfo // sesiones activas por id
}

// NewServer crea un nuevo servidor FastAGI
func NewServer(addr string, handle HandleFunc) *Server {
	return &Server{
		addr:   addr,
		handle: handle,
		active: make(map[string]SessionInfo),
	}
}

// Start inicia el servidor FastAGI
func (s *Server) Start() error {
	log.Printf("[FastAGI] Iniciando servidor en %s", s.addr)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				log.Printf("[FastAGI] Listener cerrado: %v", err)
				return
			}

			go s.handleConnection(conn)
		}
	}()

	log.Printf("[FastAGI] Servidor iniciado correctamente")
	return nil
}

// Stop cierra el listener; las sesiones en curso terminan solas
func (s *Server) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
}

// handleConnection maneja una conexión AGI entrante
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	// Protección contra pánicos: un handler roto no tumba el daemon
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[FastAGI] PANIC RECOVERED: %v", r)
		}
	}()

	agi, err := New(conn)
	if err != nil {
		log.Printf("[FastAGI] Error parseando entorno: %v", err)
		return
	}

	info := SessionInfo{
		ID:         uuid.NewString(),
		Script:     agi.ScriptName(),
		Channel:    agi.Channel(),
		UniqueID:   agi.UniqueID(),
		RemoteAddr: conn.RemoteAddr().String(),
		StartedAt:  time.Now(),
	}

	s.mu.Lock()
	s.active[info.ID] = info
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.active, info.ID)
		s.mu.Unlock()
	}()

	if err := s.handle(agi); err != nil {
		log.Printf("[FastAGI] Error en petición %s (canal %s): %v", info.Script, info.Channel, err)
	}
}

// ScriptName devuelve el nombre del script pedido por el switch (la ruta de
// la URL agi:// con que el dial-plan invocó al daemon)
func (a *AGI) ScriptName() string {
	return a.Env["agi_network_script"]
}

// ActiveSessionCount devuelve el número de sesiones activas
func (s *Server) ActiveSessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Sessions devuelve la instantánea de las sesiones activas
func (s *Server) Sessions() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]SessionInfo, 0, len(s.active))
	for _, info := range s.active {
		sessions = append(sessions, info)
	}
	return sessions
}
