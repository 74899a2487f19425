package database

import (
	"log"
	"sync"
	"time"
)

const (
	// PrunerInterval es la frecuencia de la poda del registro de peticiones
	PrunerInterval = 1 * time.Hour
	// LogRetention es cuánto se conserva un registro antes de podarlo
	LogRetention = 30 // días
)

// RequestLogPruner poda periódicamente el registro de peticiones para que la
// tabla no crezca sin límite
type RequestLogPruner struct {
	repo     *Repository
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
}

// NewRequestLogPruner crea un nuevo pruner
func NewRequestLogPruner(repo *Repository) *RequestLogPruner {
	return &RequestLogPruner{
		repo:     repo,
		stopChan: make(chan struct{}),
	}
}

// Start arranca el worker de poda
func (p *RequestLogPruner) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.wg.Add(1)
	p.mu.Unlock()

	go p.run()
	log.Printf("[LogPruner] Iniciado, retención de %d días", LogRetention)
}

// Stop detiene el worker
func (p *RequestLogPruner) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopChan)
	p.wg.Wait()
	log.Println("[LogPruner] Detenido")
}

func (p *RequestLogPruner) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(PrunerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *RequestLogPruner) prune() {
	query := `
		DELETE FROM agid_request_log
		WHERE created_at < NOW() - INTERVAL ? DAY
		LIMIT 10000
	`

	result, err := p.repo.conn.DB.Exec(query, LogRetention)
	if err != nil {
		log.Printf("[LogPruner] Error podando registros: %v", err)
		return
	}

	rows, _ := result.RowsAffected()
	if rows > 0 {
		log.Printf("[LogPruner] Podados %d registros antiguos", rows)
	}
}
