package database

import (
	"database/sql"
	"log"
	"strings"
	"sync"
	"time"
)

const (
	BatchSize     = 500
	FlushInterval = 500 * time.Millisecond
	BufferSize    = 5000
)

// RequestLogBatcher acumula registros de peticiones y los inserta en lote.
// El camino caliente (una inserción por petición AGI) nunca toca la base
// de datos de forma síncrona
type RequestLogBatcher struct {
	db        *sql.DB
	entries   chan RequestLog
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewRequestLogBatcher crea un nuevo batcher
func NewRequestLogBatcher(db *sql.DB) *RequestLogBatcher {
	return &RequestLogBatcher{
		db:      db,
		entries: make(chan RequestLog, BufferSize),
	}
}

// Start arranca el worker de fondo
func (b *RequestLogBatcher) Start() {
	b.mu.Lock()
	if b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = true
	b.wg.Add(1)
	b.mu.Unlock()

	go b.worker()
	log.Println("[LogBatcher] Worker iniciado")
}

// Stop vacía lo pendiente y detiene el worker
func (b *RequestLogBatcher) Stop() {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = false
	b.mu.Unlock()

	close(b.entries)
	b.wg.Wait()
	log.Println("[LogBatcher] Worker detenido")
}

// Queue encola un registro. Si el buffer está lleno se descarta para no
// bloquear el camino de atención de peticiones
func (b *RequestLogBatcher) Queue(entry RequestLog) {
	select {
	case b.entries <- entry:
	default:
		log.Printf("[LogBatcher] ADVERTENCIA: buffer lleno, descartando registro de %s", entry.Script)
	}
}

func (b *RequestLogBatcher) worker() {
	defer b.wg.Done()

	buffer := make([]RequestLog, 0, BatchSize)
	ticker := time.NewTicker(FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry, ok := <-b.entries:
			if !ok {
				// Canal cerrado, vaciar lo que queda
				if len(buffer) > 0 {
					b.flush(buffer)
				}
				return
			}
			buffer = append(buffer, entry)
			if len(buffer) >= BatchSize {
				b.flush(buffer)
				buffer = buffer[:0]
			}
		case <-ticker.C:
			if len(buffer) > 0 {
				b.flush(buffer)
				buffer = buffer[:0]
			}
		}
	}
}

func (b *RequestLogBatcher) flush(entries []RequestLog) {
	if len(entries) == 0 {
		return
	}

	start := time.Now()

	var query strings.Builder
	query.WriteString(`INSERT INTO agid_request_log (script, channel, uniqueid, status, duration_ms, created_at) VALUES `)

	args := make([]any, 0, len(entries)*6)
	placeholders := make([]string, 0, len(entries))
	for _, e := range entries {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?)")
		createdAt := e.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		args = append(args, e.Script, e.Channel, e.UniqueID, e.Status, e.DurationMs, createdAt)
	}
	query.WriteString(strings.Join(placeholders, ", "))

	if _, err := b.db.Exec(query.String(), args...); err != nil {
		log.Printf("[LogBatcher] ERROR insertando lote de %d registros: %v", len(entries), err)
		return
	}
	log.Printf("[LogBatcher] Insertados %d registros en %v", len(entries), time.Since(start))
}
