// Package events fornisce il bus in-process per gli eventi post-commit.
package events

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/diaghi13/fs-gymme-sub005/internal/application/billing"
)

// Handler consuma un evento di riga di vendita creata. Gli errori sono
// gestiti e loggati dal consumer stesso.
type Handler func(event billing.SaleRowCreatedEvent)

// Bus implementa billing.EventPublisher in-process: i consumer girano in una
// goroutine dedicata, fuori dalla transazione di origine. Un fallimento del
// consumer non tocca la vendita già committata.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
	wg       sync.WaitGroup
	log      zerolog.Logger
}

// NewBus crea il bus.
func NewBus(log zerolog.Logger) *Bus {
	return &Bus{log: log}
}

var _ billing.EventPublisher = (*Bus)(nil)

// Subscribe registra un consumer. Da chiamare in fase di bootstrap,
// prima che il bus riceva eventi.
func (b *Bus) Subscribe(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

// Publish consegna l'evento a tutti i consumer registrati, in asincrono.
func (b *Bus) Publish(event billing.SaleRowCreatedEvent) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers))
	copy(handlers, b.handlers)
	b.mu.RUnlock()

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				b.log.Error().
					Interface("panic", r).
					Str("sale_row_id", event.SaleRowID).
					Msg("panic nel consumer dell'evento riga di vendita")
			}
		}()
		for _, h := range handlers {
			h(event)
		}
	}()
}

// Wait attende il drenaggio degli eventi in volo (shutdown ordinato).
func (b *Bus) Wait() {
	b.wg.Wait()
}
