package agenda

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-SchedulingAgent/internal/domain"
	"github.com/m04kA/SMC-SchedulingAgent/internal/integrations/klingo"
)

// AgendaSource источник сырой агенды (клиент Klingo)
type AgendaSource interface {
	GetAgenda(ctx context.Context) (*klingo.AgendaPayload, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Cache единственный слот с сокращенной агендой и TTL
// Один кэш на процесс, общий для всех диалогов: все пользователи видят
// один и тот же снимок доступности в пределах окна TTL. Сам запрос к
// Klingo выполняется вне мьютекса, поэтому два конкурентных обновления
// могут оба сходить за агендой — побеждает последняя запись, что
// приемлемо: данные в пределах секунды практически идентичны
type Cache struct {
	source AgendaSource
	ttl    time.Duration
	clock  TimeProvider

	mu        sync.Mutex
	value     *domain.ReducedAgenda
	expiresAt time.Time
}

// NewCache создает кэш агенды с заданным TTL
func NewCache(source AgendaSource, ttl time.Duration, clock TimeProvider) *Cache {
	if clock == nil {
		clock = &RealTimeProvider{}
	}
	return &Cache{source: source, ttl: ttl, clock: clock}
}

// Reduced возвращает сокращенную агенду: из кэша, если снимок ещё
// действителен, иначе синхронно перечитывает у источника
// Ошибка источника пробрасывается наружу без ретраев
func (c *Cache) Reduced(ctx context.Context) (*domain.ReducedAgenda, error) {
	now := c.clock.Now()

	c.mu.Lock()
	if c.value != nil && now.Before(c.expiresAt) {
		value := c.value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	payload, err := c.source.GetAgenda(ctx)
	if err != nil {
		return nil, err
	}
	reduced := Reduce(payload, now)

	c.mu.Lock()
	c.value = reduced
	c.expiresAt = now.Add(c.ttl)
	c.mu.Unlock()

	return reduced, nil
}
