package cache

import "time"

func NewWithClock[T any](ttl time.Duration, now func() time.Time) *InMemory[T] {
	return newWithClock[T](ttl, now)
}

func (c *InMemory[T]) Sweep() { c.sweep() }
