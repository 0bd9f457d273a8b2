package core

import (
	"fmt"
	"sync"
)

// Cache mirrors one remote list. Positions in the cache are the client-visible
// positions used to address update and delete.
type Cache[T Record] struct {
	mu      sync.RWMutex
	records []T
	epoch   uint64
}

// NewCache returns an empty cache at epoch 0.
func NewCache[T Record]() *Cache[T] {
	return &Cache[T]{}
}

// ReplaceAll installs the result of a full reload and starts a new epoch.
func (c *Cache[T]) ReplaceAll(records []T) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(make([]T, 0, len(records)), records...)
	c.epoch++
	return c.epoch
}

// Clear drops every record and starts a new epoch.
func (c *Cache[T]) Clear() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = nil
	c.epoch++
	return c.epoch
}

// InsertEnd appends rec and returns its position.
func (c *Cache[T]) InsertEnd(rec T) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records = append(c.records, rec)
	return len(c.records) - 1
}

// ReplaceAt swaps the record at position.
func (c *Cache[T]) ReplaceAt(position int, rec T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(position); err != nil {
		return err
	}
	c.records[position] = rec
	return nil
}

// RemoveAt deletes the record at position; later records shift down by one.
func (c *Cache[T]) RemoveAt(position int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(position); err != nil {
		return err
	}
	c.records = append(c.records[:position], c.records[position+1:]...)
	return nil
}

// At returns the record at position.
func (c *Cache[T]) At(position int) (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.check(position); err != nil {
		var zero T
		return zero, err
	}
	return c.records[position], nil
}

// IndexOf returns the position of the first record with id, or NoPosition.
func (c *Cache[T]) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i, r := range c.records {
		if r.RecordID() == id {
			return i
		}
	}
	return NoPosition
}

// Snapshot returns a copy of the records.
func (c *Cache[T]) Snapshot() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append(make([]T, 0, len(c.records)), c.records...)
}

// Entries returns the records paired with their positions.
func (c *Cache[T]) Entries() []Entry[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry[T], len(c.records))
	for i, r := range c.records {
		out[i] = Entry[T]{Position: i, Record: r}
	}
	return out
}

func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

func (c *Cache[T]) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// check must be called with the lock held.
func (c *Cache[T]) check(position int) error {
	if position < 0 || position >= len(c.records) {
		return Wrap(KindStalePosition, "cache", fmt.Sprintf("position %d out of range (len %d)", position, len(c.records)), nil)
	}
	return nil
}
