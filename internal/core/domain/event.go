package domain

import (
	"strconv"
	"time"
)

// CatalogEventType names a catalog mutation. It doubles as the message routing key.
type CatalogEventType string

const (
	EventProductCreated  CatalogEventType = "product.created"
	EventProductUpdated  CatalogEventType = "product.updated"
	EventProductDeleted  CatalogEventType = "product.deleted"
	EventCategoryCreated CatalogEventType = "category.created"
	EventCategoryDeleted CatalogEventType = "category.deleted"
)

// CatalogEvent records a committed catalog mutation.
type CatalogEvent struct {
	Type        CatalogEventType `json:"type"`
	AggregateID int64            `json:"aggregate_id"`
	ActorID     int64            `json:"actor_id"`
	OccurredAt  time.Time        `json:"occurred_at"`
	Product     *Product         `json:"product,omitempty"`
	Category    *Category        `json:"category,omitempty"`
}

// Key is the ordering key used when fanning events out to workers.
func (e CatalogEvent) Key() string {
	prefix := "product"
	if e.Category != nil || e.Type == EventCategoryCreated || e.Type == EventCategoryDeleted {
		prefix = "category"
	}
	return prefix + ":" + strconv.FormatInt(e.AggregateID, 10)
}
