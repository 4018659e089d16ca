package cache

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"

	"github.com/domino14/realkelly/kelly"
	"github.com/domino14/realkelly/selection"
)

// The cache keeps built models around, so that solving the same slate
// again (with another bankroll, say, or another method) skips the
// enumeration. A model depends only on the selections and the max multiple.

const DefaultCapacity = 8

type cache struct {
	sync.Mutex
	capacity int
	models   map[uint64]*kelly.Model
	// order holds keys oldest first.
	order []uint64
}

type buildFunc func(sels []selection.Selection, maxMultiple int) (*kelly.Model, error)

// GlobalModelCache is the process-wide model cache.
var GlobalModelCache *cache

// Key hashes everything a model is built from.
func Key(sels []selection.Selection, maxMultiple int) uint64 {
	var sb strings.Builder
	for _, s := range sels {
		sb.WriteString(s.Name)
		sb.WriteByte(0x1f)
		sb.WriteString(strconv.FormatFloat(s.OddsFair, 'g', -1, 64))
		sb.WriteByte(0x1f)
		sb.WriteString(strconv.FormatFloat(s.OddsBook, 'g', -1, 64))
		sb.WriteByte(0x1e)
	}
	sb.WriteString(strconv.Itoa(maxMultiple))
	return xxhash.Sum64String(sb.String())
}

func newCache(capacity int) *cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &cache{capacity: capacity, models: make(map[uint64]*kelly.Model)}
}

func (c *cache) get(sels []selection.Selection, maxMultiple int, build buildFunc) (*kelly.Model, error) {
	key := Key(sels, maxMultiple)
	c.Lock()
	defer c.Unlock()
	if m, ok := c.models[key]; ok {
		log.Debug().Uint64("key", key).Msg("getting model from cache")
		return m, nil
	}
	log.Debug().Uint64("key", key).Int("selections", len(sels)).Msg("building model into cache")
	m, err := build(sels, maxMultiple)
	if err != nil {
		return nil, err
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.models, oldest)
	}
	c.models[key] = m
	c.order = append(c.order, key)
	return m, nil
}

func (c *cache) len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.models)
}

func CreateGlobalModelCache(capacity int) {
	GlobalModelCache = newCache(capacity)
}

// Model returns the cached model for these inputs, building it with
// kelly.NewModel and the given options on a miss.
func Model(sels []selection.Selection, maxMultiple int, opts ...kelly.ModelOption) (*kelly.Model, error) {
	if GlobalModelCache == nil {
		CreateGlobalModelCache(DefaultCapacity)
	}
	return GlobalModelCache.get(sels, maxMultiple, func(s []selection.Selection, mm int) (*kelly.Model, error) {
		return kelly.NewModel(s, mm, opts...)
	})
}

// Clear drops every cached model.
func Clear() {
	if GlobalModelCache == nil {
		return
	}
	GlobalModelCache.Lock()
	defer GlobalModelCache.Unlock()
	GlobalModelCache.models = make(map[uint64]*kelly.Model)
	GlobalModelCache.order = nil
}
