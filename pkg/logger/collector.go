package logger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"
)

// Publisher sends aggregated log digests. drepo.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, msg any) error
}

type CollectionConfig struct {
	TimeInterval   time.Duration // flush interval, default 30s
	CountThreshold int           // distinct entries that force a flush, default 100
	Topic          string
	Service        string // digest key and service tag
	// Levels that are collected; defaults to error only.
	Levels    []string
	Publisher Publisher
}

type AggregatedLogEntry struct {
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Caller    string                 `json:"caller"`
	Count     int                    `json:"count"`
	FirstSeen time.Time              `json:"first_seen"`
	LastSeen  time.Time              `json:"last_seen"`
}

// LogDigest is one flush worth of aggregated entries, most frequent first.
type LogDigest struct {
	Service     string               `json:"service"`
	WindowStart time.Time            `json:"window_start"`
	WindowEnd   time.Time            `json:"window_end"`
	Total       int                  `json:"total"`
	Entries     []AggregatedLogEntry `json:"entries"`
}

type LogCollector struct {
	config      *CollectionConfig
	levels      map[string]struct{}
	logMap      map[string]*AggregatedLogEntry
	windowStart time.Time
	mutex       sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewLogCollector(config *CollectionConfig) *LogCollector {
	if config.TimeInterval <= 0 {
		config.TimeInterval = 30 * time.Second
	}
	if config.CountThreshold <= 0 {
		config.CountThreshold = 100
	}
	levels := config.Levels
	if len(levels) == 0 {
		levels = []string{"error"}
	}
	ctx, cancel := context.WithCancel(context.Background())

	c := &LogCollector{
		config:      config,
		levels:      make(map[string]struct{}, len(levels)),
		logMap:      make(map[string]*AggregatedLogEntry),
		windowStart: time.Now().UTC(),
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, l := range levels {
		c.levels[l] = struct{}{}
	}

	c.wg.Add(1)
	go c.periodicFlush()
	return c
}

// Accepts reports whether entries at level are collected.
func (d *LogCollector) Accepts(level string) bool {
	_, ok := d.levels[level]
	return ok
}

func (d *LogCollector) AddLog(level, message string, fields map[string]interface{}, caller string) {
	if !d.Accepts(level) {
		return
	}
	now := time.Now().UTC()
	key := entryKey(level, message, fields, caller)

	d.mutex.Lock()
	defer d.mutex.Unlock()

	if entry, ok := d.logMap[key]; ok {
		entry.Count++
		entry.LastSeen = now
	} else {
		d.logMap[key] = &AggregatedLogEntry{
			Level:     level,
			Message:   message,
			Fields:    fields,
			Caller:    caller,
			Count:     1,
			FirstSeen: now,
			LastSeen:  now,
		}
	}

	if len(d.logMap) >= d.config.CountThreshold {
		d.flushLocked()
	}
}

// entryKey identifies repeats of the same log line at the same call site.
func entryKey(level, message string, fields map[string]interface{}, caller string) string {
	data, _ := json.Marshal(struct {
		L string                 `json:"l"`
		M string                 `json:"m"`
		F map[string]interface{} `json:"f"`
		C string                 `json:"c"`
	}{level, message, fields, caller})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (d *LogCollector) periodicFlush() {
	defer d.wg.Done()

	ticker := time.NewTicker(d.config.TimeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Flush()
		case <-d.ctx.Done():
			d.Flush()
			return
		}
	}
}

// Flush publishes whatever is pending.
func (d *LogCollector) Flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.flushLocked()
}

func (d *LogCollector) flushLocked() {
	now := time.Now().UTC()
	if len(d.logMap) == 0 {
		d.windowStart = now
		return
	}

	digest := LogDigest{
		Service:     d.config.Service,
		WindowStart: d.windowStart,
		WindowEnd:   now,
		Entries:     make([]AggregatedLogEntry, 0, len(d.logMap)),
	}
	for _, e := range d.logMap {
		digest.Entries = append(digest.Entries, *e)
		digest.Total += e.Count
	}
	slices.SortFunc(digest.Entries, func(a, b AggregatedLogEntry) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return a.FirstSeen.Compare(b.FirstSeen)
	})

	d.logMap = make(map[string]*AggregatedLogEntry)
	d.windowStart = now

	if d.config.Publisher == nil {
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// Logging through the logger here would feed the collector again.
		if err := d.config.Publisher.Publish(ctx, d.config.Topic, d.config.Service, digest); err != nil {
			fmt.Fprintf(os.Stderr, "failed to send log digest: %v\n", err)
		}
	}()
}

// Pending reports how many distinct entries are waiting for the next flush.
func (d *LogCollector) Pending() int {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return len(d.logMap)
}

// Close flushes pending entries and waits for in-flight publishes.
func (d *LogCollector) Close() {
	d.cancel()
	d.wg.Wait()
}
