package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// GenesisHash is the previous hash of the first entry in every chain.
var GenesisHash = strings.Repeat("0", 64)

// LogEntry represents a single audit log entry
type LogEntry struct {
	Sequence     int64  `json:"sequence"`
	Timestamp    string `json:"timestamp"`
	PreviousHash string `json:"previous_hash"`
	Payload      string `json:"payload"`
	Hash         string `json:"hash"`
}

// Sink receives every entry after it has been linked into the chain.
type Sink interface {
	Write(ctx context.Context, entry *LogEntry) error
}

// ChainLogger keeps a tamper-evident record of session events using hash chaining.
// Entries are retained in memory for the lifetime of the logger and forwarded to
// the configured sinks.
type ChainLogger struct {
	// writeMu is held from linking through the sink writes so sinks see
	// entries in chain order. mu guards the chain itself.
	writeMu      sync.Mutex
	mu           sync.Mutex
	previousHash string
	sequence     int64
	entries      []*LogEntry
	sinks        []Sink
	logger       *slog.Logger
	now          func() time.Time
}

// Option configures a ChainLogger.
type Option func(*ChainLogger)

// WithSink forwards entries to s.
func WithSink(s Sink) Option {
	return func(c *ChainLogger) {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
}

// WithLogger sets the logger used to report sink failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *ChainLogger) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *ChainLogger) {
		if now != nil {
			c.now = now
		}
	}
}

// NewChainLogger creates a new ChainLogger initialized with the genesis hash.
func NewChainLogger(opts ...Option) *ChainLogger {
	c := &ChainLogger{
		previousHash: GenesisHash,
		logger:       slog.Default(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Append adds a new log entry to the chain.
// Sink failures are logged and never break the chain.
func (c *ChainLogger) Append(payload string) *LogEntry {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	c.sequence++
	entry := &LogEntry{
		Sequence:     c.sequence,
		Timestamp:    c.now().UTC().Format(time.RFC3339Nano),
		PreviousHash: c.previousHash,
		Payload:      payload,
	}
	entry.Hash = entryHash(entry.PreviousHash, entry.Timestamp, entry.Payload)
	c.previousHash = entry.Hash
	c.entries = append(c.entries, entry)
	sinks := c.sinks
	c.mu.Unlock()

	for _, s := range sinks {
		cp := *entry
		if err := s.Write(context.Background(), &cp); err != nil {
			c.logger.Warn("audit sink write failed", "sequence", entry.Sequence, "error", err)
		}
	}
	return entry
}

// Record appends an event formatted as "event k=v k=v".
func (c *ChainLogger) Record(event string, kv ...any) *LogEntry {
	var b strings.Builder
	b.WriteString(event)
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return c.Append(b.String())
}

// Entries returns copies of every entry appended so far, oldest first.
func (c *ChainLogger) Entries() []*LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*LogEntry, len(c.entries))
	for i, e := range c.entries {
		cp := *e
		out[i] = &cp
	}
	return out
}

// Head returns the hash of the newest entry.
func (c *ChainLogger) Head() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.previousHash
}

// VerifyChain checks if a slice of entries forms a valid hash chain.
func VerifyChain(entries []*LogEntry) bool {
	for i, entry := range entries {
		prevHash := entry.PreviousHash
		if i > 0 {
			prevHash = entries[i-1].Hash
			if entry.PreviousHash != prevHash {
				return false
			}
		}
		if entryHash(prevHash, entry.Timestamp, entry.Payload) != entry.Hash {
			return false
		}
	}
	return true
}

func entryHash(prevHash, timestamp, payload string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", prevHash, timestamp, payload)))
	return hex.EncodeToString(hash[:])
}

// SplitChains splits stored entries into the chains they belong to. A new
// chain starts at every entry linked to the genesis hash.
func SplitChains(entries []*LogEntry) [][]*LogEntry {
	var out [][]*LogEntry
	for _, e := range entries {
		if e.PreviousHash == GenesisHash || len(out) == 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], e)
	}
	return out
}
