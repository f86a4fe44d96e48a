// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package encoder

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// Cache is an Encoder that serves vectors from a badger store and forwards
// only misses to the wrapped encoder. Keys are the encoder ID plus a
// SHA-256 of the text, so switching models never returns stale vectors.
//
// Store failures are logged and treated as misses; they never fail an
// encode.
type Cache struct {
	db     *badger.DB
	inner  Encoder
	logger *zap.Logger
}

var _ Encoder = (*Cache)(nil)

type cachedVector struct {
	Model  string    `msgpack:"m"`
	Vector []float64 `msgpack:"v"`
}

// OpenCache opens (or creates) the store in dir. An empty dir keeps the
// cache in memory for the life of the process.
func OpenCache(dir string, inner Encoder, logger *zap.Logger) (*Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{logger.Sugar()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}
	return &Cache{db: db, inner: inner, logger: logger}, nil
}

// ID returns the wrapped encoder's ID.
func (c *Cache) ID() string { return c.inner.ID() }

// Close releases the store.
func (c *Cache) Close() error { return c.db.Close() }

// Encode returns cached vectors where present and encodes the rest. Each
// distinct missing text is sent to the wrapped encoder once.
func (c *Cache) Encode(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	missing := make(map[string][]int)
	var order []string

	err := c.db.View(func(txn *badger.Txn) error {
		for i, text := range texts {
			if v, ok := c.lookup(txn, text); ok {
				out[i] = v
				continue
			}
			if _, seen := missing[text]; !seen {
				order = append(order, text)
			}
			missing[text] = append(missing[text], i)
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	c.logger.Debug("embedding cache",
		zap.Int("hits", len(texts)-countIdx(missing)),
		zap.Int("misses", len(order)))
	if len(order) == 0 {
		return out, checkDims(out)
	}

	vecs, err := c.inner.Encode(ctx, order)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(order) {
		return nil, fmt.Errorf("encoder returned %d vectors for %d texts", len(vecs), len(order))
	}
	for j, text := range order {
		for _, i := range missing[text] {
			out[i] = vecs[j]
		}
	}
	c.store(order, vecs)
	return out, checkDims(out)
}

func (c *Cache) key(text string) []byte {
	sum := sha256.Sum256([]byte(text))
	k := make([]byte, 0, len(c.inner.ID())+1+len(sum))
	k = append(k, c.inner.ID()...)
	k = append(k, 0)
	return append(k, sum[:]...)
}

func (c *Cache) lookup(txn *badger.Txn, text string) ([]float64, bool) {
	item, err := txn.Get(c.key(text))
	if err != nil {
		if !errors.Is(err, badger.ErrKeyNotFound) {
			c.logger.Warn("embedding cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var cv cachedVector
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &cv)
	})
	if err != nil || cv.Model != c.inner.ID() {
		c.logger.Warn("discarding unreadable cache entry", zap.Error(err))
		return nil, false
	}
	return cv.Vector, true
}

func (c *Cache) store(texts []string, vecs [][]float64) {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for i, text := range texts {
		data, err := msgpack.Marshal(cachedVector{Model: c.inner.ID(), Vector: vecs[i]})
		if err != nil {
			c.logger.Warn("encoding cache entry", zap.Error(err))
			return
		}
		if err := wb.Set(c.key(text), data); err != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(err))
			return
		}
	}
	if err := wb.Flush(); err != nil {
		c.logger.Warn("embedding cache flush failed", zap.Error(err))
	}
}

func countIdx(m map[string][]int) int {
	n := 0
	for _, idx := range m {
		n += len(idx)
	}
	return n
}

// badgerLogger routes badger's internal logging through zap, demoting its
// info chatter to debug.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(f string, v ...interface{})   { l.s.Errorf("badger: "+f, v...) }
func (l badgerLogger) Warningf(f string, v ...interface{}) { l.s.Warnf("badger: "+f, v...) }
func (l badgerLogger) Infof(f string, v ...interface{})    { l.s.Debugf("badger: "+f, v...) }
func (l badgerLogger) Debugf(f string, v ...interface{})   { l.s.Debugf("badger: "+f, v...) }
