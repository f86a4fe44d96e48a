// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

// Coerce converts a statistic cell to a non-negative integer. Values that do
// not parse as a finite number, and negative values, become 0 and ok is
// false. Fractions are truncated ("42.0" is 42). An empty cell is 0 with ok
// true: a missing value is not malformed.
func Coerce(s string) (n int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		if v < 0 {
			return 0, false
		}
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// coercer counts absorbed failures per column so a table with thousands of
// bad cells logs one warning per column.
type coercer struct {
	failures map[string]int
}

func newCoercer() *coercer {
	return &coercer{failures: make(map[string]int)}
}

func (c *coercer) coerce(col, raw string, logger *zap.Logger) int64 {
	n, ok := Coerce(raw)
	if !ok {
		c.failures[col]++
		logger.Debug("statistic coerced to 0", zap.String("column", col), zap.String("value", raw))
	}
	return n
}

func (c *coercer) report(logger *zap.Logger) {
	for _, col := range types.StatColumns {
		if n := c.failures[col]; n > 0 {
			logger.Warn("invalid statistic values coerced to 0",
				zap.String("column", col), zap.Int("count", n))
		}
	}
}
