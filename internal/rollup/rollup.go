// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rollup computes per-topic aggregates of a variant table and the
// views derived from them: the ranked sidebar, the chart hierarchy, and
// the headline summary.
package rollup

import (
	"sort"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

// RootLabel is the single parent of every topic in the chart hierarchy.
const RootLabel = "All Topics"

// Aggregate groups records by topic and sums their statistics. Rows are
// sorted by descending downloads; equal sums keep first-seen order.
func Aggregate(records []types.Record) []types.TopicAggregate {
	index := make(map[string]int)
	var out []types.TopicAggregate
	for _, r := range records {
		i, ok := index[r.Topic]
		if !ok {
			i = len(out)
			index[r.Topic] = i
			out = append(out, types.TopicAggregate{Topic: r.Topic})
		}
		a := &out[i]
		a.DatasetCount++
		a.DownloadsSum += r.Downloads
		a.ViewsSum += r.Views
		a.UniqueDownloadsSum += r.UniqueDownloads
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DownloadsSum > out[j].DownloadsSum
	})
	return out
}

// Sidebar returns the first n aggregates (all of them when n <= 0 or
// larger than the list).
func Sidebar(aggs []types.TopicAggregate, n int) []types.TopicAggregate {
	if n <= 0 || n > len(aggs) {
		n = len(aggs)
	}
	return aggs[:n:n]
}

// Hierarchy returns the chart dataset: a root node followed by one child
// per topic in aggregate order. Node values are download sums; the root
// carries the totals.
func Hierarchy(aggs []types.TopicAggregate) []types.ChartNode {
	s := Summarize(aggs)
	nodes := make([]types.ChartNode, 0, len(aggs)+1)
	nodes = append(nodes, types.ChartNode{
		ID:              RootLabel,
		Label:           RootLabel,
		Value:           s.Downloads,
		Datasets:        s.Rows,
		Views:           s.Views,
		UniqueDownloads: s.UniqueDownloads,
	})
	for _, a := range aggs {
		nodes = append(nodes, types.ChartNode{
			ID:              RootLabel + "/" + a.Topic,
			Label:           a.Topic,
			Parent:          RootLabel,
			Value:           a.DownloadsSum,
			Datasets:        a.DatasetCount,
			Views:           a.ViewsSum,
			UniqueDownloads: a.UniqueDownloadsSum,
		})
	}
	return nodes
}

// Summary holds the headline numbers of a variant.
type Summary struct {
	Topics          int   `json:"topic_count"`
	Rows            int   `json:"row_count"`
	Downloads       int64 `json:"total_downloads"`
	Views           int64 `json:"total_views"`
	UniqueDownloads int64 `json:"total_unique_downloads"`
}

// Summarize totals a rollup.
func Summarize(aggs []types.TopicAggregate) Summary {
	s := Summary{Topics: len(aggs)}
	for _, a := range aggs {
		s.Rows += a.DatasetCount
		s.Downloads += a.DownloadsSum
		s.Views += a.ViewsSum
		s.UniqueDownloads += a.UniqueDownloadsSum
	}
	return s
}
