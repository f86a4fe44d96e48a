// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the topic-explorer pipeline.
// Implements: record schema (Record, column contract), labeling output
// (Assignment), and rollup rows (TopicAggregate, ChartNode).
package types

// Column names of the input table and of every variant table. The order of
// OutputColumns is the order in which variant tables are written.
const (
	ColTitle           = "metadata.title"
	ColDOI             = "links.doi"
	ColLicenseID       = "metadata.license.id"
	ColUniqueDownloads = "stats.unique_downloads"
	ColDownloads       = "stats.downloads"
	ColViews           = "stats.views"
	ColTopicID         = "topic_id"
	ColTopic           = "topic"
)

// RequiredColumns must be present in every input table.
var RequiredColumns = []string{
	ColTitle,
	ColDOI,
	ColLicenseID,
	ColUniqueDownloads,
	ColDownloads,
	ColViews,
}

// StatColumns are coerced to non-negative integers on read.
var StatColumns = []string{
	ColUniqueDownloads,
	ColDownloads,
	ColViews,
}

// OutputColumns is RequiredColumns followed by the two assigned columns.
var OutputColumns = append(append([]string{}, RequiredColumns...), ColTopicID, ColTopic)

// Record is one research artifact with its usage statistics and, once
// labeled, its topic.
type Record struct {
	// Title is the artifact title. Missing titles are stored as "".
	Title string `json:"metadata.title" yaml:"title"`

	// DOI is the artifact's DOI link or identifier.
	DOI string `json:"links.doi" yaml:"doi"`

	// LicenseID is the license identifier (e.g. "cc-by-4.0").
	LicenseID string `json:"metadata.license.id" yaml:"license_id"`

	UniqueDownloads int64 `json:"stats.unique_downloads" yaml:"unique_downloads"`
	Downloads       int64 `json:"stats.downloads" yaml:"downloads"`
	Views           int64 `json:"stats.views" yaml:"views"`

	// TopicID is unique per distinct Topic within a variant.
	TopicID int `json:"topic_id" yaml:"topic_id"`

	// Topic is the human-readable label. Empty until the record is labeled.
	Topic string `json:"topic" yaml:"topic"`
}

// Labeled reports whether the record carries a topic assignment.
func (r Record) Labeled() bool {
	return r.Topic != ""
}

// Assignment is one labeler decision for one record, aligned by index with
// the input titles.
type Assignment struct {
	TopicID int    `json:"topic_id" yaml:"topic_id"`
	Topic   string `json:"topic" yaml:"topic"`
}

// TopicAggregate is a per-topic rollup of a variant table. It is derived on
// every request and never persisted.
type TopicAggregate struct {
	Topic              string `json:"topic" yaml:"topic"`
	DatasetCount       int    `json:"dataset_count" yaml:"dataset_count"`
	DownloadsSum       int64  `json:"downloads_sum" yaml:"downloads_sum"`
	ViewsSum           int64  `json:"views_sum" yaml:"views_sum"`
	UniqueDownloadsSum int64  `json:"unique_downloads_sum" yaml:"unique_downloads_sum"`
}

// ChartNode is one node of the single-level hierarchical chart dataset.
// The root node has an empty Parent.
type ChartNode struct {
	ID              string `json:"id"`
	Label           string `json:"label"`
	Parent          string `json:"parent"`
	Value           int64  `json:"value"`
	Datasets        int    `json:"datasets"`
	Views           int64  `json:"views"`
	UniqueDownloads int64  `json:"unique_downloads"`
}
