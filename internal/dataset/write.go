// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/pdiddy/topic-explorer/pkg/types"
)

// ErrUnlabeled is returned when writing a table whose records lack the
// assigned topic columns.
var ErrUnlabeled = errors.New("table lacks topic/topic_id")

// Write serializes labeled records as CSV with the output columns in their
// fixed order. Every record must be labeled.
func Write(w io.Writer, records []types.Record) error {
	for i, r := range records {
		if !r.Labeled() {
			return fmt.Errorf("%w: record %d has no topic", ErrUnlabeled, i)
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(types.OutputColumns); err != nil {
		return err
	}
	row := make([]string, len(types.OutputColumns))
	for _, r := range records {
		row[0] = r.Title
		row[1] = r.DOI
		row[2] = r.LicenseID
		row[3] = strconv.FormatInt(r.UniqueDownloads, 10)
		row[4] = strconv.FormatInt(r.Downloads, 10)
		row[5] = strconv.FormatInt(r.Views, 10)
		row[6] = strconv.Itoa(r.TopicID)
		row[7] = r.Topic
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
