package ingest

import (
	"bytes"
	"context"

	"github.com/google/uuid"

	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/metadataindex"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// SchedulesIndex is where remedial-action-schedule rows are bulk-indexed.
const SchedulesIndex = "rao-schedules"

var schedulesNamespace = uuid.MustParse("f3b1a6f0-4d2a-4c9e-9d41-3a6b8e2c1f90")

// HandleSchedule implements the remedial-action-schedules worker: parse the
// message body's RemedialActionSchedule rows and bulk-index them, grounded
// on original_source's HandlerRemedialActionScheduleToElastic.
func HandleSchedule(ctx context.Context, msg broker.Message, index metadataindex.Index) error {
	view, err := triplestore.Load([]triplestore.Source{{Name: msg.ContentReference, Reader: bytes.NewReader(msg.Body)}})
	if err != nil {
		return err
	}

	rows, _ := triplestore.TypeView(view, "RemedialActionSchedule", false)
	if len(rows.Rows) == 0 {
		return nil
	}

	docs := make([]metadataindex.Document, 0, len(rows.Rows))
	for _, row := range rows.Rows {
		source := make(map[string]any, len(row.Values)+1)
		for k, v := range row.Values {
			source[k] = v
		}
		source["rmq"] = headerMetadata(msg)
		docs = append(docs, metadataindex.Document{
			ID:     metadataindex.DocID(schedulesNamespace, msg.ContentReference, row.Subject),
			Source: source,
		})
	}
	return index.Bulk(ctx, SchedulesIndex, docs)
}
