// Package ingest implements the input-retriever and
// remedial-action-schedules workers' message handling: parsing a raw RDF/XML
// profile, archiving it to the blob store, and indexing its rows and
// metadata so the orchestrator (C6) can later discover and fetch it.
//
// Grounded on original_source's input_retriever/handlers.py
// (HandlerMetadataToObjectStorage + HandlerInputDataToElastic) and
// remedial_action_schedules/handlers.py (HandlerRemedialActionScheduleToElastic),
// collapsed into one pass per message since this domain's profile XML
// carries exactly one class of content.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Baltic-RCC/RAO/internal/blobstore"
	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/metadataindex"
	"github.com/Baltic-RCC/RAO/internal/models"
	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// rowsNamespace seeds the UUIDv5 document ids assigned to indexed profile
// rows; distinct from the orchestrator's result-row namespace so the two
// id spaces never collide even when both happen to hash the same key parts.
var rowsNamespace = uuid.MustParse("a6d9b6f2-9e88-4f0e-8f6a-2f9b9c6e7a1d")

// profileKinds maps a recognized profile keyword to the CIM root classes it
// carries, per original_source's HandlerInputDataToElastic.KEYWORD_MAP.
var profileKinds = map[string][]string{
	"CO": {"OrdinaryContingency", "ExceptionalContingency", "OutOfRangeContingency"},
	"AE": {"AssessedElement"},
	"RA": {"GridStateAlterationRemedialAction"},
}

// rowIndexByKeyword names the metadata index each profile keyword's rows are
// bulk-indexed into.
var rowIndexByKeyword = map[string]string{
	"CO": "rao-contingencies",
	"AE": "rao-assessed-elements",
	"RA": "rao-remedial-actions",
}

// ProfilesIndex is the metadata index the orchestrator's latestProfileKeys
// queries to discover the newest archived object key per profile type.
const ProfilesIndex = "rao-profiles"

// ProfileBucket is the blob-store bucket archived profiles are uploaded to.
const ProfileBucket = "rao"

// HandleProfile implements the input-retriever worker: parse the message
// body, classify it by which root class it carries, upload the raw payload
// to the blob store under a deterministic key, index its typed rows, and
// record a profile-metadata document so the orchestrator can find the
// latest archived object for a given scenario time.
func HandleProfile(ctx context.Context, msg broker.Message, blobs blobstore.Store, index metadataindex.Index) error {
	view, err := triplestore.Load([]triplestore.Source{{Name: msg.ContentReference, Reader: bytes.NewReader(msg.Body)}})
	if err != nil {
		return err
	}

	header, keyword, err := classify(view)
	if err != nil {
		return err
	}

	key := objectKey(keyword, header)
	if err := blobs.Upload(ctx, ProfileBucket, key, msg.Body, headerMetadata(msg)); err != nil {
		return err
	}

	if err := indexRows(ctx, index, keyword, view); err != nil {
		return err
	}

	doc := metadataindex.Document{
		ID: metadataindex.DocID(rowsNamespace, keyword, msg.ContentReference, key),
		Source: map[string]any{
			"profileType":   keyword,
			"scenarioTime":  header["startDate"],
			"objectKey":     key,
			"publisher":     header["publisher"],
			"version":       header["version"],
			"contentBucket": ProfileBucket,
			"rmq":           headerMetadata(msg),
		},
	}
	return index.Bulk(ctx, ProfilesIndex, []metadataindex.Document{doc})
}

// classify extracts the FullModel header row and determines the profile
// keyword by checking which of the recognized root classes the view
// contains, mirroring HandlerMetadataToObjectStorage's metadata extraction
// plus HandlerInputDataToElastic's KEYWORD_MAP dispatch.
func classify(view *triplestore.View) (map[string]string, string, error) {
	fullModel, _ := triplestore.TypeView(view, "FullModel", false)
	header := map[string]string{}
	if len(fullModel.Rows) > 0 {
		header = fullModel.Rows[0].Values
	}

	for keyword, classes := range profileKinds {
		for _, class := range classes {
			rows, _ := triplestore.TypeView(view, class, false)
			if len(rows.Rows) > 0 {
				return header, keyword, nil
			}
		}
	}
	return header, "", fmt.Errorf("%w: no recognized profile class in payload", models.ErrSchemaError)
}

func indexRows(ctx context.Context, index metadataindex.Index, keyword string, view *triplestore.View) error {
	targetIndex, ok := rowIndexByKeyword[keyword]
	if !ok {
		return nil
	}
	var docs []metadataindex.Document
	for _, class := range profileKinds[keyword] {
		rows, _ := triplestore.TypeView(view, class, false)
		for _, row := range rows.Rows {
			source := make(map[string]any, len(row.Values))
			for k, v := range row.Values {
				source[k] = v
			}
			docs = append(docs, metadataindex.Document{
				ID:     metadataindex.DocID(rowsNamespace, keyword, row.Subject),
				Source: source,
			})
		}
	}
	if len(docs) == 0 {
		return nil
	}
	return index.Bulk(ctx, targetIndex, docs)
}

// objectKey mirrors the name original_source builds:
// <prefix>/<keyword>_<version>_<publisher>_<startDate>_<endDate>.xml
func objectKey(keyword string, header map[string]string) string {
	publisher := lastSegment(valueOr(header, "publisher", "UNDEFINED"))
	return fmt.Sprintf("RAO/%s_%s_%s_%s_%s.xml",
		keyword,
		valueOr(header, "version", "UNDEFINED"),
		publisher,
		valueOr(header, "startDate", "UNDEFINED"),
		valueOr(header, "endDate", "UNDEFINED"),
	)
}

func valueOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok && v != "" {
		return v
	}
	return fallback
}

func lastSegment(uri string) string {
	if idx := strings.LastIndex(uri, "/"); idx != -1 {
		return uri[idx+1:]
	}
	return uri
}

func headerMetadata(msg broker.Message) map[string]string {
	return map[string]string{
		broker.HeaderScenarioTime:     msg.ScenarioTime,
		broker.HeaderContentReference: msg.ContentReference,
		broker.HeaderTimeHorizon:      msg.TimeHorizon,
		broker.HeaderProjectName:      msg.ProjectName,
		broker.HeaderMessageID:        msg.MessageID,
	}
}
