package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Baltic-RCC/RAO/internal/broker"
	"github.com/Baltic-RCC/RAO/internal/metadataindex"
)

type fakeBlobStore struct {
	uploads map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore { return &fakeBlobStore{uploads: map[string][]byte{}} }

func (f *fakeBlobStore) Upload(ctx context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	f.uploads[bucket+"/"+key] = data
	return nil
}

func (f *fakeBlobStore) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	return f.uploads[bucket+"/"+key], nil
}

func (f *fakeBlobStore) Stat(ctx context.Context, bucket, key string) (bool, error) {
	_, ok := f.uploads[bucket+"/"+key]
	return ok, nil
}

type fakeIndex struct {
	bulked map[string][]metadataindex.Document
}

func newFakeIndex() *fakeIndex { return &fakeIndex{bulked: map[string][]metadataindex.Document{}} }

func (f *fakeIndex) Search(ctx context.Context, index string, must []metadataindex.Clause, size int, sort []metadataindex.Sort) ([]metadataindex.Document, error) {
	return f.bulked[index], nil
}

func (f *fakeIndex) Bulk(ctx context.Context, index string, docs []metadataindex.Document) error {
	f.bulked[index] = append(f.bulked[index], docs...)
	return nil
}

const assessedElementRDF = `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="fm1">
    <type>FullModel</type>
    <Model.version>3</Model.version>
    <publisher>http://example.org/TSOX</publisher>
    <startDate>2026-07-29T06:00:00Z</startDate>
    <endDate>2026-07-29T18:00:00Z</endDate>
  </rdf:Description>
  <rdf:Description rdf:about="ae1">
    <type>AssessedElement</type>
    <normalEnabled>true</normalEnabled>
  </rdf:Description>
</rdf:RDF>`

func TestHandleProfileUploadsAndIndexesAssessedElement(t *testing.T) {
	blobs := newFakeBlobStore()
	index := newFakeIndex()
	msg := broker.Message{Body: []byte(assessedElementRDF), ContentReference: "ref-1"}

	err := HandleProfile(context.Background(), msg, blobs, index)
	require.NoError(t, err)

	_, uploaded := blobs.uploads["rao/RAO/AE_3_TSOX_2026-07-29T06:00:00Z_2026-07-29T18:00:00Z.xml"]
	assert.True(t, uploaded)

	assert.Len(t, index.bulked["rao-assessed-elements"], 1)
	assert.Len(t, index.bulked[ProfilesIndex], 1)
	assert.Equal(t, "AE", index.bulked[ProfilesIndex][0].Source["profileType"])
}

func TestHandleProfileFailsOnUnrecognizedClass(t *testing.T) {
	rdf := `<?xml version="1.0"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
  <rdf:Description rdf:about="x1">
    <type>SomeUnknownClass</type>
  </rdf:Description>
</rdf:RDF>`
	msg := broker.Message{Body: []byte(rdf), ContentReference: "ref-2"}

	err := HandleProfile(context.Background(), msg, newFakeBlobStore(), newFakeIndex())
	require.Error(t, err)
}
