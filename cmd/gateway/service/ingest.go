package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/justicantus/mediagate/common/logger"
	"github.com/justicantus/mediagate/common/oracle"
	"github.com/justicantus/mediagate/common/secretstream"
)

// ContentStore is the slice of the storage client the pipelines need.
type ContentStore interface {
	Publish(ctx context.Context, r io.Reader) (string, error)
	Fetch(ctx context.Context, cid string) (path string, cleanup func(), err error)
}

// ContentRecord is the metadata envelope published alongside the media
// file. Field order is the canonical serialized form.
type ContentRecord struct {
	Title string `json:"title"`
	CID   string `json:"cid"`
}

// IngestService encrypts uploads and publishes them to the content
// store: first the media file, then the metadata record pointing at it.
type IngestService struct {
	oracle oracle.Oracle
	store  ContentStore
	log    *logger.Logger
}

// NewIngestService creates the ingest pipeline
func NewIngestService(o oracle.Oracle, store ContentStore, log *logger.Logger) *IngestService {
	return &IngestService{
		oracle: o,
		store:  store,
		log:    log,
	}
}

// Pin runs the full ingest flow and returns the metadata record's CID.
// There is no partial publish: a failure at any step fails the whole
// operation and the caller retries from scratch.
func (s *IngestService) Pin(ctx context.Context, title string, file io.Reader) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("%w: title is required", ErrBadRequest)
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("reading upload: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: file is empty", ErrBadRequest)
	}

	key, err := s.oracle.ReleaseKey(ctx)
	if err != nil {
		return "", err
	}

	envelope, err := secretstream.Seal(key, payload)
	if err != nil {
		return "", fmt.Errorf("encrypting file: %w", err)
	}

	audioCid, err := s.store.Publish(ctx, bytes.NewReader(envelope))
	if err != nil {
		return "", err
	}
	s.log.Info("pinned media file", "cid", audioCid, "size", len(payload))

	record, err := json.Marshal(ContentRecord{Title: title, CID: audioCid})
	if err != nil {
		return "", fmt.Errorf("serializing record: %w", err)
	}

	recordEnvelope, err := secretstream.Seal(key, record)
	if err != nil {
		return "", fmt.Errorf("encrypting record: %w", err)
	}

	metadataCid, err := s.store.Publish(ctx, bytes.NewReader(recordEnvelope))
	if err != nil {
		return "", err
	}
	s.log.Info("pinned metadata record", "cid", metadataCid)

	return metadataCid, nil
}
