package notes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/notemate/notemate/internal/email"
	"github.com/notemate/notemate/internal/errs"
	"github.com/notemate/notemate/internal/obs"
	"github.com/notemate/notemate/internal/s3client"
)

// Snapshot is a point-in-time JSON export of a user's live notes.
type Snapshot struct {
	UserID     string `json:"userId"`
	ExportedAt string `json:"exportedAt"`
	Notes      []Note `json:"notes"`
}

// ExportResult describes a completed export.
type ExportResult struct {
	Key       string `json:"key"`
	NoteCount int    `json:"noteCount"`
}

// Exporter writes note snapshots to object storage.
type Exporter struct {
	service *Service
	storage *s3client.Client
	email   email.EmailService
}

// NewExporter creates an exporter. emailService may be nil to skip the
// export-ready notification.
func NewExporter(service *Service, storage *s3client.Client, emailService email.EmailService) *Exporter {
	return &Exporter{
		service: service,
		storage: storage,
		email:   emailService,
	}
}

// Export snapshots the actor's live notes to S3 under
// exports/{userID}/{timestamp}.json and returns the object key. When an
// email service and address are available, a best-effort notification is
// sent.
func (e *Exporter) Export(ctx context.Context, actorID, actorName, actorEmail string) (ExportResult, error) {
	notes, err := e.service.List(ctx, actorID)
	if err != nil {
		return ExportResult{}, err
	}

	now := time.Now().UTC()
	snapshot := Snapshot{
		UserID:     actorID,
		ExportedAt: now.Format(time.RFC3339),
		Notes:      notes,
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return ExportResult{}, errs.Wrap(errs.Internal, "failed to encode export", err)
	}

	key := fmt.Sprintf("exports/%s/%s.json", actorID, now.Format("20060102T150405Z"))
	if err := e.storage.PutObject(ctx, key, payload, "application/json"); err != nil {
		return ExportResult{}, errs.Wrap(errs.Unavailable, "failed to store export", err)
	}

	if e.email != nil && actorEmail != "" {
		data := email.ExportReadyData{Name: actorName, NoteCount: len(notes), Key: key}
		if err := e.email.Send(actorEmail, email.TemplateExportReady, data); err != nil {
			obs.From(ctx).Warn("export_email_failed", "error", err)
		}
	}

	obs.From(ctx).Info("notes_exported", "key", key, "count", len(notes))
	return ExportResult{Key: key, NoteCount: len(notes)}, nil
}

// ListExports returns the S3 keys of the actor's past exports.
func (e *Exporter) ListExports(ctx context.Context, actorID string) ([]string, error) {
	if actorID == "" {
		return nil, errs.New(errs.Unauthenticated, "unauthenticated")
	}
	keys, err := e.storage.ListKeys(ctx, fmt.Sprintf("exports/%s/", actorID))
	if err != nil {
		return nil, errs.Wrap(errs.Unavailable, "failed to list exports", err)
	}
	return keys, nil
}
