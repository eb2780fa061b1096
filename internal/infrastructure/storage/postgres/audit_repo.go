package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	ctxutil "backoffice/internal/core/context"
	"backoffice/internal/core/id"
	"backoffice/internal/domain/audit"
)

// Compression algorithms recorded alongside the payload.
const (
	compressionNone = "none"
	compressionZstd = "zstd"
)

// AuditRepo writes audit entries to the trail table. Payloads over the
// threshold are zstd-compressed.
type AuditRepo struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditRepo creates the audit trail writer.
func NewAuditRepo(txManager *TxManager) (*AuditRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditRepo{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

var _ audit.Recorder = (*AuditRepo)(nil)

// Record appends one entry to the trail.
func (r *AuditRepo) Record(ctx context.Context, entry audit.Entry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}
	if entry.TraceID == "" {
		entry.TraceID = ctxutil.GetTraceID(ctx)
	}

	payload, err := json.Marshal(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	var compressed []byte
	algo := compressionNone
	if len(payload) > r.compressThreshold {
		compressed = r.encoder.EncodeAll(payload, nil)
		payload = nil
		algo = compressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, occurred_at, action, entity_type, entity_id, trace_id,
			payload, payload_compressed, compression_algo
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.txManager.GetQuerier(ctx).Exec(ctx, sql,
		entry.ID, entry.OccurredAt, entry.Action, entry.EntityType, entry.EntityID,
		entry.TraceID, payload, compressed, algo,
	)
	return err
}

// EntityHistory retrieves audit entries for an entity, newest first,
// decompressing payloads where needed.
func (r *AuditRepo) EntityHistory(ctx context.Context, entityType, entityID string, limit int) ([]audit.Entry, error) {
	sql := `
		SELECT id, occurred_at, action, entity_type, entity_id, trace_id,
		       payload, payload_compressed, compression_algo
		FROM sys_audit
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY occurred_at DESC
		LIMIT $3
	`

	rows, err := r.txManager.GetQuerier(ctx).Query(ctx, sql, entityType, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var (
			e          audit.Entry
			payload    []byte
			compressed []byte
			algo       string
		)
		err := rows.Scan(&e.ID, &e.OccurredAt, &e.Action, &e.EntityType, &e.EntityID,
			&e.TraceID, &payload, &compressed, &algo)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}

		if algo == compressionZstd && len(compressed) > 0 {
			payload, err = r.decoder.DecodeAll(compressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress payload: %w", err)
			}
		}
		if len(payload) > 0 {
			e.Payload = json.RawMessage(payload)
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}
