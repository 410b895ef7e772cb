package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	appctx "shoptill/internal/core/context"
	"shoptill/internal/core/id"
	"shoptill/internal/domain/billing"
)

// CompressionAlgo specifies how an entry's change payload is stored.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

var _ billing.AuditLog = (*AuditLog)(nil)

// AuditLog persists billing audit entries. Large change payloads (a
// full bill with many lines) are zstd-compressed before insert. Record
// joins the ambient finalization transaction through the TxManager, so
// the audit row commits or rolls back with the bill.
type AuditLog struct {
	txm               *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewAuditLog creates a new audit log.
func NewAuditLog(txm *TxManager) (*AuditLog, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &AuditLog{
		txm:               txm,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Record writes one audit entry.
func (a *AuditLog) Record(ctx context.Context, entry billing.AuditEntry) error {
	operator := entry.Operator
	if operator == "" {
		operator = appctx.GetOperatorID(ctx)
	}

	changes, err := json.Marshal(entry.Changes)
	if err != nil {
		return fmt.Errorf("marshal audit changes: %w", err)
	}

	var compressed []byte
	algo := CompressionNone
	if len(changes) > a.compressThreshold {
		compressed = a.encoder.EncodeAll(changes, nil)
		changes = nil
		algo = CompressionZstd
	}

	const sql = `
		INSERT INTO audit_log (
			id, action, bill_id, bill_number, operator,
			changes, changes_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = a.txm.GetQuerier(ctx).Exec(ctx, sql,
		id.New(), entry.Action, entry.BillID, entry.Number, operator,
		changes, compressed, algo, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// Decompress restores a compressed change payload for inspection.
func (a *AuditLog) Decompress(compressed []byte) (json.RawMessage, error) {
	out, err := a.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress audit changes: %w", err)
	}
	return out, nil
}

// Close releases the compressor resources.
func (a *AuditLog) Close() {
	a.encoder.Close()
	a.decoder.Close()
}
