package analysis

import (
	"context"
)

// Repository port (interface untuk persistence)
type Repository interface {
	// Create menyimpan record beserta semua child dalam satu transaksi.
	Create(ctx context.Context, r *Record) (RecordID, error)
	// Get returns ErrNotFound when no record matches.
	Get(ctx context.Context, id RecordID) (*Record, error)
	List(ctx context.Context, f ListFilter) ([]*Record, int64, error)
}

// FailureRepository menyimpan diagnosa kegagalan engine/payload
type FailureRepository interface {
	Save(ctx context.Context, f *Failure) error
}

// BlobStore port (interface untuk penyimpanan dokumen)
type BlobStore interface {
	// Put stores data under key and returns the stored relative path.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Engine port: scoring engine eksternal
type Engine interface {
	Analyze(ctx context.Context, req EngineRequest) (*EngineResult, error)
}
