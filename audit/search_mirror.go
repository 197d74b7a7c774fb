package audit

import (
	"context"
	"staffing/client/es"
	"time"

	"github.com/fundwit/go-commons/types"
)

const searchMirrorIdentifier = "search-mirror"

type DocumentIndexer interface {
	Index(ctx context.Context, index string, id types.ID, doc interface{}) (*es.ESIndexResult, error)
}

// SearchMirror copies committed entries into a search index read by compliance tooling.
func SearchMirror(indexer DocumentIndexer, index string, timeout time.Duration) Handler {
	return func(e *AuditLogEntry) *HandleResult {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := indexer.Index(ctx, index, e.ID, e); err != nil {
			return &HandleResult{Success: false, Message: err.Error(), HandlerIdentifier: searchMirrorIdentifier}
		}
		return &HandleResult{Success: true, HandlerIdentifier: searchMirrorIdentifier}
	}
}
