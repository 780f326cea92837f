// internal/sink/jsonl.go
package sink

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/ps-vitor/imoveis-crawler/internal/domain"
)

// JSONLines writes one JSON object per record and line. Several pools may
// share one instance.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLines(w io.Writer) *JSONLines {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLines{enc: enc}
}

func (s *JSONLines) Emit(record domain.ListingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(record); err != nil {
		return fmt.Errorf("write record %s: %w", record.URL, err)
	}
	return nil
}
