package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteCards writes every successful extraction in results to dir as PNG
// files. File names derive from the source name plus the recognized title
// when present, falling back to the region id. Failed items are skipped;
// the first write error aborts.
func WriteCards(dir, sourceID string, results []ExtractResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}
	base := strings.TrimSuffix(sourceID, filepath.Ext(sourceID))
	if base == "" {
		base = "card"
	}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		tag := res.Region.ID
		if res.Card.Title != "" {
			tag = safeName(res.Card.Title)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", safeName(base), tag))
		if err := os.WriteFile(path, res.Card.PNG, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// safeName reduces a string to a filesystem-safe token.
func safeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "card"
	}
	return b.String()
}
