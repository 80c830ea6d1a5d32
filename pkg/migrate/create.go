package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

// CreateSQLMigration writes an empty goose migration with the same version
// into every driver directory under root and returns the created paths.
func CreateSQLMigration(root string, name string, now time.Time) ([]string, error) {
	if root == "" {
		return nil, fmt.Errorf("dir is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = nameSanitizeRe.ReplaceAllString(strings.ReplaceAll(safe, " ", "_"), "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return nil, fmt.Errorf("name %q results in empty sanitized filename", name)
	}

	filename := fmt.Sprintf("%s_%s.sql", now.UTC().Format("20060102150405"), safe)
	template := fmt.Sprintf(`-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, safe, safe)

	var paths []string
	for _, driver := range Drivers {
		dir := DirFor(root, driver)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return paths, fmt.Errorf("mkdir %q: %w", dir, err)
		}
		full := filepath.Join(dir, filename)
		if _, err := os.Stat(full); err == nil {
			return paths, fmt.Errorf("migration already exists: %s", full)
		}
		if err := os.WriteFile(full, []byte(template), 0o644); err != nil {
			return paths, fmt.Errorf("write migration %q: %w", full, err)
		}
		paths = append(paths, full)
	}
	return paths, nil
}
