package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/angelmondragon/packfinderz-metrics/pkg/enums"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

// Drivers lists the drivers that carry their own migration directory.
var Drivers = []enums.DBDriver{enums.DBDriverPostgres, enums.DBDriverSQLite}

// ValidateTree checks every driver directory under root and that all drivers
// carry the same migration files.
func ValidateTree(root string) error {
	if root == "" {
		return fmt.Errorf("dir is required")
	}
	var reference []string
	for i, driver := range Drivers {
		names, err := ValidateDir(DirFor(root, driver))
		if err != nil {
			return fmt.Errorf("%s: %w", driver, err)
		}
		if i == 0 {
			reference = names
			continue
		}
		if !slices.Equal(reference, names) {
			return fmt.Errorf("%s migrations %v differ from %s migrations %v", driver, names, Drivers[0], reference)
		}
	}
	return nil
}

// ValidateDir checks filenames and goose headers in dir and returns the
// migration filenames in order.
func ValidateDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", name, err)
		}
		txt := string(b)
		for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
			if !strings.Contains(txt, marker) {
				return nil, fmt.Errorf("migration %q missing %q", name, marker)
			}
		}
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
