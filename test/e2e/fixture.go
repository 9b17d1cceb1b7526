package e2e

import (
	"fmt"
	"os"
	"path/filepath"
)

// writeConfig writes a config.yaml that keeps the database and logs under
// homeDir and returns its path.
func writeConfig(homeDir string) (string, error) {
	dataDir := filepath.Join(homeDir, ".myreports")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(homeDir, "config.yaml")
	body := fmt.Sprintf(`api:
  backend: local
search:
  debounce: 50ms
data:
  dir: %q
log:
  dir: %q
  level: debug
ui:
  default_report: "3"
`, dataDir, filepath.Join(dataDir, "logs"))
	return path, os.WriteFile(path, []byte(body), 0o644)
}

func logDir(homeDir string) string {
	return filepath.Join(homeDir, ".myreports", "logs")
}
