package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将场景输出为 JSON，便于调试或可视化。
func WriteDebugJSON(fig *Figure, path string) error {
	if fig == nil {
		return nil
	}
	data, err := json.MarshalIndent(fig, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
