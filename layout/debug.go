package layout

import "encoding/json"

// DebugJSON 将组装结果编码为缩进的 JSON，便于调试或可视化。
func DebugJSON(a *Assembly) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
