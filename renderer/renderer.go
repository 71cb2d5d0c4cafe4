package renderer

import "github.com/ByLCY/medalholder/layout"

// Renderer 将组装结果输出为最终文件，例如 PNG、SVG 或 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(a *layout.Assembly) ([]byte, error)
}
