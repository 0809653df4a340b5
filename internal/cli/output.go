// internal/cli/output.go
package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormatter は --format に応じて JSON / テキストを書き分けます。
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func NewOutputFormatter(format string, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: format, Writer: w}
}

// Write は JSON なら v をインデント付きで、テキストなら text() の結果を書きます。
func (f *OutputFormatter) Write(v any, text func(w io.Writer) error) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		return nil
	}
	return text(f.Writer)
}
