package applyform

import (
	"fmt"
	"os"

	"github.com/goliatone/go-applyform/pkg/layout"
)

func readLayout(path string) ([]layout.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("applyform: read layout %s: %w", path, err)
	}
	return layout.Parse(data, path)
}
