package ports

import (
	"context"

	"github.com/bnema/artsel/internal/domain"
)

type SelectionExporter interface {
	Export(ctx context.Context, export domain.SelectionExport) error
}
