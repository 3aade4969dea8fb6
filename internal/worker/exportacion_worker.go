package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"cotizador/internal/dto"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExportacionJobPayload is the job envelope sent to QueueExportacion.
type ExportacionJobPayload struct {
	CotizacionID string `json:"cotizacion_id"`
}

// GeneradorExportacion builds and caches the render-ready payload of a quote.
type GeneradorExportacion interface {
	Generar(ctx context.Context, cotizacionID uuid.UUID) (*dto.CotizacionExport, error)
}

// ExportacionWorker warms the export cache right after a quote is issued so
// the first PDF/Excel download does not pay for it.
type ExportacionWorker struct {
	generador GeneradorExportacion
}

func NewExportacionWorker(generador GeneradorExportacion) *ExportacionWorker {
	return &ExportacionWorker{generador: generador}
}

func (w *ExportacionWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ExportacionJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("exportacion_worker: payload invalido: %w", err)
	}
	id, err := uuid.Parse(payload.CotizacionID)
	if err != nil {
		return fmt.Errorf("exportacion_worker: cotizacion_id invalido %q: %w", payload.CotizacionID, err)
	}

	exp, err := w.generador.Generar(ctx, id)
	if err != nil {
		return err
	}
	log.Info().
		Str("cotizacion_id", exp.CotizacionID).
		Int64("numero", exp.Numero).
		Int("lineas", len(exp.Lineas)).
		Msg("exportacion_worker: payload generado")
	return nil
}
