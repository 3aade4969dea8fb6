package service

import (
	"context"
	"strconv"

	"cotizador/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CostoResuelto is the effective unit cost of one catalog item plus the rows
// it came from.
type CostoResuelto struct {
	Item          model.ItemVersionado
	CostoUnitario decimal.Decimal
	// PrecioCliente is set when a customer override supplied the cost.
	PrecioCliente *model.PrecioCliente
}

// PrecioService picks the effective unit cost of a catalog item.
type PrecioService interface {
	ResolverCostoUnitario(
		ctx context.Context,
		tipo model.TipoCatalogo,
		itemID uuid.UUID,
		clienteID *uuid.UUID,
		atributos map[string]string,
	) (*CostoResuelto, error)
}

type precioService struct {
	catalogo CatalogoService
}

func NewPrecioService(catalogo CatalogoService) PrecioService {
	return &precioService{catalogo: catalogo}
}

// ResolverCostoUnitario:
//  1. Load the item's current version; a deactivated item halts pricing even
//     when the customer has an override for it.
//  2. With a customer, take the first current override (priority order) whose
//     attributes all match the request.
//  3. Otherwise use the catalog cost.
func (s *precioService) ResolverCostoUnitario(
	ctx context.Context,
	tipo model.TipoCatalogo,
	itemID uuid.UUID,
	clienteID *uuid.UUID,
	atributos map[string]string,
) (*CostoResuelto, error) {
	item, err := s.catalogo.Actual(ctx, tipo, itemID)
	if err != nil {
		return nil, err
	}
	res := &CostoResuelto{Item: item, CostoUnitario: item.Cabecera().CostoUnitario}
	if clienteID == nil {
		return res, nil
	}

	overrides, err := s.catalogo.PreciosCliente(ctx, tipo, *clienteID, itemID)
	if err != nil {
		return nil, err
	}
	attrs := atributosDe(item, atributos)
	for _, pc := range overrides {
		if pc.Coincide(attrs) {
			res.CostoUnitario = pc.CostoUnitario
			res.PrecioCliente = pc
			break
		}
	}
	return res, nil
}

// atributosDe adds the item's own attributes to the request ones. Request
// values win.
func atributosDe(item model.ItemVersionado, req map[string]string) map[string]string {
	out := make(map[string]string, len(req)+1)
	if imp, ok := item.(*model.Impresion); ok && imp.Caras > 0 {
		out["caras"] = strconv.Itoa(imp.Caras)
	}
	for k, v := range req {
		out[k] = v
	}
	return out
}
