package handler

import (
	"net/http"

	"cotizador/internal/dto"
	"cotizador/internal/service"

	"github.com/gin-gonic/gin"
)

type CotizacionesHandler struct {
	svc         service.CotizacionService
	exportacion service.ExportacionService
}

func NewCotizacionesHandler(svc service.CotizacionService, exportacion service.ExportacionService) *CotizacionesHandler {
	return &CotizacionesHandler{svc: svc, exportacion: exportacion}
}

// Crear godoc
// @Summary      Emitir cotizacion
// @Description  Calcula y persiste una cotizacion congelada con numero correlativo
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CotizacionRequest  true  "Configuracion a cotizar"
// @Success      201   {object}  dto.CotizacionResponse
// @Failure      404   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/cotizaciones [post]
func (h *CotizacionesHandler) Crear(c *gin.Context) {
	var req dto.CotizacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Calcular godoc
// @Summary      Previsualizar cotizacion
// @Description  Mismo calculo que la emision, sin persistir ni numerar
// @Tags         cotizaciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      dto.CotizacionRequest  true  "Configuracion a cotizar"
// @Success      200   {object}  dto.CotizacionResponse
// @Failure      422   {object}  apierror.ValidationError
// @Router       /v1/cotizaciones/calcular [post]
func (h *CotizacionesHandler) Calcular(c *gin.Context) {
	var req dto.CotizacionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Calcular(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Listar godoc
// @Summary      Listar cotizaciones
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        cliente_id   query     string  false  "Filtrar por cliente"
// @Param        producto_id  query     string  false  "Filtrar por producto"
// @Param        page         query     int     false  "Pagina"             default(1)
// @Param        limit        query     int     false  "Items por pagina"   default(50)
// @Success      200          {object}  dto.CotizacionListResponse
// @Router       /v1/cotizaciones [get]
func (h *CotizacionesHandler) Listar(c *gin.Context) {
	var filter dto.CotizacionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary      Obtener cotizacion
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "UUID de la cotizacion"
// @Success      200  {object}  dto.CotizacionResponse
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/cotizaciones/{id} [get]
func (h *CotizacionesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Exportacion godoc
// @Summary      Datos de exportacion
// @Description  Payload listo para los generadores PDF/Excel
// @Tags         cotizaciones
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "UUID de la cotizacion"
// @Success      200  {object}  dto.CotizacionExport
// @Failure      404  {object}  apierror.APIError
// @Router       /v1/cotizaciones/{id}/exportacion [get]
func (h *CotizacionesHandler) Exportacion(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.exportacion.Obtener(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
