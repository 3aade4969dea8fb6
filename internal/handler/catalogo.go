package handler

import (
	"net/http"
	"strings"

	"cotizador/internal/apierror"
	"cotizador/internal/dto"
	"cotizador/internal/model"
	"cotizador/internal/service"

	"github.com/gin-gonic/gin"
)

type CatalogoHandler struct {
	svc service.CatalogoService
}

func NewCatalogoHandler(svc service.CatalogoService) *CatalogoHandler {
	return &CatalogoHandler{svc: svc}
}

// paramTipo accepts "material", "impresion-cliente", "ACABADO_CLIENTE", ...
func paramTipo(c *gin.Context) (model.TipoCatalogo, bool) {
	tipo := model.TipoCatalogo(strings.ToUpper(strings.ReplaceAll(c.Param("tipo"), "-", "_")))
	if !tipo.Valido() {
		c.JSON(http.StatusBadRequest, apierror.New("Tipo de catalogo invalido"))
		return "", false
	}
	return tipo, true
}

// Actual godoc
// @Summary      Version vigente de un item
// @Tags         catalogo
// @Produce      json
// @Security     BearerAuth
// @Param        tipo  path      string  true  "material | impresion | acabado | *-cliente"
// @Param        id    path      string  true  "UUID de la serie"
// @Success      200   {object}  dto.VersionResponse
// @Failure      404   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError
// @Router       /v1/catalogo/{tipo}/{id} [get]
func (h *CatalogoHandler) Actual(c *gin.Context) {
	tipo, ok := paramTipo(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerActual(c.Request.Context(), tipo, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Historial godoc
// @Summary      Historial de versiones
// @Tags         catalogo
// @Produce      json
// @Security     BearerAuth
// @Param        tipo  path      string  true  "Tipo de catalogo"
// @Param        id    path      string  true  "UUID de la serie"
// @Success      200   {object}  dto.HistorialVersionesResponse
// @Failure      404   {object}  apierror.APIError
// @Router       /v1/catalogo/{tipo}/{id}/versiones [get]
func (h *CatalogoHandler) Historial(c *gin.Context) {
	tipo, ok := paramTipo(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Historial(c.Request.Context(), tipo, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// NuevaVersion godoc
// @Summary      Crear nueva version
// @Description  Cierra la version vigente y crea la siguiente con los cambios indicados
// @Tags         catalogo
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tipo  path      string                   true  "Tipo de catalogo"
// @Param        id    path      string                   true  "UUID de la serie"
// @Param        body  body      dto.NuevaVersionRequest  true  "Cambios"
// @Success      201   {object}  dto.VersionResponse
// @Failure      404   {object}  apierror.APIError
// @Failure      409   {object}  apierror.APIError
// @Router       /v1/catalogo/{tipo}/{id}/versiones [post]
func (h *CatalogoHandler) NuevaVersion(c *gin.Context) {
	tipo, ok := paramTipo(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req dto.NuevaVersionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.NuevaVersion(c.Request.Context(), tipo, id, req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
