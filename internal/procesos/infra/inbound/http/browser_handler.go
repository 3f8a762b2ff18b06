package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/davicafu/secopviewer/internal/procesos/application"
	"github.com/davicafu/secopviewer/internal/procesos/domain"
	"github.com/davicafu/secopviewer/pkg/utils"
)

const serviceKey = "procesos.browser"

// BrowserHandler encapsula los endpoints HTTP del navegador de procesos.
type BrowserHandler struct {
	registry   *application.SessionRegistry
	cookieName string
	cookieTTL  time.Duration
	log        *zap.Logger
}

// NewBrowserHandler crea un nuevo BrowserHandler
func NewBrowserHandler(registry *application.SessionRegistry, cookieName string, cookieTTL time.Duration, log *zap.Logger) *BrowserHandler {
	return &BrowserHandler{
		registry:   registry,
		cookieName: cookieName,
		cookieTTL:  cookieTTL,
		log:        log,
	}
}

// Session asegura que la petición tiene cookie de sesión y deja el
// BrowserService de esa sesión en el contexto de gin.
func (h *BrowserHandler) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(h.cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.cookieName, id, int(h.cookieTTL/time.Second), "/", "", false, true)

		svc, _ := h.registry.Get(c.Request.Context(), id)
		c.Set(serviceKey, svc)
		c.Next()
	}
}

func (h *BrowserHandler) service(c *gin.Context) *application.BrowserService {
	return c.MustGet(serviceKey).(*application.BrowserService)
}

// ---------------- Handlers ----------------

// Page endpoint GET /
func (h *BrowserHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "page.html", h.service(c).View())
}

// ViewJSON endpoint GET /api/vista
func (h *BrowserHandler) ViewJSON(c *gin.Context) {
	utils.SendSuccess(c, http.StatusOK, h.service(c).View())
}

// Search endpoint POST /buscar
func (h *BrowserHandler) Search(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		utils.SendBadRequest(c, "invalid form")
		return
	}
	svc := h.service(c)
	h.respond(c, svc, svc.Search(c.Request.Context(), domain.FormValues(c.Request.Form)))
}

// Refresh endpoint POST /refrescar
func (h *BrowserHandler) Refresh(c *gin.Context) {
	svc := h.service(c)
	h.respond(c, svc, svc.RefreshList(c.Request.Context()))
}

// PrevPage endpoint POST /anterior
func (h *BrowserHandler) PrevPage(c *gin.Context) {
	svc := h.service(c)
	h.respond(c, svc, svc.PrevPage(c.Request.Context()))
}

// NextPage endpoint POST /siguiente
func (h *BrowserHandler) NextPage(c *gin.Context) {
	svc := h.service(c)
	h.respond(c, svc, svc.NextPage(c.Request.Context()))
}

// Clear endpoint POST /limpiar: vacía filtros y vuelve a listar.
func (h *BrowserHandler) Clear(c *gin.Context) {
	svc := h.service(c)
	svc.ClearFilters()
	h.respond(c, svc, svc.RefreshList(c.Request.Context()))
}

// SelectChip endpoint POST /chips/:chip
func (h *BrowserHandler) SelectChip(c *gin.Context) {
	svc := h.service(c)
	view, err := svc.SelectChip(c.Request.Context(), c.Param("chip"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, svc, view)
}

// Summary endpoint POST /resumen
func (h *BrowserHandler) Summary(c *gin.Context) {
	svc := h.service(c)
	h.respond(c, svc, svc.RefreshSummary(c.Request.Context()))
}

// Status endpoint POST /estado
func (h *BrowserHandler) Status(c *gin.Context) {
	svc := h.service(c)
	h.respond(c, svc, svc.RefreshStatus(c.Request.Context()))
}

// TriggerSync endpoint POST /sync
func (h *BrowserHandler) TriggerSync(c *gin.Context) {
	svc := h.service(c)
	view, err := svc.TriggerSync(c.Request.Context(), c.Request.FormValue("mode"))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, svc, view)
}

// Export endpoint GET /exportar/:kind: audita y redirige a la descarga remota.
func (h *BrowserHandler) Export(c *gin.Context) {
	target, err := h.service(c).Export(c.Request.Context(), c.Param("kind"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, target)
}

// Catalog endpoint GET /api/catalogos/:catalogo
func (h *BrowserHandler) Catalog(c *gin.Context) {
	catalog := c.Param("catalogo")
	limit, _ := strconv.Atoi(c.Query("limit"))

	values, err := h.service(c).Catalog(c.Request.Context(), catalog, strings.TrimSpace(c.Query("q")), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	utils.SendSuccess(c, http.StatusOK, gin.H{
		"catalogo": catalog,
		"items":    values,
	})
}

// ---------------- Helpers ----------------

// respond guarda el estado de la sesión y contesta con la vista en JSON o
// redirigiendo a la página.
func (h *BrowserHandler) respond(c *gin.Context, svc *application.BrowserService, view application.View) {
	_ = h.registry.Persist(c.Request.Context(), svc)

	if wantsJSON(c) {
		utils.SendSuccess(c, http.StatusOK, view)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *BrowserHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUnknownChip),
		errors.Is(err, domain.ErrUnknownExport),
		errors.Is(err, domain.ErrUnknownCatalog):
		utils.SendNotFound(c, err.Error())
	case errors.Is(err, domain.ErrInvalidSyncMode):
		utils.SendBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrUpstreamUnavailable),
		errors.Is(err, domain.ErrUpstreamStatus),
		errors.Is(err, domain.ErrUpstreamPayload):
		utils.SendBadGateway(c, "procesos service unavailable")
	default:
		h.log.Error("Unexpected error", zap.String("path", c.FullPath()), zap.Error(err))
		utils.SendInternalServerError(c, "internal error")
	}
}

func wantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}
