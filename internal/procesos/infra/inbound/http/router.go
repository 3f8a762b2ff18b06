package http

import (
	"embed"
	"html/template"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed templates/*.html
var templatesFS embed.FS

// LoadTemplates devuelve las plantillas HTML embebidas del navegador.
func LoadTemplates() *template.Template {
	return template.Must(template.ParseFS(templatesFS, "templates/*.html"))
}

func RegisterBrowserRoutes(r *gin.Engine, handler *BrowserHandler) {
	r.SetHTMLTemplate(LoadTemplates())

	browser := r.Group("/", handler.Session())
	{
		browser.GET("/", handler.Page)
		browser.POST("/buscar", handler.Search)
		browser.POST("/refrescar", handler.Refresh)
		browser.POST("/anterior", handler.PrevPage)
		browser.POST("/siguiente", handler.NextPage)
		browser.POST("/limpiar", handler.Clear)
		browser.POST("/chips/:chip", handler.SelectChip)
		browser.POST("/resumen", handler.Summary)
		browser.POST("/estado", handler.Status)
		browser.POST("/sync", handler.TriggerSync)
		browser.GET("/exportar/:kind", handler.Export)
	}

	api := r.Group("/api", handler.Session())
	{
		api.GET("/vista", handler.ViewJSON)
		api.GET("/catalogos/:catalogo", handler.Catalog)
	}
}

// RegisterOpsRoutes expone salud y métricas Prometheus.
func RegisterOpsRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
