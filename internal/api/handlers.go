package api

import (
	"bytes"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lukman83/sheetgen/internal/catalog"
	"github.com/lukman83/sheetgen/internal/export"
	"github.com/lukman83/sheetgen/internal/identifier"
	"github.com/lukman83/sheetgen/internal/models"
	"github.com/lukman83/sheetgen/internal/store"
)

type searchRequest struct {
	EAN string `json:"ean"`
	SKU string `json:"sku"`
}

type recordResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Product models.Product `json:"product"`
	Sheet   *models.Sheet  `json:"sheet"`
}

func (s *Server) search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Corps de requête invalide"})
		return
	}

	rec, err := s.svc.Search(c.Request.Context(), req.EAN, req.SKU)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordResponse{
		Success: true,
		Message: "Produit identifié et fiche générée",
		Product: rec.Product,
		Sheet:   rec.Sheet,
	})
}

func (s *Server) generate(c *gin.Context) {
	var req catalog.ManualEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Corps de requête invalide"})
		return
	}

	rec, err := s.svc.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordResponse{
		Success: true,
		Message: "Fiche générée",
		Product: rec.Product,
		Sheet:   rec.Sheet,
	})
}

func (s *Server) listProducts(c *gin.Context) {
	records, err := s.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	products := store.Products(records)
	c.JSON(http.StatusOK, gin.H{"products": products, "total": len(products)})
}

func (s *Server) getProduct(c *gin.Context) {
	rec, err := s.svc.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.svc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Produit supprimé"})
}

func (s *Server) listSheets(c *gin.Context) {
	records, err := s.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	sheets := store.Sheets(records)
	if sheets == nil {
		sheets = []models.Sheet{}
	}
	c.JSON(http.StatusOK, gin.H{"sheets": sheets, "total": len(sheets)})
}

func (s *Server) deleteSheet(c *gin.Context) {
	if err := s.svc.DeleteSheet(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Fiche supprimée"})
}

func (s *Server) exportProduct(c *gin.Context) {
	id := c.Param("id")
	s.export(c, id, func(buf *bytes.Buffer, f export.Format, cs export.Charset) error {
		return s.svc.Export(c.Request.Context(), buf, id, f, cs)
	})
}

func (s *Server) exportAll(c *gin.Context) {
	s.export(c, "all", func(buf *bytes.Buffer, f export.Format, cs export.Charset) error {
		return s.svc.ExportAll(c.Request.Context(), buf, f, cs)
	})
}

// export renders into memory first so a lookup failure still maps to a clean status.
func (s *Server) export(c *gin.Context, name string, write func(*bytes.Buffer, export.Format, export.Charset) error) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	charset, err := export.ParseCharset(c.Query("charset"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := write(&buf, format, charset); err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(name, string(format))+`"`)
	c.Data(http.StatusOK, export.ContentType(format, charset), buf.Bytes())
}

func writeError(c *gin.Context, err error) {
	var verr *identifier.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": verr.Message})
	case errors.Is(err, identifier.ErrMissingIdentifier):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Ressource introuvable"})
	default:
		log.Printf("api: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Erreur interne du serveur"})
	}
}
