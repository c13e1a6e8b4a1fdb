package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tiendaf1/shop/internal/es"
	"github.com/tiendaf1/shop/internal/events"
	"github.com/tiendaf1/shop/internal/logging"
	"github.com/tiendaf1/shop/internal/models"
)

type ProductHandler struct {
	DB      *gorm.DB
	Events  *events.Producer
	ES      *elasticsearch.Client
	ESIndex string
}

// CreateProductRequest: price is a pointer so a missing field is
// distinguishable from an explicit zero.
type CreateProductRequest struct {
	Name    string   `json:"name"`
	Price   *float64 `json:"price"`
	Image   *string  `json:"image"`
	Section string   `json:"section"`
}

// PatchProductRequest is a sparse patch: only non-nil fields reach the
// update statement.
type PatchProductRequest struct {
	Name    *string  `json:"name"`
	Price   *float64 `json:"price"`
	Image   *string  `json:"image"`
	Section *string  `json:"section"`
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Events.Publish(ctx, events.TopicProductEvents, fmt.Sprint(event["productID"]), event); err != nil {
		logging.FromContext(c.Request().Context()).Error("product event publish failed", "error", err)
	}
}

func (h *ProductHandler) indexProduct(c echo.Context, p models.Product) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := es.IndexProduct(ctx, h.ES, h.ESIndex, p); err != nil {
		logging.FromContext(c.Request().Context()).Error("product index failed", "error", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.list")

	section := c.QueryParam("section")
	if section != "" && section != "all" && !models.ValidSection(section) {
		l.Warn("list_products_failed", "status", 400, "reason", "invalid section", "section", section)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section")
	}

	q := h.DB.WithContext(ctx).Model(&models.Product{}).Order("id DESC")
	if section != "" && section != "all" {
		q = q.Where("section = ?", section)
	}

	items := []models.Product{}
	if err := q.Find(&items).Error; err != nil {
		l.Error("list_products_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_product_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Price == nil || req.Section == "" {
		l.Warn("create_product_failed", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "name, price and section required")
	}
	if !models.ValidSection(req.Section) {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid section")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section")
	}
	if *req.Price < 0 {
		l.Warn("create_product_failed", "status", 400, "reason", "negative price")
		return echo.NewHTTPError(http.StatusBadRequest, "price must be non-negative")
	}

	prod := models.Product{
		Name:    req.Name,
		Price:   *req.Price,
		Image:   normalizeImage(req.Image),
		Section: req.Section,
	}
	if err := h.DB.WithContext(ctx).Create(&prod).Error; err != nil {
		if isUniqueViolation(err) {
			l.Warn("create_product_failed", "status", 409, "reason", "duplicate name+section")
			return echo.NewHTTPError(http.StatusConflict, "duplicate product (name+section)")
		}
		l.Error("create_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.indexProduct(c, prod)
	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "id not an integer")
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	var req PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_product_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Section != nil && !models.ValidSection(*req.Section) {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid section")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid section")
	}
	if req.Price != nil && *req.Price < 0 {
		l.Warn("update_product_failed", "status", 400, "reason", "negative price")
		return echo.NewHTTPError(http.StatusBadRequest, "price must be non-negative")
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Image != nil {
		updates["image"] = normalizeImage(req.Image)
	}
	if req.Section != nil {
		updates["section"] = *req.Section
	}
	if len(updates) == 0 {
		l.Warn("update_product_failed", "status", 400, "reason", "nothing to update")
		return echo.NewHTTPError(http.StatusBadRequest, "nothing to update")
	}

	var prod models.Product
	if err := h.DB.WithContext(ctx).First(&prod, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("update_product_failed", "status", 404, "reason", "not found")
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		l.Error("update_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := h.DB.WithContext(ctx).Model(&prod).Updates(updates).Error; err != nil {
		if isUniqueViolation(err) {
			l.Warn("update_product_failed", "status", 409, "reason", "duplicate name+section")
			return echo.NewHTTPError(http.StatusConflict, "duplicate product (name+section)")
		}
		l.Error("update_product_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	h.indexProduct(c, prod)
	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})

	l.Info("update_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_failed", "status", 400, "reason", "id not an integer")
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	res := h.DB.WithContext(ctx).Delete(&models.Product{}, id)
	if res.Error != nil {
		l.Error("delete_product_failed", "status", 500, "error", res.Error)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if h.ES != nil {
		esCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := es.DeleteProduct(esCtx, h.ES, h.ESIndex, uint(id)); err != nil {
			l.Error("product index delete failed", "error", err)
		}
	}
	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})

	l.Info("delete_product_success", "product_id", id, "deleted", res.RowsAffected)
	return c.JSON(http.StatusOK, echo.Map{"ok": true, "deletedCount": res.RowsAffected})
}

// normalizeImage maps an empty string to NULL, mirroring the original API
// where `image: ""` clears the field.
func normalizeImage(img *string) *string {
	if img == nil || *img == "" {
		return nil
	}
	return img
}
