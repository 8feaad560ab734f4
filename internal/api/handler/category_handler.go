package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shopfront/catalog-api/internal/core/ports"
)

// CategoryHandler handles HTTP requests for category operations.
type CategoryHandler struct {
	service ports.CatalogService
}

func NewCategoryHandler(service ports.CatalogService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// Create adds a category.
//
// @Summary      Create a category
// @Tags         categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createCategoryRequest  true  "Category"
// @Success      201   {object}  categoryResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /products/categories [post]
func (h *CategoryHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createCategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}

	category, err := h.service.CreateCategory(c.Request().Context(), actor, toCreateCategoryInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// List returns one page of categories ordered by id.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Param        skip   query     int  false  "Offset"  default(0)
// @Param        limit  query     int  false  "Page size"  default(100)
// @Success      200    {array}   categoryResponse
// @Failure      422    {object}  errorResponse
// @Router       /products/categories [get]
func (h *CategoryHandler) List(c echo.Context) error {
	skip, limit, err := bindWindow(c)
	if err != nil {
		return err
	}

	categories, err := h.service.ListCategories(c.Request().Context(), skip, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCategoryResponses(categories))
}

// Delete removes a category that no product references.
//
// @Summary      Delete a category
// @Tags         categories
// @Security     BearerAuth
// @Param        id   path  int  true  "Category ID"
// @Success      204
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /products/categories/{id} [delete]
func (h *CategoryHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	if err := h.service.DeleteCategory(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
