package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/habibGamal/preparation-system/internal/models"
	"github.com/habibGamal/preparation-system/internal/services/inventory"
	"github.com/habibGamal/preparation-system/internal/services/manufacturing"
)

// ============================================================================
// PRODUCTS AND RECIPES
// ============================================================================

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var filter models.ProductFilter
	if t := models.ProductType(r.URL.Query().Get("type")); t != "" {
		if !t.IsValid() {
			s.writeError(w, r, fmt.Errorf("%w: unknown product type %q", errBadRequest, t))
			return
		}
		filter.Type = &t
	}
	filter.NameSearch = r.URL.Query().Get("q")
	filter.LowStock = r.URL.Query().Get("low_stock") == "true"

	list, err := s.svc.Inventory.ListProducts(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[*models.Product]{
		Items: list.Products, Total: list.Total, Page: list.Page, PageSize: list.PageSize,
	})
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var input inventory.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Inventory.CreateProduct(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Inventory.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var input inventory.ProductInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Inventory.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetRecipe(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Inventory.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recipe, err := s.svc.Recipes.GetRecipeForProduct(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

type recipeStatusResponse struct {
	*models.RecipeStatus
	Frozen bool `json:"frozen"`
}

func (s *Server) handleRecipeStatus(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Inventory.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.svc.Settings.Effective(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	status, err := s.svc.Recipes.Status(r.Context(), p, settings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipeStatusResponse{RecipeStatus: status, Frozen: status.Frozen()})
}

// handleCalculateRecipe recalculates on demand. max_orders overrides the
// configured window; no content means there were too few completed orders.
func (s *Server) handleCalculateRecipe(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Inventory.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.svc.Settings.Effective(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	maxOrders, err := queryInt(r, "max_orders", settings.MaximumOrders)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if maxOrders < 1 {
		s.writeError(w, r, fmt.Errorf("%w: max_orders must be positive", errBadRequest))
		return
	}

	recipe, err := s.svc.Recipes.CalculateRecipeWithLimit(r.Context(), p, settings, maxOrders)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recipe == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) handleListRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Recipes.ListRecipes(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []*models.Recipe{}
	}
	writeJSON(w, http.StatusOK, list)
}

// ============================================================================
// ORDERS
// ============================================================================

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var filter models.OrderFilter
	if st := models.OrderStatus(r.URL.Query().Get("status")); st != "" {
		if !st.IsValid() {
			s.writeError(w, r, fmt.Errorf("%w: unknown order status %q", errBadRequest, st))
			return
		}
		filter.Status = &st
	}
	if pid := r.URL.Query().Get("product_id"); pid != "" {
		filter.ProductID = &pid
	}

	list, err := s.svc.Manufacturing.ListOrders(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[*models.ManufacturingOrder]{
		Items: list.Orders, Total: list.Total, Page: list.Page, PageSize: list.PageSize,
	})
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var input manufacturing.OrderInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Manufacturing.CreateOrder(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Manufacturing.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var input manufacturing.OrderInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Manufacturing.UpdateDraft(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleDeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Manufacturing.DeleteDraft(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleOrderVariance(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings.Effective(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	warnings, err := s.svc.Manufacturing.VarianceWarnings(r.Context(), chi.URLParam(r, "id"), settings)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, warnings)
}

func (s *Server) handleCompleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	settings, err := s.svc.Settings.Effective(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Manufacturing.CompleteOrder(r.Context(), id, settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	o, err := s.svc.Manufacturing.GetOrder(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleCloneOrder(w http.ResponseWriter, r *http.Request) {
	o, err := s.svc.Manufacturing.Clone(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

// ============================================================================
// DOCUMENTS
// ============================================================================

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	page, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var filter models.DocumentFilter
	if k := models.DocumentKind(r.URL.Query().Get("kind")); k != "" {
		if !k.IsValid() {
			s.writeError(w, r, fmt.Errorf("%w: unknown document kind %q", errBadRequest, k))
			return
		}
		filter.Kind = &k
	}
	if st := models.DocumentStatus(r.URL.Query().Get("status")); st != "" {
		if !st.IsValid() {
			s.writeError(w, r, fmt.Errorf("%w: unknown document status %q", errBadRequest, st))
			return
		}
		filter.Status = &st
	}

	docs, total, err := s.svc.Inventory.ListDocuments(r.Context(), filter, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []*models.StockDocument{}
	}
	writeJSON(w, http.StatusOK, listResponse[*models.StockDocument]{
		Items: docs, Total: total, Page: page.Page, PageSize: page.Limit(),
	})
}

func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var input inventory.DocumentInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.svc.Inventory.CreateDocument(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Inventory.GetDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var input inventory.DocumentInput
	if err := decodeJSON(r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc, err := s.svc.Inventory.UpdateDocument(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Inventory.DeleteDocument(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCloseDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Inventory.CloseDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleCloneDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.svc.Inventory.CloneDocument(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// ============================================================================
// SETTINGS
// ============================================================================

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.svc.Settings.Effective(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings.Values())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var values map[models.SettingKey]string
	if err := decodeJSON(r, &values); err != nil {
		s.writeError(w, r, err)
		return
	}
	settings, err := s.svc.Settings.Update(r.Context(), values)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings.Values())
}
