package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	"github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
)

// MenuAPIController serves read views of the menu. Edits go through the
// change workflow under /api/changes.
type MenuAPIController struct {
	app        application.Application
	categories *services.CategoryService
	items      *services.MenuItemService
	prefixed   *services.PrefixedMenuService
	apiPrefix  string
}

func NewMenuAPIController(app application.Application) application.Controller {
	return &MenuAPIController{
		app:        app,
		categories: app.Service(services.CategoryService{}).(*services.CategoryService),
		items:      app.Service(services.MenuItemService{}).(*services.MenuItemService),
		prefixed:   app.Service(services.PrefixedMenuService{}).(*services.PrefixedMenuService),
		apiPrefix:  "/api/menu",
	}
}

func (c *MenuAPIController) Key() string {
	return c.apiPrefix
}

func (c *MenuAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(requireSignedIn)

	api.HandleFunc("/categories", c.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/items", c.ListItems).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", c.GetItem).Methods(http.MethodGet)
	api.HandleFunc("/prefixed-menus", c.ListPrefixedMenus).Methods(http.MethodGet)
}

func (c *MenuAPIController) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := c.categories.List(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toCategoryResponses(cats))
}

// ListItems accepts ?category=<slug>, ?available=true and a fuzzy ?q= filter.
func (c *MenuAPIController) ListItems(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	available, _ := strconv.ParseBool(query.Get("available"))
	params := menuitem.FindParams{
		CategorySlug: query.Get("category"),
		Available:    available,
	}
	items, err := c.items.Search(r.Context(), query.Get("q"), params)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toMenuItemResponses(items))
}

func (c *MenuAPIController) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := c.items.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, services.ErrMenuItemNotFound) {
			_ = httpapi.WriteAPIError(w, r, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", err.Error())
			return
		}
		writeInternal(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toMenuItemResponse(*item))
}

func (c *MenuAPIController) ListPrefixedMenus(w http.ResponseWriter, r *http.Request) {
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))
	menus, err := c.prefixed.List(r.Context(), activeOnly)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toPrefixedMenuResponses(menus))
}

func requireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := composables.UseActor(r.Context())
		if err != nil || !actor.IsAuthenticated() {
			_ = httpapi.WriteAPIError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "you must be signed in")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	composables.UseLogger(r.Context()).WithError(err).Error("menu api: request failed")
	_ = httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
}
