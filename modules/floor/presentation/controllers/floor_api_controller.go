package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	changeservices "github.com/tablemaster/tablemaster/modules/changes/services"
	"github.com/tablemaster/tablemaster/modules/floor/domain/order"
	"github.com/tablemaster/tablemaster/modules/floor/domain/table"
	"github.com/tablemaster/tablemaster/modules/floor/presentation/controllers/dtos"
	"github.com/tablemaster/tablemaster/modules/floor/services"
	"github.com/tablemaster/tablemaster/modules/menu/domain/menuitem"
	menuservices "github.com/tablemaster/tablemaster/modules/menu/services"
	"github.com/tablemaster/tablemaster/pkg/application"
	"github.com/tablemaster/tablemaster/pkg/composables"
	"github.com/tablemaster/tablemaster/pkg/httpapi"
	"github.com/tablemaster/tablemaster/pkg/recordstore"
	"github.com/tablemaster/tablemaster/pkg/serrors"
)

// FloorAPIController serves seating and ordering for signed-in staff.
type FloorAPIController struct {
	app       application.Application
	tables    *services.TableService
	guests    *services.GuestService
	orders    *services.OrderService
	apiPrefix string
}

func NewFloorAPIController(app application.Application) application.Controller {
	return &FloorAPIController{
		app:       app,
		tables:    app.Service(services.TableService{}).(*services.TableService),
		guests:    app.Service(services.GuestService{}).(*services.GuestService),
		orders:    app.Service(services.OrderService{}).(*services.OrderService),
		apiPrefix: "/api/floor",
	}
}

func (c *FloorAPIController) Key() string {
	return c.apiPrefix
}

func (c *FloorAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(requireSignedIn)

	api.HandleFunc("/tables", c.ListTables).Methods(http.MethodGet)
	api.HandleFunc("/tables", c.CreateTable).Methods(http.MethodPost)
	api.HandleFunc("/tables/{id}", c.GetTable).Methods(http.MethodGet)
	api.HandleFunc("/tables/{id}", c.UpdateTable).Methods(http.MethodPatch)
	api.HandleFunc("/tables/{id}", c.DeleteTable).Methods(http.MethodDelete)

	api.HandleFunc("/tables/{id}/guests", c.ListGuests).Methods(http.MethodGet)
	api.HandleFunc("/tables/{id}/guests", c.SeatGuest).Methods(http.MethodPost)
	api.HandleFunc("/guests/{id}", c.UpdateGuest).Methods(http.MethodPatch)
	api.HandleFunc("/guests/{id}", c.RemoveGuest).Methods(http.MethodDelete)

	api.HandleFunc("/tables/{id}/orders", c.ListOrders).Methods(http.MethodGet)
	api.HandleFunc("/tables/{id}/orders", c.OpenOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", c.UpdateOrder).Methods(http.MethodPatch)
	api.HandleFunc("/orders/{id}", c.DeleteOrder).Methods(http.MethodDelete)

	api.HandleFunc("/tables/{id}/items", c.AddItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", c.UpdateItem).Methods(http.MethodPatch)
	api.HandleFunc("/items/{id}", c.RemoveItem).Methods(http.MethodDelete)
}

// ListTables accepts ?section= and ?mine=true.
func (c *FloorAPIController) ListTables(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := table.FindParams{Section: query.Get("section")}
	if mine, _ := strconv.ParseBool(query.Get("mine")); mine {
		actor, _ := composables.UseActor(r.Context())
		params.UserID = actor.ID
	}
	tables, err := c.tables.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dtos.TableResponse, 0, len(tables))
	for _, t := range tables {
		out = append(out, toTableResponse(t))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *FloorAPIController) CreateTable(w http.ResponseWriter, r *http.Request) {
	var body dtos.TableWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	t, err := c.tables.Create(r.Context(), tableFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toTableResponse(*t))
}

func (c *FloorAPIController) GetTable(w http.ResponseWriter, r *http.Request) {
	t, err := c.tables.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTableResponse(*t))
}

func (c *FloorAPIController) UpdateTable(w http.ResponseWriter, r *http.Request) {
	var body dtos.TableWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	t, err := c.tables.Update(r.Context(), mux.Vars(r)["id"], tableFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTableResponse(*t))
}

func (c *FloorAPIController) DeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := c.tables.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *FloorAPIController) ListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := c.guests.ListByTable(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]dtos.GuestResponse, 0, len(guests))
	for _, g := range guests {
		out = append(out, toGuestResponse(g))
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, out)
}

func (c *FloorAPIController) SeatGuest(w http.ResponseWriter, r *http.Request) {
	var body dtos.GuestWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	g, err := c.guests.Seat(r.Context(), mux.Vars(r)["id"], guestFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toGuestResponse(*g))
}

func (c *FloorAPIController) UpdateGuest(w http.ResponseWriter, r *http.Request) {
	var body dtos.GuestWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	g, err := c.guests.Update(r.Context(), mux.Vars(r)["id"], guestFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toGuestResponse(*g))
}

func (c *FloorAPIController) RemoveGuest(w http.ResponseWriter, r *http.Request) {
	if err := c.guests.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *FloorAPIController) ListOrders(w http.ResponseWriter, r *http.Request) {
	ticket, err := c.orders.ListByTable(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toTableOrdersResponse(ticket))
}

func (c *FloorAPIController) OpenOrder(w http.ResponseWriter, r *http.Request) {
	var body dtos.OrderWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	o, err := c.orders.Open(r.Context(), mux.Vars(r)["id"], orderFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toOrderResponse(*o))
}

func (c *FloorAPIController) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var body dtos.OrderWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	o, err := c.orders.Update(r.Context(), mux.Vars(r)["id"], orderFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrderResponse(*o))
}

func (c *FloorAPIController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := c.orders.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *FloorAPIController) AddItem(w http.ResponseWriter, r *http.Request) {
	var body dtos.OrderItemWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	item, err := c.orders.AddItem(r.Context(), mux.Vars(r)["id"], itemFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, toOrderItemResponse(*item))
}

func (c *FloorAPIController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var body dtos.OrderItemWriteRequest
	if err := httpapi.DecodeJSON(r, &body); err != nil {
		writeDecodeError(w, r, err)
		return
	}
	item, err := c.orders.UpdateItem(r.Context(), mux.Vars(r)["id"], itemFields(body))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, toOrderItemResponse(*item))
}

func (c *FloorAPIController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := c.orders.RemoveItem(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tableFields(body dtos.TableWriteRequest) services.TableFields {
	return services.TableFields{
		TableNumber: body.TableNumber,
		Section:     body.Section,
		GuestCount:  body.GuestCount,
		Status:      body.Status,
		Notes:       body.Notes,
	}
}

func guestFields(body dtos.GuestWriteRequest) services.GuestFields {
	return services.GuestFields{
		GuestNumber: body.GuestNumber,
		Name:        body.Name,
		Notes:       body.Notes,
		Allergies:   body.Allergies,
	}
}

func orderFields(body dtos.OrderWriteRequest) services.OrderFields {
	return services.OrderFields{GuestID: body.GuestID, Status: body.Status, Notes: body.Notes}
}

func itemFields(body dtos.OrderItemWriteRequest) services.ItemFields {
	return services.ItemFields{
		OrderID:    body.OrderID,
		GuestID:    body.GuestID,
		MenuItemID: body.MenuItemID,
		Name:       body.Name,
		Quantity:   body.Quantity,
		Modifiers:  body.Modifiers,
		Notes:      body.Notes,
		Course:     body.Course,
		Status:     body.Status,
	}
}

func requireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := composables.UseActor(r.Context())
		if err != nil || !actor.IsAuthenticated() {
			writeServiceError(w, r, changeservices.ErrUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		base     *serrors.BaseError
		writeErr *recordstore.WriteError
	)
	switch {
	case errors.Is(err, changeservices.ErrUnauthenticated):
		writeCoded(w, r, http.StatusUnauthorized, err)
	case services.IsNotFound(err):
		writeCoded(w, r, http.StatusNotFound, err)
	case errors.Is(err, menuservices.ErrMenuItemNotFound), errors.Is(err, menuitem.ErrNotFound):
		_ = httpapi.WriteAPIError(w, r, http.StatusNotFound, "MENU_ITEM_NOT_FOUND", err.Error())
	case errors.Is(err, table.ErrDuplicateNumber), errors.Is(err, services.ErrMenuItemUnavailable):
		writeCoded(w, r, http.StatusConflict, err)
	case errors.Is(err, table.ErrNumberRequired), errors.Is(err, order.ErrItemName):
		writeCoded(w, r, http.StatusUnprocessableEntity, err)
	case errors.As(err, &writeErr):
		composables.UseLogger(r.Context()).WithError(err).Error("record store write failed")
		_ = httpapi.WriteAPIError(w, r, http.StatusBadGateway, "WRITE_FAILED", err.Error())
	case errors.As(err, &base):
		writeCoded(w, r, http.StatusBadRequest, err)
	default:
		composables.UseLogger(r.Context()).WithError(err).Error("floor api: unexpected error")
		_ = httpapi.WriteAPIError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func writeCoded(w http.ResponseWriter, r *http.Request, status int, err error) {
	var base *serrors.BaseError
	if errors.As(err, &base) {
		_ = httpapi.WriteAPIError(w, r, status, base.Code, base.Message)
		return
	}
	_ = httpapi.WriteAPIError(w, r, status, "INTERNAL", err.Error())
}

func writeDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		_ = httpapi.WriteAPIError(w, r, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}
	_ = httpapi.WriteAPIError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid json body")
}
