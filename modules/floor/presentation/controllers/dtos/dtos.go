package dtos

type TableWriteRequest struct {
	TableNumber *string `json:"table_number" validate:"omitempty,max=32"`
	Section     *string `json:"section" validate:"omitempty,max=64"`
	GuestCount  *int    `json:"guest_count"`
	Status      *string `json:"status" validate:"omitempty,max=32"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

type GuestWriteRequest struct {
	GuestNumber *int     `json:"guest_number" validate:"omitempty,min=1"`
	Name        *string  `json:"name" validate:"omitempty,max=120"`
	Notes       *string  `json:"notes" validate:"omitempty,max=2000"`
	Allergies   []string `json:"allergies" validate:"omitempty,dive,max=64"`
}

type OrderWriteRequest struct {
	GuestID *string `json:"guest_id"`
	Status  *string `json:"status" validate:"omitempty,max=32"`
	Notes   *string `json:"notes" validate:"omitempty,max=2000"`
}

type OrderItemWriteRequest struct {
	OrderID    *string  `json:"order_id"`
	GuestID    *string  `json:"guest_id"`
	MenuItemID *string  `json:"menu_item_id"`
	Name       *string  `json:"name" validate:"omitempty,max=200"`
	Quantity   *int     `json:"quantity" validate:"omitempty,min=1,max=99"`
	Modifiers  []string `json:"modifiers" validate:"omitempty,dive,max=120"`
	Notes      *string  `json:"notes" validate:"omitempty,max=2000"`
	Course     *string  `json:"course" validate:"omitempty,max=32"`
	Status     *string  `json:"status" validate:"omitempty,max=32"`
}

type TableResponse struct {
	ID          string `json:"id"`
	TableNumber string `json:"table_number"`
	Section     string `json:"section"`
	GuestCount  int    `json:"guest_count"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
	UserID      string `json:"user_id"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type GuestResponse struct {
	ID          string   `json:"id"`
	TableID     string   `json:"table_id"`
	GuestNumber int      `json:"guest_number"`
	Name        string   `json:"name"`
	Notes       string   `json:"notes"`
	Allergies   []string `json:"allergies"`
	CreatedAt   string   `json:"created_at"`
}

type OrderResponse struct {
	ID        string  `json:"id"`
	TableID   string  `json:"table_id"`
	GuestID   *string `json:"guest_id"`
	Status    string  `json:"status"`
	Notes     string  `json:"notes"`
	CreatedAt string  `json:"created_at"`
}

type OrderItemResponse struct {
	ID         string   `json:"id"`
	OrderID    *string  `json:"order_id"`
	TableID    string   `json:"table_id"`
	GuestID    *string  `json:"guest_id"`
	MenuItemID *string  `json:"menu_item_id"`
	Name       string   `json:"name"`
	Quantity   int      `json:"quantity"`
	Modifiers  []string `json:"modifiers"`
	Notes      string   `json:"notes"`
	Course     string   `json:"course"`
	Status     string   `json:"status"`
	CreatedAt  string   `json:"created_at"`
}

type TableOrdersResponse struct {
	Orders []OrderResponse     `json:"orders"`
	Items  []OrderItemResponse `json:"items"`
}
