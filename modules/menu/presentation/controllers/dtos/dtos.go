package dtos

type CategoryResponse struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type MenuItemResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	CategoryID    string   `json:"category_id"`
	Category      string   `json:"category"`
	CategorySlug  string   `json:"category_slug"`
	CategoryName  string   `json:"category_name"`
	Price         string   `json:"price"`
	Currency      string   `json:"currency"`
	Allergens     []string `json:"allergens"`
	CommonMods    []string `json:"common_mods"`
	IsUnavailable bool     `json:"is_unavailable"`
	Country       *string  `json:"country"`
	Origin        *string  `json:"origin"`
	Cut           *string  `json:"cut"`
	WeightOz      *float64 `json:"weight_oz"`
	AgingDays     *float64 `json:"aging_days"`
	Notes         *string  `json:"notes"`
	CreatedAt     string   `json:"created_at"`
}

type PrefixedMenuResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       *string `json:"price"`
	Courses     []any   `json:"courses"`
	IsActive    bool    `json:"is_active"`
	CreatedAt   string  `json:"created_at"`
}
