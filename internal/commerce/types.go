package commerce

// CatalogProduct is a read-only snapshot of a storefront product. Prices are
// in minor currency units.
type Product struct {
	ID          string
	Name        string
	Description string
	PriceMinor  int
	ImageID     string
}

// CartItem is one line of the backend's authoritative cart.
type CartItem struct {
	ID             string
	Name           string
	Quantity       int
	UnitPriceMinor int
	LineTotalMinor int
}

// Location is a fulfillment outlet from the backend's location registry.
// Coordinates stay as raw strings here: registry entries are free-form flow
// fields and may be absent or garbage, which the delivery resolver handles.
type Location struct {
	ID        string
	Address   string
	Longitude string
	Latitude  string
}

// ProductSeed is the input for catalog seeding.
type ProductSeed struct {
	Name        string `json:"name"`
	SKU         string `json:"sku"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	PriceMinor  int    `json:"price_minor"`
	ImageURL    string `json:"image_url"`
}

// ---- wire format (Elastic Path style envelopes) ----

type productData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Meta        struct {
		DisplayPrice struct {
			WithTax struct {
				Amount int `json:"amount"`
			} `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
	Relationships struct {
		MainImage struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

func (d productData) toProduct() Product {
	return Product{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		PriceMinor:  d.Meta.DisplayPrice.WithTax.Amount,
		ImageID:     d.Relationships.MainImage.Data.ID,
	}
}

type cartItemData struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Meta     struct {
		DisplayPrice struct {
			WithTax struct {
				Unit struct {
					Amount int `json:"amount"`
				} `json:"unit"`
				Value struct {
					Amount int `json:"amount"`
				} `json:"value"`
			} `json:"with_tax"`
		} `json:"display_price"`
	} `json:"meta"`
}

func (d cartItemData) toItem() CartItem {
	return CartItem{
		ID:             d.ID,
		Name:           d.Name,
		Quantity:       d.Quantity,
		UnitPriceMinor: d.Meta.DisplayPrice.WithTax.Unit.Amount,
		LineTotalMinor: d.Meta.DisplayPrice.WithTax.Value.Amount,
	}
}

type entryData struct {
	ID        string `json:"id"`
	Address   string `json:"address"`
	Longitude any    `json:"longitude"`
	Latitude  any    `json:"latitude"`
}
