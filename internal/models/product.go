package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Offer is one shop's entry on a product page. It has no identity of its own.
type Offer struct {
	ShopName string `json:"shop_name" bson:"shopName"`
	Price    string `json:"price" bson:"price"`
	ShopLink string `json:"shop_link" bson:"shopLink"`
}

// Product holds every offer collected for one product URL.
type Product struct {
	ID          int64     `json:"-" db:"id" bson:"-"`
	ProductURL  string    `json:"product_url" db:"product_url" bson:"productUrl"`
	Offers      Offers    `json:"offers" db:"offers" bson:"offers"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated" bson:"lastUpdated"`
	CreatedAt   time.Time `json:"created_at" db:"created_at" bson:"createdAt"`
}

// Offers is stored as a single JSON column so the list is always written whole.
type Offers []Offer

// Value implements the driver.Valuer interface to convert the offers to JSON for database storage
func (o Offers) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	b, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface to convert JSON from database to Offers
func (o *Offers) Scan(value interface{}) error {
	if value == nil {
		*o = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("unsupported type for Offers")
	}
	return json.Unmarshal(bytes, o)
}

// ProductFilters holds the paging parameters of the products API.
type ProductFilters struct {
	Limit  int
	Offset int
}

// ProductsResponse is the JSON body served on /products.
type ProductsResponse struct {
	Data       []Product  `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	TotalPages  int `json:"total_pages"`
	CurrentPage int `json:"current_page"`
	Total       int `json:"total"`
}
