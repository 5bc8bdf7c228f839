package domain

import (
	"time"
)

// HeaderFields holds every sales order header column except the store-assigned identity.
type HeaderFields struct {
	RevisionNumber         *int64     `db:"revision_number" json:"RevisionNumber"`
	OrderDate              *time.Time `db:"order_date" json:"OrderDate"`
	DueDate                *time.Time `db:"due_date" json:"DueDate"`
	ShipDate               *time.Time `db:"ship_date" json:"ShipDate"`
	Status                 *int64     `db:"status" json:"Status"`
	OnlineOrderFlag        *bool      `db:"online_order_flag" json:"OnlineOrderFlag"`
	SalesOrderNumber       string     `db:"sales_order_number" json:"SalesOrderNumber"`
	PurchaseOrderNumber    *string    `db:"purchase_order_number" json:"PurchaseOrderNumber"`
	AccountNumber          *string    `db:"account_number" json:"AccountNumber"`
	CustomerID             *int64     `db:"customer_id" json:"CustomerID"`
	SalesPersonID          *int64     `db:"sales_person_id" json:"SalesPersonID"`
	TerritoryID            *int64     `db:"territory_id" json:"TerritoryID"`
	BillToAddressID        *int64     `db:"bill_to_address_id" json:"BillToAddressID"`
	ShipToAddressID        *int64     `db:"ship_to_address_id" json:"ShipToAddressID"`
	ShipMethodID           *int64     `db:"ship_method_id" json:"ShipMethodID"`
	CreditCardID           *int64     `db:"credit_card_id" json:"CreditCardID"`
	CreditCardApprovalCode *string    `db:"credit_card_approval_code" json:"CreditCardApprovalCode"`
	CurrencyRateID         *int64     `db:"currency_rate_id" json:"CurrencyRateID"`
	SubTotal               float64    `db:"sub_total" json:"SubTotal"`
	TaxAmt                 float64    `db:"tax_amt" json:"TaxAmt"`
	Freight                float64    `db:"freight" json:"Freight"`
	TotalDue               float64    `db:"total_due" json:"TotalDue"`
}

// SalesOrderHeader is a persisted order header.
type SalesOrderHeader struct {
	SalesOrderID int64 `db:"sales_order_id" json:"SalesOrderID"`
	HeaderFields
}

// DetailFields holds the persisted columns of a detail line other than its identities.
type DetailFields struct {
	ProductID             int64   `db:"product_id" json:"ProductID"`
	OrderQty              int64   `db:"order_qty" json:"OrderQty"`
	UnitPrice             float64 `db:"unit_price" json:"UnitPrice"`
	UnitPriceDiscount     float64 `db:"unit_price_discount" json:"UnitPriceDiscount"`
	LineTotal             float64 `db:"line_total" json:"LineTotal"`
	CarrierTrackingNumber *string `db:"carrier_tracking_number" json:"CarrierTrackingNumber"`
	SpecialOfferID        *int64  `db:"special_offer_id" json:"SpecialOfferID"`
}

// SalesOrderDetail is a persisted detail line.
type SalesOrderDetail struct {
	SalesOrderDetailID int64 `db:"sales_order_detail_id" json:"SalesOrderDetailID"`
	SalesOrderID       int64 `db:"sales_order_id" json:"SalesOrderID"`
	DetailFields
}

// Product is a catalog product. Read-only to the order pipeline.
type Product struct {
	ProductID            int64    `db:"product_id" json:"ProductID"`
	Name                 *string  `db:"name" json:"Name"`
	ProductNumber        string   `db:"product_number" json:"ProductNumber"`
	MakeFlag             *bool    `db:"make_flag" json:"MakeFlag"`
	FinishedGoodsFlag    *bool    `db:"finished_goods_flag" json:"FinishedGoodsFlag"`
	Color                *string  `db:"color" json:"Color"`
	StandardCost         *float64 `db:"standard_cost" json:"StandardCost"`
	ListPrice            *float64 `db:"list_price" json:"ListPrice"`
	Size                 *string  `db:"size" json:"Size"`
	ProductLine          *string  `db:"product_line" json:"ProductLine"`
	Class                *string  `db:"class" json:"Class"`
	Style                *string  `db:"style" json:"Style"`
	ProductSubcategoryID *int64   `db:"product_subcategory_id" json:"ProductSubcategoryID"`
	ProductModelID       *int64   `db:"product_model_id" json:"ProductModelID"`
}

// Customer links a person or store to orders.
type Customer struct {
	CustomerID    int64   `db:"customer_id" json:"CustomerID"`
	PersonID      *int64  `db:"person_id" json:"PersonID"`
	StoreID       *int64  `db:"store_id" json:"StoreID"`
	TerritoryID   *int64  `db:"territory_id" json:"TerritoryID"`
	AccountNumber *string `db:"account_number" json:"AccountNumber"`
}

// IndividualCustomer is a person record; BusinessEntityID matches Customer.PersonID.
type IndividualCustomer struct {
	IndividualCustomerID int64   `db:"individual_customer_id" json:"IndividualCustomerID"`
	BusinessEntityID     int64   `db:"business_entity_id" json:"BusinessEntityID"`
	FirstName            string  `db:"first_name" json:"FirstName"`
	MiddleName           *string `db:"middle_name" json:"MiddleName"`
	LastName             string  `db:"last_name" json:"LastName"`
	AddressType          *string `db:"address_type" json:"AddressType"`
	AddressLine1         *string `db:"address_line1" json:"AddressLine1"`
	AddressLine2         *string `db:"address_line2" json:"AddressLine2"`
	City                 *string `db:"city" json:"City"`
	StateProvinceName    *string `db:"state_province_name" json:"StateProvinceName"`
	PostalCode           *string `db:"postal_code" json:"PostalCode"`
	CountryRegionName    *string `db:"country_region_name" json:"CountryRegionName"`
}

// HydratedDetail is a persisted detail line enriched with the product display fields.
type HydratedDetail struct {
	SalesOrderDetail
	ProductNumber string   `json:"ProductNumber"`
	Name          *string  `json:"Name"`
	Color         *string  `json:"Color"`
	Size          *string  `json:"Size"`
	ListPrice     *float64 `json:"ListPrice"`
}

// Hydrate merges the product display fields into a persisted detail line.
func Hydrate(detail SalesOrderDetail, product Product) HydratedDetail {
	return HydratedDetail{
		SalesOrderDetail: detail,
		ProductNumber:    product.ProductNumber,
		Name:             product.Name,
		Color:            product.Color,
		Size:             product.Size,
		ListPrice:        product.ListPrice,
	}
}

// Warning codes reported alongside a persisted order.
const (
	WarnCustomerUnresolved   = "CUSTOMER_UNRESOLVED"
	WarnProductUnresolved    = "PRODUCT_UNRESOLVED"
	WarnProductNumberMissing = "PRODUCT_NUMBER_MISSING"
	WarnDateUnparseable      = "DATE_UNPARSEABLE"
	WarnFieldIgnored         = "FIELD_IGNORED"
	WarnArchiveFailed        = "ARCHIVE_FAILED"
)

// Warning describes a degraded-but-accepted part of an order, such as a dropped line.
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Line    *int   `json:"line,omitempty"`
	Message string `json:"message"`
}

// PersistedOrder is the response shape of a committed create or update.
type PersistedOrder struct {
	SalesOrderHeader SalesOrderHeader `json:"SalesOrderHeader"`
	CustomerInfo     string           `json:"CustomerInfo,omitempty"`
	BillingAddress   any              `json:"BillingAddress,omitempty"`
	ShippingAddress  any              `json:"ShippingAddress,omitempty"`
	SalesOrderDetail []HydratedDetail `json:"SalesOrderDetail"`
	Warnings         []Warning        `json:"Warnings"`
}
