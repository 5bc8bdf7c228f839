package seed

// kind selects the conversion applied to a raw cell before insert.
type kind int

const (
	kindString kind = iota
	kindText   // like kindString but blank cells become "" instead of NULL
	kindInt
	kindFloat
	kindBool
	kindDate
)

type column struct {
	name string
	kind kind
}

// table maps one workbook sheet onto a database table. Columns are keyed by the
// sanitized sheet header.
type table struct {
	sheet    string
	name     string
	identity string
	columns  map[string]column
}

// tables are listed in foreign-key order; a sheet may only reference sheets above it.
var tables = []table{
	{
		sheet: "ProductCategory", name: "product_categories", identity: "product_category_id",
		columns: map[string]column{
			"ProductCategoryID": {"product_category_id", kindInt},
			"Name":              {"name", kindString},
		},
	},
	{
		sheet: "ProductSubCategory", name: "product_subcategories", identity: "product_subcategory_id",
		columns: map[string]column{
			"ProductSubcategoryID": {"product_subcategory_id", kindInt},
			"ProductCategoryID":    {"product_category_id", kindInt},
			"Name":                 {"name", kindString},
		},
	},
	{
		sheet: "Product", name: "products", identity: "product_id",
		columns: map[string]column{
			"ProductID":            {"product_id", kindInt},
			"Name":                 {"name", kindString},
			"ProductNumber":        {"product_number", kindString},
			"MakeFlag":             {"make_flag", kindBool},
			"FinishedGoodsFlag":    {"finished_goods_flag", kindBool},
			"Color":                {"color", kindString},
			"StandardCost":         {"standard_cost", kindFloat},
			"ListPrice":            {"list_price", kindFloat},
			"Size":                 {"size", kindString},
			"ProductLine":          {"product_line", kindString},
			"Class":                {"class", kindString},
			"Style":                {"style", kindString},
			"ProductSubcategoryID": {"product_subcategory_id", kindInt},
			"ProductModelID":       {"product_model_id", kindInt},
		},
	},
	{
		sheet: "SalesTerritory", name: "sales_territories", identity: "territory_id",
		columns: map[string]column{
			"TerritoryID":       {"territory_id", kindInt},
			"Name":              {"name", kindString},
			"CountryRegionCode": {"country_region_code", kindString},
			"Group":             {"territory_group", kindString},
		},
	},
	{
		sheet: "Customers", name: "customers", identity: "customer_id",
		columns: map[string]column{
			"CustomerID":    {"customer_id", kindInt},
			"PersonID":      {"person_id", kindInt},
			"StoreID":       {"store_id", kindInt},
			"TerritoryID":   {"territory_id", kindInt},
			"AccountNumber": {"account_number", kindString},
		},
	},
	{
		sheet: "IndividualCustomers", name: "individual_customers", identity: "individual_customer_id",
		columns: map[string]column{
			"IndividualCustomerID": {"individual_customer_id", kindInt},
			"BusinessEntityID":     {"business_entity_id", kindInt},
			"FirstName":            {"first_name", kindText},
			"MiddleName":           {"middle_name", kindString},
			"LastName":             {"last_name", kindText},
			"AddressType":          {"address_type", kindString},
			"AddressLine1":         {"address_line1", kindString},
			"AddressLine2":         {"address_line2", kindString},
			"City":                 {"city", kindString},
			"StateProvinceName":    {"state_province_name", kindString},
			"PostalCode":           {"postal_code", kindString},
			"CountryRegionName":    {"country_region_name", kindString},
		},
	},
	{
		sheet: "StoreCustomers", name: "store_customers", identity: "store_customer_id",
		columns: map[string]column{
			"StoreCustomerID":   {"store_customer_id", kindInt},
			"BusinessEntityID":  {"business_entity_id", kindInt},
			"Name":              {"name", kindString},
			"AddressType":       {"address_type", kindString},
			"AddressLine1":      {"address_line1", kindString},
			"AddressLine2":      {"address_line2", kindString},
			"City":              {"city", kindString},
			"StateProvinceName": {"state_province_name", kindString},
			"PostalCode":        {"postal_code", kindString},
			"CountryRegionName": {"country_region_name", kindString},
		},
	},
	{
		sheet: "SalesOrderHeader", name: "sales_order_headers", identity: "sales_order_id",
		columns: map[string]column{
			"SalesOrderID":           {"sales_order_id", kindInt},
			"RevisionNumber":         {"revision_number", kindInt},
			"OrderDate":              {"order_date", kindDate},
			"DueDate":                {"due_date", kindDate},
			"ShipDate":               {"ship_date", kindDate},
			"Status":                 {"status", kindInt},
			"OnlineOrderFlag":        {"online_order_flag", kindBool},
			"SalesOrderNumber":       {"sales_order_number", kindString},
			"PurchaseOrderNumber":    {"purchase_order_number", kindString},
			"AccountNumber":          {"account_number", kindString},
			"CustomerID":             {"customer_id", kindInt},
			"SalesPersonID":          {"sales_person_id", kindInt},
			"TerritoryID":            {"territory_id", kindInt},
			"BillToAddressID":        {"bill_to_address_id", kindInt},
			"ShipToAddressID":        {"ship_to_address_id", kindInt},
			"ShipMethodID":           {"ship_method_id", kindInt},
			"CreditCardID":           {"credit_card_id", kindInt},
			"CreditCardApprovalCode": {"credit_card_approval_code", kindString},
			"CurrencyRateID":         {"currency_rate_id", kindInt},
			"SubTotal":               {"sub_total", kindFloat},
			"TaxAmt":                 {"tax_amt", kindFloat},
			"Freight":                {"freight", kindFloat},
			"TotalDue":               {"total_due", kindFloat},
		},
	},
	{
		sheet: "SalesOrderDetail", name: "sales_order_details", identity: "sales_order_detail_id",
		columns: map[string]column{
			"SalesOrderDetailID":    {"sales_order_detail_id", kindInt},
			"SalesOrderID":          {"sales_order_id", kindInt},
			"CarrierTrackingNumber": {"carrier_tracking_number", kindString},
			"OrderQty":              {"order_qty", kindInt},
			"ProductID":             {"product_id", kindInt},
			"SpecialOfferID":        {"special_offer_id", kindInt},
			"UnitPrice":             {"unit_price", kindFloat},
			"UnitPriceDiscount":     {"unit_price_discount", kindFloat},
			"LineTotal":             {"line_total", kindFloat},
		},
	},
}
