package parser

// SalesOrderSchema describes the target tables to the model. Field names must match the
// keys the order builder reads.
const SalesOrderSchema = `SalesOrderHeader:
  SalesOrderID INTEGER PRIMARY KEY (assigned by the database, do not invent)
  RevisionNumber INTEGER
  OrderDate DATE NOT NULL
  DueDate DATE NOT NULL
  ShipDate DATE
  Status INTEGER
  OnlineOrderFlag BOOLEAN
  SalesOrderNumber TEXT UNIQUE NOT NULL
  PurchaseOrderNumber TEXT
  AccountNumber TEXT
  CustomerID INTEGER (resolved by the system from CustomerName)
  SalesPersonID INTEGER
  TerritoryID INTEGER
  BillToAddressID INTEGER
  ShipToAddressID INTEGER
  ShipMethodID INTEGER
  CreditCardID INTEGER
  CreditCardApprovalCode TEXT
  CurrencyRateID INTEGER
  SubTotal NUMBER NOT NULL
  TaxAmt NUMBER NOT NULL
  Freight NUMBER NOT NULL
  TotalDue NUMBER NOT NULL

SalesOrderDetail:
  SalesOrderDetailID INTEGER PRIMARY KEY (assigned by the database)
  SalesOrderID INTEGER (assigned by the database)
  CarrierTrackingNumber TEXT
  OrderQty INTEGER NOT NULL
  ProductID INTEGER (resolved by the system from ProductNumber)
  SpecialOfferID INTEGER
  UnitPrice NUMBER NOT NULL
  UnitPriceDiscount NUMBER DEFAULT 0
  LineTotal NUMBER NOT NULL

Product:
  ProductID INTEGER PRIMARY KEY
  Name TEXT
  ProductNumber TEXT UNIQUE NOT NULL
  Color TEXT
  ListPrice NUMBER
  Size TEXT

Customers:
  CustomerID INTEGER PRIMARY KEY
  PersonID INTEGER

IndividualCustomers:
  BusinessEntityID INTEGER NOT NULL
  FirstName TEXT
  MiddleName TEXT
  LastName TEXT`

// BuildSalesOrderPrompt returns the extraction prompt for a sales invoice image.
func BuildSalesOrderPrompt(schema string) string {
	return `You are an expert invoice data extractor. Your goal is to extract all possible information from the invoice image to provide a detailed, structured response.

First, extract the following information from the invoice:
- Customer's Full Name
- Billing Address (if different from shipping, otherwise use shipping)
- Shipping Address
- Invoice Number (map to SalesOrderNumber)
- Order Date
- Due Date
- Ship Date
- Account Number
- Subtotal
- Tax Amount (map to TaxAmt)
- Shipping & Handling cost (map to Freight)
- Total Due
- A list of all products, including their Product Code/Number, Quantity, and Unit Price.

Based on this, construct a single JSON object with keys: "SalesOrderHeader", "SalesOrderDetail", "CustomerName", "BillingAddress", "ShippingAddress".

- For "SalesOrderHeader" and "SalesOrderDetail", use the field names from the schema below.
- Write dates as YYYY-MM-DD.
- Calculate LineTotal for each item in "SalesOrderDetail".
- For product details in "SalesOrderDetail", only include ProductNumber, OrderQty, UnitPrice, and LineTotal. The system will look up the rest.

Here is the database schema for context:
` + schema + `

Return ONLY the JSON object.`
}
