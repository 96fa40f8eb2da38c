package entity

// Bill status codes as stored
const (
	BillStatusPending  = "pending"
	BillStatusAccepted = "accepted"
	BillStatusRefused  = "refused"
)

// User types carried by the identity headers
const (
	UserTypeEmployee = "Employee"
	UserTypeAdmin    = "Admin"
)

// Expense types offered by the submission form
const (
	ExpenseTypeTransports     = "Transports"
	ExpenseTypeRestaurants    = "Restaurants et bars"
	ExpenseTypeHotel          = "Hôtel et logement"
	ExpenseTypeServicesOnline = "Services en ligne"
	ExpenseTypeIT             = "IT et électronique"
	ExpenseTypeEquipment      = "Equipement et matériel"
	ExpenseTypeOfficeSupplies = "Fournitures de bureau"
)

// DefaultPct is the VAT percentage applied when the form leaves it blank.
const DefaultPct = 20

// ExpenseTypes lists the accepted values of Bill.Type.
var ExpenseTypes = []string{
	ExpenseTypeTransports,
	ExpenseTypeRestaurants,
	ExpenseTypeHotel,
	ExpenseTypeServicesOnline,
	ExpenseTypeIT,
	ExpenseTypeEquipment,
	ExpenseTypeOfficeSupplies,
}
