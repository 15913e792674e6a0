package extraction

// Sentinel values substituted for fields the model could not read.
const (
	NotAvailable  = "No disponible"
	NotApplicable = "N/A"
)

// ReceiptRecord is the canonical shape a model response is normalized
// into. Monetary fields are opaque formatted strings (currency symbol
// included when the ticket shows one); no arithmetic is ever done on
// them.
type ReceiptRecord struct {
	RestaurantName string     `json:"restaurant_name"`
	Date           string     `json:"date"`
	Time           string     `json:"time"`
	Total          string     `json:"total"`
	Items          []LineItem `json:"items"`
}

// LineItem is one purchased article on the ticket.
type LineItem struct {
	Quantity   string `json:"quantity,omitempty"`
	Name       string `json:"name"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
}

// RemoteFile identifies an image uploaded to the model's file store.
// Name is the deletion key, URI is what goes into the prompt.
type RemoteFile struct {
	Name     string
	URI      string
	MIMEType string
}
