package log

import "sort"

// Field names shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldSessionID  = "session_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldItemName   = "item_name"
	FieldQuantity   = "quantity"
	FieldPriceCents = "price_cents"
	FieldSaleID     = "sale_id"
	FieldTotalCents = "total_cents"
	FieldLines      = "lines"
	FieldView       = "view"
	FieldKey        = "key"
)

// Component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentCatalog   = "catalog"
	ComponentCheckout  = "checkout"
	ComponentReports   = "reports"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
	ComponentCLI       = "cli"
)

// Operation names.
const (
	OpListItems    = "list_items"
	OpAddItem      = "add_item"
	OpDeleteItem   = "delete_item"
	OpImport       = "import"
	OpAddToCart    = "add_to_cart"
	OpCompleteSale = "complete_sale"
	OpListSales    = "list_sales"
	OpReceipt      = "receipt"
	OpReport       = "report"
	OpRefresh      = "refresh"
	OpPublish      = "publish"
	OpExport       = "export"
	OpStartup      = "startup"
	OpShutdown     = "shutdown"
)

// LogFields collects attributes for one log call.
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithItem adds the item name and a quantity (stock or requested).
func (f LogFields) WithItem(name string, quantity int) LogFields {
	f[FieldItemName] = name
	f[FieldQuantity] = quantity
	return f
}

// WithSale adds the sale identity and size.
func (f LogFields) WithSale(id string, totalCents int64, lines int) LogFields {
	f[FieldSaleID] = id
	f[FieldTotalCents] = totalCents
	f[FieldLines] = lines
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice flattens the fields into slog key-value pairs, sorted by key.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(f)*2)
	for _, k := range keys {
		out = append(out, k, f[k])
	}
	return out
}
