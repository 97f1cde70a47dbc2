package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Usage Errors (P001-P099)
	// ============================================

	"P001": {
		Category: CategoryUsage,
		Message:  "RenderPage() argument pageContext is missing",
		Detail:   "RenderPage(pageContext) requires a page context with at least a URL.",
		DocURL:   "https://pagekit.dev/docs/errors/P001",
	},
	"P002": {
		Category:   CategoryUsage,
		Message:    "RenderPage() requires pageContext.URL to be set",
		Detail:     "The page context passed to RenderPage() is missing its URL.",
		Suggestion: "Set pageContext.URL from the incoming HTTP request before calling RenderPage().",
		DocURL:     "https://pagekit.dev/docs/errors/P002",
	},
	"P003": {
		Category:   CategoryUsage,
		Message:    "No server page file found",
		Detail:     "Every page needs a server file, either page-specific or a shared default.",
		Suggestion: "Create a `_default.page.server.go` file which will apply as default to all your pages.",
		DocURL:     "https://pagekit.dev/docs/errors/P003",
	},
	"P004": {
		Category:   CategoryUsage,
		Message:    "No client page file found",
		Detail:     "Every page needs a client file, either page-specific or a shared default.",
		Suggestion: "Create a `_default.page.client.go` file which will apply as default to all your pages.",
		DocURL:     "https://pagekit.dev/docs/errors/P004",
	},
	"P005": {
		Category:   CategoryUsage,
		Message:    "No render() hook found",
		Detail:     "Rendering a document requires a render() hook in a server page file.",
		Suggestion: "Define a render() hook in a `*.page.server.go` file, or export one from `_default.page.server.go` to set the default for all pages.",
		DocURL:     "https://pagekit.dev/docs/errors/P005",
	},
	"P006": {
		Category:   CategoryUsage,
		Message:    "render() hook returned a plain string",
		Detail:     "A plain string is forbidden because it may contain unescaped HTML.",
		Suggestion: "Return html.Sanitized produced by the html package, or wrap a trusted string with html.DangerouslySkipEscape().",
		DocURL:     "https://pagekit.dev/docs/errors/P006",
	},
	"P007": {
		Category: CategoryUsage,
		Message:  "Pre-rendering requires the render() hook to provide HTML",
		Detail:   "A nil document means \"skip this page\" during live rendering, but there is no skipping during pre-rendering.",
		DocURL:   "https://pagekit.dev/docs/errors/P007",
	},

	// ============================================
	// Transport Errors (P100-P199)
	// ============================================

	"P100": {
		Category:   CategoryTransport,
		Message:    "Page context could not be fetched from the server",
		Detail:     "An error occurred on the server while producing the page context.",
		Suggestion: "Check your server logs.",
		DocURL:     "https://pagekit.dev/docs/errors/P100",
	},
	"P101": {
		Category: CategoryTransport,
		Message:  "Wrong content-type for page context response",
		Detail:   "Page context responses must be served with content-type application/json.",
		DocURL:   "https://pagekit.dev/docs/errors/P101",
	},

	// ============================================
	// Config Errors (P200-P299)
	// ============================================

	"P200": {
		Category:   CategoryConfig,
		Message:    "pagekit.json not found",
		Suggestion: "Run `pagekit create` to scaffold a new project, or create pagekit.json manually.",
		DocURL:     "https://pagekit.dev/docs/errors/P200",
	},
	"P201": {
		Category: CategoryConfig,
		Message:  "pagekit.json is invalid",
		DocURL:   "https://pagekit.dev/docs/errors/P201",
	},
}

// Register adds a custom error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for an error code.
func Lookup(code string) (ErrorTemplate, bool) {
	template, ok := registry[code]
	return template, ok
}
