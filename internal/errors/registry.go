package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (CF001-CF009)
	// ============================================

	"CF001": {
		Category: CategoryRuntime,
		Message:  "Handler not found",
		Detail:   "The event handler for this element was not found. The form may have re-rendered since the client last received HTML.",
	},
	"CF002": {
		Category: CategoryRuntime,
		Message:  "Unknown field",
		Detail:   "The contact form has the fields firstName, lastName, email and message.",
	},

	// ============================================
	// Protocol Errors (CF010-CF019)
	// ============================================

	"CF010": {
		Category: CategoryProtocol,
		Message:  "Invalid live event",
		Detail:   `Live events are JSON objects of the form {"hid":"h1","event":"input","value":"..."}.`,
	},
	"CF011": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "The live channel requires a WebSocket upgrade from the same origin.",
	},

	// ============================================
	// Session Errors (CF020-CF029)
	// ============================================

	"CF020": {
		Category: CategorySession,
		Message:  "Unreadable session snapshot",
		Detail:   "A saved form could not be decoded and was discarded. The client starts with an empty form.",
	},
	"CF021": {
		Category: CategorySession,
		Message:  "Session store closed",
		Detail:   "The session store was used after the server began shutting down.",
	},

	// ============================================
	// Config Errors (CF030-CF039)
	// ============================================

	"CF030": {
		Category: CategoryConfig,
		Message:  "Cannot read config file",
		Detail:   "contactform.json exists but could not be read.",
	},
	"CF031": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "contactform.json is not valid JSON or has a value of the wrong type.",
	},
	"CF032": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "The port must be between 1 and 65535.",
	},
	"CF033": {
		Category: CategoryConfig,
		Message:  "Invalid duration",
		Detail:   `Durations are Go duration strings such as "500ms", "30s" or "5m".`,
	},
	"CF034": {
		Category: CategoryConfig,
		Message:  "Invalid config value",
		Detail:   "A configuration value is out of range.",
	},

	// ============================================
	// CLI Errors (CF040-CF049)
	// ============================================

	"CF040": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"CF041": {
		Category: CategoryCLI,
		Message:  "Port in use",
		Detail:   "Another process is listening on the configured address.",
	},

	// ============================================
	// Validation Errors (CF050-CF059)
	// ============================================

	"CF050": {
		Category: CategoryValidation,
		Message:  "Form rejected",
		Detail:   "One or more required fields failed validation.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
