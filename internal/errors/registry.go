package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Catalog Errors (P100-P119)
	// ============================================

	"P100": {
		Category: CategoryCatalog,
		Message:  "Catalog fetch failed",
		Detail:   "The paint catalog could not be retrieved from its source.",
	},
	"P101": {
		Category: CategoryCatalog,
		Message:  "Malformed catalog",
		Detail:   "The catalog body is not a JSON object with a paints array.",
	},
	"P102": {
		Category: CategoryCatalog,
		Message:  "Unknown catalog source",
		Detail:   "The configured catalog source is not one of http, file or s3.",
	},
	"P103": {
		Category: CategoryCatalog,
		Message:  "Catalog watch failed",
		Detail:   "The catalog snapshot file could not be watched for changes.",
	},

	// ============================================
	// Event Errors (P120-P139)
	// ============================================

	"P120": {
		Category: CategoryEvent,
		Message:  "Event stream connection failed",
		Detail:   "Unable to establish the WebSocket connection to the event API.",
	},
	"P121": {
		Category: CategoryEvent,
		Message:  "Event stream closed",
		Detail:   "The event API closed the connection.",
	},

	// ============================================
	// Config Errors (P140-P159)
	// ============================================

	"P140": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be parsed.",
	},
	"P141": {
		Category: CategoryConfig,
		Message:  "Configuration not found",
		Detail:   "The configuration file does not exist.",
	},
	"P142": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
	},
	"P143": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .yaml, .yml or .toml.",
	},

	// ============================================
	// CLI Errors (P160-P179)
	// ============================================

	"P160": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped unexpectedly.",
	},
	"P170": {
		Category: CategoryCLI,
		Message:  "Command failed",
		Detail:   "The command could not be run as given.",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
