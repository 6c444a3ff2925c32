package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// Registered error codes.
const (
	CodeNoRender       = "E001"
	CodeNoCompiler     = "E002"
	CodeInvalidSource  = "E003"
	CodeCompileFailed  = "E004"
	CodeUnknownTarget  = "E005"
	CodeInvalidConfig  = "E006"
	CodeSnapshotFailed = "E007"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeNoRender: {
		Category: CategoryRuntime,
		Message:  "Component has no render function",
		Detail:   "Neither Setup returned a render function, nor Render, nor Template is set on the component.",
	},
	CodeNoCompiler: {
		Category: CategoryRuntime,
		Message:  "Template used without a registered compiler",
		Detail:   "The component only provides a Template, but no template compiler has been registered.",
	},
	CodeInvalidSource: {
		Category: CategoryReactive,
		Message:  "Invalid watch source",
		Detail:   "A watch source must be a getter function, a ref, an observed value, or a slice of those.",
	},
	CodeCompileFailed: {
		Category: CategoryCompile,
		Message:  "Template compilation failed",
	},
	CodeUnknownTarget: {
		Category: CategoryHost,
		Message:  "Event target not found",
		Detail:   "The host node does not exist or has no handler for the event.",
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeSnapshotFailed: {
		Category: CategoryStorage,
		Message:  "Snapshot could not be stored",
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
