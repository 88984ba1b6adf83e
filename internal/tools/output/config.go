package output

// Limits for output processing, tuned for typical LLM context windows.
const (
	// DefaultMaxItems is the default maximum number of resources returned
	// per query.
	DefaultMaxItems = 100

	// DefaultMaxResponseBytes is the default hard limit on response size.
	DefaultMaxResponseBytes = 512 * 1024

	// AbsoluteMaxItems caps the item count regardless of what the request
	// asks for.
	AbsoluteMaxItems = 1000

	// AbsoluteMaxResponseBytes caps the response size.
	AbsoluteMaxResponseBytes = 2 * 1024 * 1024
)

// Config holds configuration for output processing.
type Config struct {
	// MaxItems limits the number of resources returned per query.
	MaxItems int `json:"maxItems"`

	// MaxResponseBytes is a hard limit on response size in bytes.
	MaxResponseBytes int `json:"maxResponseBytes"`

	// SlimOutput enables removal of verbose fields that rarely help
	// callers.
	SlimOutput bool `json:"slimOutput"`

	// MaskSecrets replaces Secret data values with a redaction marker.
	MaskSecrets bool `json:"maskSecrets"`

	// HiddenFields lists dotted field paths stripped from every returned
	// object, in addition to the slim-mode defaults. Supports [*] for
	// array elements.
	HiddenFields []string `json:"hiddenFields,omitempty"`
}

// DefaultConfig returns a Config with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxItems:         DefaultMaxItems,
		MaxResponseBytes: DefaultMaxResponseBytes,
		SlimOutput:       true,
		MaskSecrets:      true,
	}
}

// DefaultSlimFields returns the verbose fields removed in slim mode.
func DefaultSlimFields() []string {
	return []string{
		"metadata.managedFields",
		"metadata.annotations.kubectl.kubernetes.io/last-applied-configuration",
		"status.conditions[*].lastTransitionTime",
		"status.conditions[*].lastProbeTime",
		"status.conditions[*].lastHeartbeatTime",
		"metadata.generation",
		"metadata.resourceVersion",
		"metadata.uid",
		"metadata.selfLink",
	}
}

// Validate returns a copy with out-of-range values capped.
func (c *Config) Validate() *Config {
	validated := *c

	if validated.MaxItems <= 0 {
		validated.MaxItems = DefaultMaxItems
	}
	if validated.MaxItems > AbsoluteMaxItems {
		validated.MaxItems = AbsoluteMaxItems
	}
	if validated.MaxResponseBytes <= 0 {
		validated.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if validated.MaxResponseBytes > AbsoluteMaxResponseBytes {
		validated.MaxResponseBytes = AbsoluteMaxResponseBytes
	}

	return &validated
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}

	clone := *c
	if c.HiddenFields != nil {
		clone.HiddenFields = make([]string, len(c.HiddenFields))
		copy(clone.HiddenFields, c.HiddenFields)
	}

	return &clone
}

// TruncationWarning reports that a result set was cut down.
type TruncationWarning struct {
	Shown   int    `json:"shown"`
	Total   int    `json:"total"`
	Message string `json:"message"`

	// SuggestFilters offers query refinements to reduce results.
	SuggestFilters []string `json:"suggestFilters,omitempty"`
}

// Result contains the outcome of processing a list of objects.
type Result struct {
	Items []map[string]interface{} `json:"items"`

	Warnings []TruncationWarning `json:"warnings,omitempty"`

	OriginalCount int  `json:"originalCount"`
	FinalCount    int  `json:"finalCount"`
	Truncated     bool `json:"truncated"`
}
