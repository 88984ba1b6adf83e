package output

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Processor applies output transformations based on configuration.
type Processor struct {
	config *Config
}

// NewProcessor creates a new output processor. A nil config uses defaults.
func NewProcessor(config *Config) *Processor {
	if config == nil {
		config = DefaultConfig()
	}
	return &Processor{config: config.Validate()}
}

// Config returns the processor's validated configuration.
func (p *Processor) Config() *Config {
	return p.config
}

// Process applies masking, field stripping and truncation to a list of
// resource maps.
func (p *Processor) Process(items []map[string]interface{}) *Result {
	return p.process(items, p.config.MaxItems)
}

// ProcessWithLimit applies transformations with a per-request limit.
func (p *Processor) ProcessWithLimit(items []map[string]interface{}, limit int) *Result {
	return p.process(items, EffectiveLimit(limit, p.config.MaxItems))
}

func (p *Processor) process(items []map[string]interface{}, limit int) *Result {
	result := &Result{
		Items:         items,
		OriginalCount: len(items),
	}

	if len(items) == 0 {
		return result
	}

	processed := items

	// Masking runs first so stripped copies never carry secret data.
	if p.config.MaskSecrets {
		processed = MaskSecretDataInList(processed)
	}

	if fields := p.stripList(); len(fields) > 0 {
		processed = StripFieldsFromList(processed, fields)
	}

	truncated, warning := Truncate(processed, limit)
	if warning != nil {
		result.Warnings = append(result.Warnings, *warning)
		result.Truncated = true
	}

	result.Items = truncated
	result.FinalCount = len(truncated)
	return result
}

// ProcessSingle applies masking and field stripping to a single resource.
func (p *Processor) ProcessSingle(item map[string]interface{}) map[string]interface{} {
	if item == nil {
		return nil
	}

	processed := item
	if p.config.MaskSecrets {
		processed = MaskSecretData(processed)
	}
	if fields := p.stripList(); len(fields) > 0 {
		processed = StripFields(processed, fields)
	}

	return processed
}

// stripList combines slim-mode defaults with configured hidden fields.
func (p *Processor) stripList() []string {
	var fields []string
	if p.config.SlimOutput {
		fields = DefaultSlimFields()
	}
	return append(fields, p.config.HiddenFields...)
}

// ProcessUnstructured applies single-object processing to an unstructured
// resource.
func (p *Processor) ProcessUnstructured(obj *unstructured.Unstructured) *unstructured.Unstructured {
	if obj == nil {
		return nil
	}
	return &unstructured.Unstructured{Object: p.ProcessSingle(obj.Object)}
}

// ProcessUnstructuredList applies list processing to unstructured
// resources and returns the processed objects with the result metadata.
func (p *Processor) ProcessUnstructuredList(objects []*unstructured.Unstructured) ([]*unstructured.Unstructured, *Result) {
	maps := make([]map[string]interface{}, 0, len(objects))
	for _, obj := range objects {
		maps = append(maps, obj.Object)
	}

	result := p.Process(maps)

	processed := make([]*unstructured.Unstructured, 0, len(result.Items))
	for _, m := range result.Items {
		processed = append(processed, &unstructured.Unstructured{Object: m})
	}

	return processed, result
}

// Truncate cuts a slice of items down to maxItems, returning a warning
// when anything was dropped.
func Truncate(items []map[string]interface{}, maxItems int) ([]map[string]interface{}, *TruncationWarning) {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if maxItems > AbsoluteMaxItems {
		maxItems = AbsoluteMaxItems
	}

	total := len(items)
	if total <= maxItems {
		return items, nil
	}

	warning := &TruncationWarning{
		Shown:   maxItems,
		Total:   total,
		Message: fmt.Sprintf("Output truncated. Showing %d of %d items. Refine your query with namespace, label, or field filters for complete results.", maxItems, total),
	}
	if total > DefaultMaxItems*5 {
		warning.SuggestFilters = []string{
			"Use labelSelector to filter by labels (e.g., app=nginx)",
			"Use namespace to limit to a specific namespace",
		}
	}

	return items[:maxItems], warning
}

// EffectiveLimit reconciles a per-request limit with the configured one,
// bounded by the absolute maximum.
func EffectiveLimit(requestLimit, configLimit int) int {
	if requestLimit <= 0 {
		if configLimit <= 0 {
			return DefaultMaxItems
		}
		return min(configLimit, AbsoluteMaxItems)
	}

	effective := requestLimit
	if configLimit > 0 && configLimit < effective {
		effective = configLimit
	}

	return min(effective, AbsoluteMaxItems)
}
