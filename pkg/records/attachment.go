package records

// Attachment describes a file attached to a record field. Only the URL is
// required; the remote service fills in the rest on read.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
	Type     string `json:"type,omitempty"`
}

// SimplifyAttachments rewrites an attachment-valued field down to bare
// {url} objects, which is the only shape the write API accepts. Non
// attachment values pass through unchanged.
func SimplifyAttachments(value any) any {
	elements, ok := List(value)
	if !ok || len(elements) == 0 {
		return value
	}

	simplified := make([]map[string]any, 0, len(elements))
	for _, el := range elements {
		switch v := el.(type) {
		case Attachment:
			simplified = append(simplified, map[string]any{"url": v.URL})
		case *Attachment:
			simplified = append(simplified, map[string]any{"url": v.URL})
		case map[string]any:
			if u, ok := v["url"]; ok {
				simplified = append(simplified, map[string]any{"url": u})
			}
		default:
			// Not an attachment list after all.
			return value
		}
	}
	return simplified
}
