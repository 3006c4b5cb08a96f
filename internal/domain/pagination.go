package domain

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

type ListOptions struct {
	Limit      int               `json:"limit" query:"limit"`
	Offset     int               `json:"offset" query:"offset"`
	Type       *NotificationType `json:"type,omitempty" query:"type"`
	UnreadOnly bool              `json:"unread_only" query:"unread_only"`
}

type CountOptions struct {
	UnreadOnly bool              `json:"unread_only" query:"unread_only"`
	Type       *NotificationType `json:"type,omitempty" query:"type"`
}

func DefaultListOptions() ListOptions {
	return ListOptions{
		Limit:  DefaultListLimit,
		Offset: 0,
	}
}

func (o *ListOptions) Normalize() {
	if o.Limit < 1 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
}

// CountOptions returns the count filter matching the list filter.
func (o ListOptions) CountOptions() CountOptions {
	return CountOptions{UnreadOnly: o.UnreadOnly, Type: o.Type}
}
