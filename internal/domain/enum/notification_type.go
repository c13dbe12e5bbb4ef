package enum

// NotificationType classifies stock notifications
type NotificationType string

const (
	NotificationLowStock      NotificationType = "low_stock"
	NotificationNegativeStock NotificationType = "negative_stock"
)

func (t NotificationType) String() string {
	return string(t)
}
