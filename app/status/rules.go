package status

// NotificationType selects the delivery channel for a status change.
type NotificationType string

const (
	NotificationPublic NotificationType = "public"
	NotificationDM     NotificationType = "dm"
	NotificationNone   NotificationType = "none"
)

// Priority is an informational classification used for observability only;
// it never influences dispatch decisions.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// IsSignificant reports whether a transition from oldStatus (the persisted
// value, possibly empty for a never-seen vehicle) to newStatus warrants a
// notification. Only transitions INTO an actionable state are significant:
// equipment failure alerts everyone, return to availability alerts
// subscribers. Everything else is persisted silently.
func IsSignificant(oldStatus string, newStatus Status) bool {
	if oldStatus == string(newStatus) {
		return false
	}
	return newStatus == StatusAvailable || newStatus == StatusUnavailableEquipment
}

// ForStatus returns the notification channel for a status. The asymmetry is
// intentional: an equipment failure is broadcast to the configured channel,
// a vehicle coming back into service is only of interest to its
// subscribers.
func ForStatus(s Status) NotificationType {
	switch s {
	case StatusUnavailableEquipment:
		return NotificationPublic
	case StatusAvailable:
		return NotificationDM
	default:
		return NotificationNone
	}
}

// PriorityOf classifies a status for logging and metrics.
func PriorityOf(s Status) Priority {
	switch s {
	case StatusUnavailableEquipment:
		return PriorityHigh
	case StatusAvailable, StatusOnMission:
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// IsCritical reports whether a status indicates the vehicle cannot respond
// at all.
func IsCritical(s Status) bool {
	return s == StatusUnavailableEquipment || s == StatusOutOfService
}
