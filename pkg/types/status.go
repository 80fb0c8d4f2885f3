package domain

// NotificationStatus describes what a user has been told about a listing.
// It is derived on every encounter and never persisted.
type NotificationStatus int

// Notification statuses.
const (
	NotNotified NotificationStatus = iota
	Expired
	ListingChanged
	Notified
)

// Statuses lists every status in dispatch order.
var Statuses = []NotificationStatus{NotNotified, Expired, ListingChanged, Notified}

func (s NotificationStatus) String() string {
	switch s {
	case NotNotified:
		return "not_notified"
	case Expired:
		return "expired"
	case ListingChanged:
		return "listing_changed"
	case Notified:
		return "notified"
	default:
		return "unknown"
	}
}
