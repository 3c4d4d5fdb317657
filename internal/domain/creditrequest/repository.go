package creditrequest

// Store holds pending requests, keyed by client id, and their notifications.
type Store interface {
	// Add enqueues r unless a request for the same client is pending. A new
	// request also raises a notification.
	Add(r Request) bool
	Get(clientID int64) (Request, bool)
	// Take removes the pending request for clientID and returns it. Only one
	// of several concurrent callers gets ok == true.
	Take(clientID int64) (Request, bool)
	Pending() []Request

	// Notifications returns the notifications and the unread counter.
	Notifications() ([]Notification, int)
	DismissNotification(id int64) bool
	ClearNotifications()
}
