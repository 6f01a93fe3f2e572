package domain

// ChangePublisher signals live-query subscribers that documents under a topic changed.
type ChangePublisher interface {
	Publish(topic string)
}

// EventTopic is the topic of an event document.
func EventTopic(eventID string) string { return "events/" + eventID }

// EventPostsTopic is the topic of every post under an event.
func EventPostsTopic(eventID string) string { return "events/" + eventID + "/posts" }

// NotificationsTopic is the topic of a user's notifications.
func NotificationsTopic(userID string) string { return "users/" + userID + "/notifications" }
