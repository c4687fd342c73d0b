package server

import (
	"breakroom/internal/middleware"
	"breakroom/internal/models"
	"breakroom/internal/notifications"

	"github.com/gofiber/fiber/v2"
)

// EventForPostCreated builds the broadcast event for a newly published post.
func EventForPostCreated(post *models.Post) notifications.FeedEvent {
	return notifications.FeedEvent{
		Type: notifications.EventPostCreated,
		Payload: fiber.Map{
			"id":          post.ID,
			"author_name": post.AuthorName,
			"team":        post.Team,
		},
	}
}

// EventForPostUpdated builds the broadcast event for an edited post.
func EventForPostUpdated(post *models.Post) notifications.FeedEvent {
	return notifications.FeedEvent{
		Type:    notifications.EventPostUpdated,
		Payload: fiber.Map{"id": post.ID},
	}
}

// EventForPostDeleted builds the broadcast event for a removed post.
func EventForPostDeleted(id uint) notifications.FeedEvent {
	return notifications.FeedEvent{
		Type:    notifications.EventPostDeleted,
		Payload: fiber.Map{"id": id},
	}
}

// EventForReaction builds the broadcast event for a like toggle.
func EventForReaction(postID uint) notifications.FeedEvent {
	return notifications.FeedEvent{
		Type:    notifications.EventReaction,
		Payload: fiber.Map{"post_id": postID},
	}
}

// EventForFlagUpdated builds the broadcast event for a reviewed flag.
func EventForFlagUpdated(flag *models.Flag) notifications.FeedEvent {
	return notifications.FeedEvent{
		Type: notifications.EventFlagUpdated,
		Payload: fiber.Map{
			"id":      flag.ID,
			"post_id": flag.PostID,
			"status":  flag.Status,
		},
	}
}

// publishFeedEvent fires the event over Redis. Delivery failures are logged
// but never surfaced to the request; the mutation already succeeded.
func (s *Server) publishFeedEvent(c *fiber.Ctx, event notifications.FeedEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishFeed(c.UserContext(), event); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "feed event publish failed",
			"event_type", event.Type, "error", err)
	}
}
