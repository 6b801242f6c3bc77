// api/controller/controllers.go
package controller

import "github.com/atlasgrc/atlas/api/service"

type Controllers struct {
	Webhook      *WebhookController
	Session      *SessionController
	Notification *NotificationController
	Ticket       *TicketController
	Activity     *ActivityController
	User         *UserController
	Org          *OrganizationController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Webhook:      NewWebhookController(services.Sync),
		Session:      NewSessionController(services.Session),
		Notification: NewNotificationController(services.Notification),
		Ticket:       NewTicketController(services.Ticket),
		Activity:     NewActivityController(services.Audit),
		User:         NewUserController(services.User),
		Org:          NewOrganizationController(services.Org),
	}
}
