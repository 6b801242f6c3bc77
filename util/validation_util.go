// api/util/validation_util.go

package util

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/atlasgrc/atlas/api/model"
)

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{validate: validator.New()}
}

func (v *ValidationUtil) ValidateUser(user model.User) error {
	if user.ID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if user.Email == "" {
		return fmt.Errorf("user email cannot be empty")
	}
	if err := v.validate.Var(user.Email, "email"); err != nil {
		return fmt.Errorf("user email is not valid: %s", user.Email)
	}
	if user.Status != "" && model.ForwardStatus("", user.Status) != user.Status {
		return fmt.Errorf("unknown user status: %s", user.Status)
	}
	return nil
}

func (v *ValidationUtil) ValidateOrganization(organization model.Organization) error {
	if organization.ID == "" {
		return fmt.Errorf("organization ID cannot be empty")
	}
	if organization.Name == "" {
		return fmt.Errorf("organization name cannot be empty")
	}
	return nil
}

func (v *ValidationUtil) ValidateMembership(membership model.Membership) error {
	if membership.OrgID == "" {
		return fmt.Errorf("membership organization ID cannot be empty")
	}
	if membership.Role == "" {
		return fmt.Errorf("membership role cannot be empty")
	}
	if !model.IsValidRole(membership.Role) {
		return fmt.Errorf("unknown membership role: %s", membership.Role)
	}
	return nil
}

func (v *ValidationUtil) ValidateNotification(notification model.Notification) error {
	if notification.UserID == "" {
		return fmt.Errorf("notification user ID cannot be empty")
	}
	if notification.Type == "" {
		return fmt.Errorf("notification type cannot be empty")
	}
	if notification.Title == "" {
		return fmt.Errorf("notification title cannot be empty")
	}
	if notification.Message == "" {
		return fmt.Errorf("notification message cannot be empty")
	}
	if notification.ActionURL != "" {
		if err := v.validate.Var(notification.ActionURL, "url"); err != nil {
			return fmt.Errorf("notification action URL is not valid: %s", notification.ActionURL)
		}
	}
	return nil
}

func (v *ValidationUtil) ValidateTicket(ticket model.SupportTicket) error {
	if ticket.OrganizationID == "" {
		return fmt.Errorf("ticket organization ID cannot be empty")
	}
	if ticket.Subject == "" {
		return fmt.Errorf("ticket subject cannot be empty")
	}
	if ticket.CreatedBy == "" {
		return fmt.Errorf("ticket creator cannot be empty")
	}
	switch ticket.Priority {
	case model.TicketPriorityLow, model.TicketPriorityMedium, model.TicketPriorityHigh, model.TicketPriorityUrgent:
	default:
		return fmt.Errorf("unknown ticket priority: %s", ticket.Priority)
	}
	return nil
}

func (v *ValidationUtil) ValidateTicketMessage(message model.TicketMessage) error {
	if message.TicketID == "" {
		return fmt.Errorf("message ticket ID cannot be empty")
	}
	if message.AuthorID == "" {
		return fmt.Errorf("message author ID cannot be empty")
	}
	if message.Message == "" {
		return fmt.Errorf("message body cannot be empty")
	}
	return nil
}
