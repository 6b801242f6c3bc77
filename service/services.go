// api/service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/atlasgrc/atlas/api/audit"
	"github.com/atlasgrc/atlas/api/dao"
	"github.com/atlasgrc/atlas/api/idp"
	"github.com/atlasgrc/atlas/api/util"
)

type Services struct {
	Sync         ISyncService
	Session      ISessionService
	Notification INotificationService
	Ticket       ITicketService
	User         IUserService
	Org          IOrganizationService
	Audit        audit.Service
}

func InitializeServices(
	driver neo4j.Driver,
	idpClient idp.Client,
	auditRepo audit.Repository,
	validationUtil *util.ValidationUtil,
	sessionCache *util.SessionCache,
	eventBus *util.EventBus,
) (*Services, error) {
	userDAO := dao.NewUserDAO(driver)
	organizationDAO := dao.NewOrganizationDAO(driver)
	notificationDAO := dao.NewNotificationDAO(driver)
	ticketDAO := dao.NewTicketDAO(driver)

	notificationSvc := NewNotificationService(notificationDAO, validationUtil, eventBus)
	auditSvc := audit.NewService(auditRepo, notificationSvc)
	sessionSvc := NewSessionService(userDAO, organizationDAO, sessionCache, idpClient)

	services := &Services{
		Sync:         NewSyncService(userDAO, organizationDAO, idpClient, sessionSvc, auditSvc, validationUtil, eventBus),
		Session:      sessionSvc,
		Notification: notificationSvc,
		Ticket:       NewTicketService(ticketDAO, validationUtil),
		User:         NewUserService(userDAO, userDAO),
		Org:          NewOrganizationService(organizationDAO, organizationDAO),
		Audit:        auditSvc,
	}

	return services, nil
}
