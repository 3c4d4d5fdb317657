package inbox

import "credapp/internal/domain/creditrequest"

type PendingDTO struct {
	Requests []creditrequest.Request `json:"solicitacoes"`
	Total    int                     `json:"total"`
}

type NotificationsDTO struct {
	Notifications []creditrequest.Notification `json:"notificacoes"`
	Unread        int                          `json:"contador"`
}
