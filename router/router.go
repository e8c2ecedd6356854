package router

import (
	"database/sql"
	"net/http"

	accesshandler "collabdocs/internal/access"
	accesssvc "collabdocs/internal/access/service"
	requesthandler "collabdocs/internal/accessrequest"
	requestrepo "collabdocs/internal/accessrequest/repository"
	requestsvc "collabdocs/internal/accessrequest/service"
	invitationhandler "collabdocs/internal/invitation"
	invitationrepo "collabdocs/internal/invitation/repository"
	invitationsvc "collabdocs/internal/invitation/service"
	presencehandler "collabdocs/internal/presence"
	presencesvc "collabdocs/internal/presence/service"
	"collabdocs/middleware"
	"collabdocs/socket"
)

func Setup(db *sql.DB, hub *socket.Hub, accessService *accesssvc.AccessService, presenceService *presencesvc.PresenceService) http.Handler {
	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware

	// WebSocket presence
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		socket.ServeWs(hub, accessService, w, r, middleware.UserID(r))
	})
	mux.Handle("/ws", auth(wsHandler))

	// REST API
	accessHandler := accesshandler.NewHandler(accessService)

	invitationService := invitationsvc.NewInvitationService(db,
		invitationrepo.NewInvitationRepository(db), accessService.Repo)
	invitationHandler := invitationhandler.NewHandler(invitationService)

	requestService := requestsvc.NewAccessRequestService(
		requestrepo.NewAccessRequestRepository(db), accessService)
	requestHandler := requesthandler.NewHandler(requestService)

	presenceHandler := presencehandler.NewHandler(presenceService)

	mux.Handle("/api/documents/create", auth(http.HandlerFunc(accessHandler.CreateDocument)))
	mux.Handle("/api/documents/get", auth(http.HandlerFunc(accessHandler.GetDocument)))
	mux.Handle("/api/documents", auth(http.HandlerFunc(accessHandler.GetDocuments)))
	mux.Handle("/api/documents/shared", auth(http.HandlerFunc(accessHandler.GetSharedDocuments)))
	mux.Handle("/api/documents/trash", auth(http.HandlerFunc(accessHandler.GetTrash)))
	mux.Handle("/api/documents/update", auth(http.HandlerFunc(accessHandler.UpdateDocument)))
	mux.Handle("/api/documents/archive", auth(http.HandlerFunc(accessHandler.ArchiveDocument)))
	mux.Handle("/api/documents/restore", auth(http.HandlerFunc(accessHandler.RestoreDocument)))
	mux.Handle("/api/documents/delete", auth(http.HandlerFunc(accessHandler.DeleteDocument)))
	mux.Handle("/api/documents/access/grant", auth(http.HandlerFunc(accessHandler.GrantAccess)))
	mux.Handle("/api/documents/access/revoke", auth(http.HandlerFunc(accessHandler.RevokeAccess)))
	mux.Handle("/api/documents/access", auth(http.HandlerFunc(accessHandler.GetAccessList)))

	mux.Handle("/api/invitations/create", auth(http.HandlerFunc(invitationHandler.Create)))
	mux.Handle("/api/invitations", auth(http.HandlerFunc(invitationHandler.ListForDocument)))
	mux.Handle("/api/invitations/inbox", auth(http.HandlerFunc(invitationHandler.Inbox)))
	mux.Handle("/api/invitations/accept", auth(http.HandlerFunc(invitationHandler.Accept)))
	mux.Handle("/api/invitations/decline", auth(http.HandlerFunc(invitationHandler.Decline)))
	mux.Handle("/api/invitations/delete", auth(http.HandlerFunc(invitationHandler.Delete)))

	mux.Handle("/api/requests/create", auth(http.HandlerFunc(requestHandler.Create)))
	mux.Handle("/api/requests", auth(http.HandlerFunc(requestHandler.ListForOwner)))
	mux.Handle("/api/requests/resolve", auth(http.HandlerFunc(requestHandler.Resolve)))
	mux.Handle("/api/requests/delete", auth(http.HandlerFunc(requestHandler.Reject)))

	mux.Handle("/api/presence/heartbeat", auth(http.HandlerFunc(presenceHandler.Heartbeat)))
	mux.Handle("/api/presence", auth(http.HandlerFunc(presenceHandler.ListLive)))

	return middleware.CORSMiddleware(mux)
}
