package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/user"
	"github.com/chatgrid/chatgrid/internal/service"
)

// apiResponseBody is the envelope the identity router's handlers use,
// success or error: {"status_code": ..., "data": ...}. Requests rejected by
// RequireBearerAuth get the plain errorResponse envelope instead, and a
// successful delete is a 204 with no body.
type apiResponseBody struct {
	StatusCode int `json:"status_code"`
	Data       any `json:"data"`
}

type apiErrorData struct {
	Message string `json:"message"`
}

func writeAPISuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponseBody{StatusCode: status, Data: data})
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, apiResponseBody{StatusCode: status, Data: apiErrorData{Message: message}})
}

func writeAPIDomainError(w http.ResponseWriter, err error) {
	writeAPIError(w, statusFor(err), err.Error())
}

// IdentityRouter mounts the identity service's REST surface: account
// creation, login, and profile maintenance.
type IdentityRouter struct {
	users *service.UserService
	jwt   *credential.JWTHandler
}

func NewIdentityRouter(users *service.UserService, jwt *credential.JWTHandler) *IdentityRouter {
	return &IdentityRouter{users: users, jwt: jwt}
}

func (ir *IdentityRouter) Mount(r chi.Router) {
	r.Post("/api/auth/login", ir.login)
	r.Post("/api/users", ir.createUser)

	r.Group(func(r chi.Router) {
		r.Use(RequireBearerAuth(ir.jwt))
		r.Get("/api/users/{user_id}", ir.getUser)
		r.Patch("/api/users/{user_id}", ir.updateUser)
		r.Delete("/api/users/{user_id}", ir.deleteUser)
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  userDTO `json:"user"`
}

type userDTO struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserDTO(u user.User) userDTO {
	return userDTO{ID: u.ID.String(), Username: u.Username.String(), Email: u.Email.String()}
}

func (ir *IdentityRouter) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	username, err := user.NewUsername(req.Username)
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	u, token, err := ir.users.Authenticate(r.Context(), username, req.Password)
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	writeAPISuccess(w, http.StatusOK, loginResponse{Token: token, User: toUserDTO(u)})
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ir *IdentityRouter) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	username, err := user.NewUsername(req.Username)
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}
	email, err := user.NewEmailAddress(req.Email)
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	created, err := ir.users.Create(r.Context(), user.CreateCommand{Username: username, Email: email, Password: req.Password})
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	writeAPISuccess(w, http.StatusCreated, toUserDTO(created))
}

func (ir *IdentityRouter) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := user.ParseID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	u, err := ir.users.Get(r.Context(), id)
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	writeAPISuccess(w, http.StatusOK, toUserDTO(u))
}

type updateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (ir *IdentityRouter) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := user.ParseID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	actor, _ := UserIDFromContext(r.Context())
	if actor != id {
		writeAPIError(w, http.StatusForbidden, "cannot modify another user's account")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	var patch user.UpdatePatch
	if req.Username != nil {
		name, err := user.NewUsername(*req.Username)
		if err != nil {
			writeAPIDomainError(w, err)
			return
		}
		patch.Username = &name
	}
	if req.Email != nil {
		email, err := user.NewEmailAddress(*req.Email)
		if err != nil {
			writeAPIDomainError(w, err)
			return
		}
		patch.Email = &email
	}
	if req.Password != nil {
		patch.Password = req.Password
	}

	updated, err := ir.users.Update(r.Context(), id, patch)
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	writeAPISuccess(w, http.StatusOK, toUserDTO(updated))
}

func (ir *IdentityRouter) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := user.ParseID(chi.URLParam(r, "user_id"))
	if err != nil {
		writeAPIDomainError(w, err)
		return
	}

	actor, _ := UserIDFromContext(r.Context())
	if actor != id {
		writeAPIError(w, http.StatusForbidden, "cannot delete another user's account")
		return
	}

	if err := ir.users.Delete(r.Context(), id); err != nil {
		writeAPIDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
