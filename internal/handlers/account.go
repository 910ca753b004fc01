package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/logger"
	"donationhub/internal/models"
	"donationhub/internal/session"
)

var signupRoles = []models.Role{models.RoleDonor, models.RoleNGO, models.RoleCompany}

type loginData struct {
	Email string
	Next  string
	Error string
}

// LoginPage shows the login form. Visitors who are already signed in go
// straight on.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := r.URL.Query().Get("next")
	if s, ok := session.FromContext(r.Context()); ok {
		http.Redirect(w, r, landingPage(s.Role, next), http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login.html", "Log In", loginData{Next: localPath(next, "")})
}

// Login exchanges credentials for a token and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	creds := models.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	data := loginData{Email: creds.Email, Next: localPath(r.PostFormValue("next"), "")}

	if creds.Email == "" || creds.Password == "" {
		data.Error = "Email and password are required."
		h.render(w, r, http.StatusUnprocessableEntity, "login.html", "Log In", data)
		return
	}

	auth, err := h.API.Auth.Login(r.Context(), creds)
	if err != nil {
		logger.InfoContext(r.Context(), "login failed", "email", creds.Email, "error", err)
		data.Error = apperrors.Message(err)
		status := http.StatusUnauthorized
		if !errors.Is(err, apperrors.ErrUnauthorized) && !errors.Is(err, apperrors.ErrInvalidInput) {
			status = http.StatusBadGateway
		}
		h.render(w, r, status, "login.html", "Log In", data)
		return
	}

	if _, err := h.Sessions.Begin(w, r, auth); err != nil {
		logger.ErrorContext(r.Context(), "failed to start session", "error", err)
		data.Error = "We couldn't sign you in. Please try again."
		h.render(w, r, http.StatusInternalServerError, "login.html", "Log In", data)
		return
	}

	logger.InfoContext(r.Context(), "user logged in", "user", auth.User.ID, "role", auth.User.Role)
	h.redirectWithFlash(w, r, landingPage(auth.User.Role, data.Next), "success", "Welcome back, "+firstName(auth.User.Name)+"!")
}

// landingPage is where a user goes after logging in.
func landingPage(role models.Role, next string) string {
	fallback := "/"
	if role == models.RoleAdmin {
		fallback = "/admin/dashboard"
	}
	return localPath(next, fallback)
}

func firstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "there"
}

type signupData struct {
	Form  models.Registration
	Roles []models.Role
	Error string
}

// SignupPage shows the registration form.
func (h *Handler) SignupPage(w http.ResponseWriter, r *http.Request) {
	form := models.Registration{Role: models.RoleDonor}
	if role := models.Role(r.URL.Query().Get("role")); validSignupRole(role) {
		form.Role = role
	}
	h.render(w, r, http.StatusOK, "signup.html", "Sign Up", signupData{Form: form, Roles: signupRoles})
}

// Signup registers an account. When the backend returns a token the user is
// signed in at once; otherwise the account awaits approval.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	reg := models.Registration{
		FullName:    strings.TrimSpace(r.PostFormValue("fullName")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Password:    r.PostFormValue("password"),
		Role:        models.Role(r.PostFormValue("role")),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phoneNumber")),
	}
	data := signupData{Form: reg, Roles: signupRoles}
	data.Form.Password = ""

	switch {
	case reg.FullName == "":
		data.Error = "Please enter your full name."
	case !validEmail(reg.Email):
		data.Error = "Please enter a valid email address."
	case len(reg.Password) < 6:
		data.Error = "Password must be at least 6 characters."
	case !validSignupRole(reg.Role):
		data.Error = "Please choose an account type."
	}
	if data.Error != "" {
		h.render(w, r, http.StatusUnprocessableEntity, "signup.html", "Sign Up", data)
		return
	}

	auth, err := h.API.Auth.Register(r.Context(), reg)
	if err != nil {
		logger.InfoContext(r.Context(), "registration failed", "email", reg.Email, "error", err)
		data.Error = apperrors.Message(err)
		h.render(w, r, http.StatusUnprocessableEntity, "signup.html", "Sign Up", data)
		return
	}

	if auth.Token == "" {
		h.redirectWithFlash(w, r, "/login", "success", "Your account has been created. You can log in once it is approved.")
		return
	}
	if _, err := h.Sessions.Begin(w, r, auth); err != nil {
		logger.ErrorContext(r.Context(), "failed to start session", "error", err)
		h.redirectWithFlash(w, r, "/login", "success", "Your account has been created. Please log in.")
		return
	}
	h.redirectWithFlash(w, r, "/", "success", "Welcome to DonationHub, "+firstName(reg.FullName)+"!")
}

func validSignupRole(role models.Role) bool {
	for _, r := range signupRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Logout tells the backend, then ends the local session whatever it said.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		if err := h.API.Auth.Logout(r.Context()); err != nil {
			logger.DebugContext(r.Context(), "backend logout failed", "error", err)
		}
		h.Settings.Forget(sess.ID)
	}
	if err := h.Sessions.End(w, r); err != nil {
		logger.WarnContext(r.Context(), "failed to end session", "error", err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

var taskStatuses = []models.TaskStatus{models.TaskPending, models.TaskInProgress, models.TaskCompleted, models.TaskCancelled}

type tasksData struct {
	Tasks    []models.Task
	Stats    models.TaskStats
	Status   string
	Statuses []models.TaskStatus
	Err      string
}

// TasksPage lists the user's tasks, optionally filtered by ?status=.
func (h *Handler) TasksPage(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if !models.TaskStatus(status).Valid() {
		status = ""
	}
	data := tasksData{Status: status, Statuses: taskStatuses}

	tasks, err := h.API.Tasks.List(r.Context(), models.TaskFilter{Status: status})
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.renderError(w, r, err)
			return
		}
		logger.ErrorContext(r.Context(), "failed to load tasks", "error", err)
		data.Err = "Failed to load tasks. " + apperrors.Message(err)
	}
	data.Tasks = tasks

	stats, err := h.API.Tasks.Stats(r.Context())
	if err != nil {
		logger.WarnContext(r.Context(), "failed to load task stats", "error", err)
	}
	data.Stats = stats

	h.render(w, r, http.StatusOK, "tasks.html", "Tasks", data)
}

// CreateTask adds a task from the form.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	t := models.Task{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		DueDate:     r.PostFormValue("dueDate"),
		DueTime:     r.PostFormValue("dueTime"),
		Priority:    r.PostFormValue("priority"),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Status:      models.TaskPending,
	}
	if t.Title == "" || t.DueDate == "" {
		h.redirectWithFlash(w, r, "/tasks", "error", "A task needs a title and a due date.")
		return
	}

	if _, err := h.API.Tasks.Create(r.Context(), t); err != nil {
		h.taskFailed(w, r, "create", err)
		return
	}
	h.redirectWithFlash(w, r, "/tasks", "success", "Task added.")
}

// UpdateTaskStatus moves a task to the posted status.
func (h *Handler) UpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "taskId")
	status := models.TaskStatus(r.PostFormValue("status"))
	if _, err := h.API.Tasks.UpdateStatus(r.Context(), id, status); err != nil {
		h.taskFailed(w, r, "update", err)
		return
	}
	h.redirectWithFlash(w, r, "/tasks", "success", "Task updated.")
}

// DeleteTask removes a task.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Tasks.Delete(r.Context(), chi.URLParam(r, "taskId")); err != nil {
		h.taskFailed(w, r, "delete", err)
		return
	}
	h.redirectWithFlash(w, r, "/tasks", "success", "Task deleted.")
}

func (h *Handler) taskFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, apperrors.ErrUnauthorized) {
		h.renderError(w, r, err)
		return
	}
	logger.WarnContext(r.Context(), "task "+op+" failed", "error", err)
	h.redirectWithFlash(w, r, "/tasks", "error", "Failed to "+op+" task: "+apperrors.Message(err))
}
