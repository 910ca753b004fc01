package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"donationhub/internal/middleware"
	"donationhub/internal/models"
)

const apiTimeout = 60 * time.Second

// Routes returns the page, admin and JSON routes. Sessions are loaded for
// every request; static files are mounted by the caller.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.Sessions.Load)

	r.Get("/", h.HomePage)
	r.Get("/explore", h.ExplorePage)
	r.Get("/campaign/{campaignId}", h.CampaignPage)
	r.Get("/donate", h.DonatePage)
	r.Post("/donate", h.SubmitDonation)
	r.Get("/profile/{username}", h.ProfilePage)
	r.Get("/share/profile/{shareId}", h.SharedProfilePage)
	r.Get("/share/campaign/{shareId}", h.SharedCampaignPage)
	r.Get("/about", h.InfoPage("about.html", "About Us"))
	r.Get("/legal", h.InfoPage("legal.html", "Legal"))
	r.Get("/join-us", h.InfoPage("join_us.html", "Join Us"))
	r.Get("/contact", h.ContactPage)
	r.Post("/contact", h.SubmitContact)
	r.Post("/newsletter", h.Subscribe)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/signup", h.SignupPage)
	r.Post("/signup", h.Signup)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/tasks", h.TasksPage)
		r.Post("/tasks", h.CreateTask)
		r.Post("/tasks/{taskId}/status", h.UpdateTaskStatus)
		r.Post("/tasks/{taskId}/delete", h.DeleteTask)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
		})
		r.Get("/dashboard", h.DashboardPage)

		r.Get("/users", h.UsersPage)
		r.Get("/users/{userId}", h.UserPage)
		r.Get("/users/{userId}/customize", h.CustomizeSharePage)
		r.Post("/users/{userId}/customize", h.CreateProfileShare)
		r.Post("/users/{userId}/approve", h.ApproveUser)
		r.Post("/users/{userId}/reject", h.RejectUser)
		r.Post("/users/{userId}/toggle", h.ToggleUser)
		r.Post("/users/{userId}/delete", h.DeleteUser)

		r.Get("/campaigns", h.CampaignsPage)
		r.Get("/campaigns/new", h.NewCampaignPage)
		r.Post("/campaigns/new", h.CreateCampaign)
		r.Get("/campaigns/{campaignId}", h.AdminCampaignPage)
		r.Get("/campaigns/{campaignId}/edit", h.EditCampaignPage)
		r.Post("/campaigns/{campaignId}/edit", h.UpdateCampaign)
		r.Post("/campaigns/{campaignId}/toggle", h.ToggleCampaign)
		r.Post("/campaigns/{campaignId}/delete", h.DeleteCampaign)
		r.Get("/campaigns/{campaignId}/share", h.CampaignSharePage)
		r.Post("/campaigns/{campaignId}/share", h.CreateCampaignShare)

		r.Get("/notices", h.NoticesPage)
		r.Post("/notices", h.CreateNotice)
		r.Post("/notices/{noticeId}", h.UpdateNotice)
		r.Post("/notices/{noticeId}/delete", h.DeleteNotice)

		r.Get("/reports/{reportType}", h.ReportPage)

		r.Get("/settings", h.SettingsPage)
		r.Post("/settings/{action}", h.SaveSettings)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CORS(h.Cfg.AllowedOrigins))
		r.Use(middleware.Timeout(apiTimeout))

		r.Get("/campaigns", h.CampaignsJSON)
		r.Get("/assistant", h.AssistantGreeting)
		r.Post("/assistant", h.AssistantReply)
	})

	r.NotFound(h.NotFoundPage)
	return r
}
