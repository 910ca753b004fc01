package models

// Credentials log a user in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration creates an account.
type Registration struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        Role   `json:"role"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// AuthResult is returned by login and token refresh.
type AuthResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken,omitempty"`
	User         User   `json:"user"`
}

// PasswordChange is a user changing their own password.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// PasswordResetConfirm completes a forgotten-password flow.
type PasswordResetConfirm struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Donation is a recorded donation.
type Donation struct {
	ID            string  `json:"_id"`
	Amount        float64 `json:"amount"`
	CampaignID    string  `json:"campaignId,omitempty"`
	CampaignTitle string  `json:"campaignTitle,omitempty"`
	DonorName     string  `json:"donorName,omitempty"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
	Status        string  `json:"status,omitempty"`
	CreatedAt     string  `json:"createdAt,omitempty"`
}

// DonationRequest is submitted by the donation form.
type DonationRequest struct {
	CampaignID    string  `json:"campaignId,omitempty"`
	Amount        float64 `json:"amount"`
	DonorName     string  `json:"donorName"`
	DonorEmail    string  `json:"donorEmail"`
	DonorPhone    string  `json:"donorPhone,omitempty"`
	PAN           string  `json:"panNumber,omitempty"`
	Claim80G      bool    `json:"claim80G"`
	Anonymous     bool    `json:"isAnonymous"`
	Message       string  `json:"message,omitempty"`
	PaymentMethod string  `json:"paymentMethod"`
}

// PaymentRequest asks the backend to process a pending donation.
type PaymentRequest struct {
	DonationID    string  `json:"donationId"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"paymentMethod"`
}

// PublicStats are the headline numbers on the home page.
type PublicStats struct {
	TotalRaised    float64 `json:"totalRaised"`
	TotalCampaigns int     `json:"totalCampaigns"`
	TotalDonors    int     `json:"totalDonors"`
	TotalNGOs      int     `json:"totalNgos"`
}

// ContactMessage is sent from the contact page.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Task is an item in the user's task manager.
type Task struct {
	ID               string     `json:"_id,omitempty"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	DueDate          string     `json:"dueDate"`
	DueTime          string     `json:"dueTime,omitempty"`
	Priority         string     `json:"priority"`
	Status           TaskStatus `json:"status"`
	Category         string     `json:"category"`
	ReminderBefore   int        `json:"reminderBefore,omitempty"`
	IsRecurring      bool       `json:"isRecurring,omitempty"`
	RecurringType    string     `json:"recurringType,omitempty"`
	RecurringEndDate string     `json:"recurringEndDate,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	CreatedBy        any        `json:"createdBy,omitempty"`
	CompletedAt      string     `json:"completedAt,omitempty"`
	CreatedAt        string     `json:"createdAt,omitempty"`
	UpdatedAt        string     `json:"updatedAt,omitempty"`
	IsOverdue        bool       `json:"isOverdue,omitempty"`
}

// TaskStats counts tasks per status.
type TaskStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in-progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
	Overdue    int `json:"overdue"`
}

// TaskFilter narrows the task list.
type TaskFilter struct {
	Status   string
	Priority string
	Category string
	From     string
	To       string
}
