package admin

// Decision is the outcome an administrator chooses for a pending doctor.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Stats is the admin dashboard summary. Doctors counts approved doctors only.
type Stats struct {
	Patients       int `json:"patients"`
	Doctors        int `json:"doctors"`
	PendingDoctors int `json:"pending_doctors"`
	Admins         int `json:"admins"`
	Assignments    int `json:"assignments"`
	Records        int `json:"records"`
	AlertsSent     int `json:"alerts_sent"`
	AlertsSeen     int `json:"alerts_seen"`
}
