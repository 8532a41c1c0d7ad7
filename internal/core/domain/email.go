package domain

import "time"

// Recipient identifies who receives an email.
type Recipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// EmailJob is one transactional email. It is either dispatched or it fails;
// nothing about it is persisted.
type EmailJob struct {
	To       Recipient
	Template string
	Subject  string
	Data     map[string]any
}

// Complete reports whether the job names both a recipient and a template.
func (j EmailJob) Complete() bool {
	return j.To.Email != "" && j.Template != ""
}

// RenderContext is the value templates are rendered against: the job data
// plus the addressing fields.
func (j EmailJob) RenderContext() map[string]any {
	ctx := make(map[string]any, len(j.Data)+3)
	for k, v := range j.Data {
		ctx[k] = v
	}
	ctx["to"] = map[string]any{"email": j.To.Email, "name": j.To.Name}
	ctx["subject"] = j.Subject
	ctx["template"] = j.Template
	return ctx
}

// Receipt acknowledges a dispatched email.
type Receipt struct {
	ID       string `json:"_id"`
	Status   string `json:"status"`
	Accepted int    `json:"total_accepted_recipients,omitempty"`
	Rejected int    `json:"total_rejected_recipients,omitempty"`
}

// TransmissionInfo is the provider's delivery record for a transmission.
type TransmissionInfo struct {
	ID          string     `json:"id"`
	State       string     `json:"state"`
	Description string     `json:"description,omitempty"`
	Recipients  int        `json:"num_recipients,omitempty"`
	Generated   int        `json:"num_generated,omitempty"`
	Failed      int        `json:"num_failed_gen,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}
