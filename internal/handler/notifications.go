package handler

import "net/http"

// notificationConfigResponse reports delivery configuration without exposing
// credentials.
type notificationConfigResponse struct {
	EmailConfigured bool   `json:"email_configured"`
	SMTPHost        string `json:"smtp_host,omitempty"`
	SMTPPort        int    `json:"smtp_port,omitempty"`
	FromEmail       string `json:"from_email,omitempty"`
	KafkaConfigured bool   `json:"kafka_configured"`
}

func (h *Handler) notificationConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, notificationConfigResponse{
		EmailConfigured: h.emailConfig.Configured(),
		SMTPHost:        h.emailConfig.Host,
		SMTPPort:        h.emailConfig.Port,
		FromEmail:       h.emailConfig.FromEmail,
		KafkaConfigured: h.kafkaConfigured,
	})
}
