package model

type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type EventListResponse struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
}

type EventEnvelope struct {
	Message string `json:"message"`
	Event   *Event `json:"event"`
}

type EventRegistrationResponse struct {
	Message        string     `json:"message"`
	Event          *Event     `json:"event"`
	RegisteredUser PublicUser `json:"registeredUser"`
}
