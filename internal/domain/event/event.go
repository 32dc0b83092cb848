package event

// Creator references the user that owns an event.
type Creator struct {
	ID    int    `json:"userid"`
	Name  string `json:"user"`
	Email string `json:"email"`
}

// Event is a registration-accepting event. JSON field names follow the
// service's wire format.
type Event struct {
	ID          string  `json:"eventoid"`
	Title       string  `json:"titulo"`
	Description string  `json:"descriçao"`
	EndDate     string  `json:"data_termino"`
	ImageURL    string  `json:"image,omitempty"`
	Creator     Creator `json:"criador"`
}

// Registration is one person signed up for an event. A registration belongs
// to exactly one event.
type Registration struct {
	ID           string `json:"registro_id"`
	EventID      string `json:"eventoid"`
	Name         string `json:"nome"`
	Email        string `json:"email"`
	Phone        string `json:"telefone"`
	RegisteredAt string `json:"data_inscricao"`
}
