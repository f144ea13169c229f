package domain

import "time"

// Classification enumerates the legal categories of a manifestation.
type Classification string

const (
	ClassificationComplaint    Classification = "reclamacao"
	ClassificationDenunciation Classification = "denuncia"
	ClassificationPraise       Classification = "elogio"
	ClassificationSuggestion   Classification = "sugestao"
	ClassificationInformation  Classification = "informacao"
	ClassificationRequest      Classification = "solicitacao"
)

// ValidClassification reports whether the value is a known classification.
func ValidClassification(c Classification) bool {
	switch c {
	case ClassificationComplaint, ClassificationDenunciation, ClassificationPraise,
		ClassificationSuggestion, ClassificationInformation, ClassificationRequest:
		return true
	}
	return false
}

// ComplaintStatus enumerates lifecycle states of a complaint.
type ComplaintStatus string

const (
	StatusPending    ComplaintStatus = "pendente"
	StatusReceived   ComplaintStatus = "recebida"
	StatusInProgress ComplaintStatus = "em_processamento"
	StatusCompleted  ComplaintStatus = "concluida"
	StatusRejected   ComplaintStatus = "rejeitada"
)

// ValidStatus reports whether the value is a known status.
func ValidStatus(s ComplaintStatus) bool {
	switch s {
	case StatusPending, StatusReceived, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status closes the complaint.
func (s ComplaintStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransition reports whether an admin may move a complaint from s to next.
// Forward jumps are allowed (an admin can conclude a pending complaint in one
// reply); only terminal states are frozen.
func (s ComplaintStatus) CanTransition(next ComplaintStatus) bool {
	if !ValidStatus(next) {
		return false
	}
	return !s.IsTerminal()
}

// Complaint is the aggregate for citizen manifestations.
type Complaint struct {
	ID             string
	Protocol       string
	Narrative      string
	Classification Classification
	Supplementary  map[string]any
	Anonymous      bool
	Status         ComplaintStatus
	SubjectID      string
	UserID         *string
	Subject        *Subject
	Attachments    []Attachment
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	CompletedAt    *time.Time
}

// Attachment stores metadata for a file linked to a complaint.
type Attachment struct {
	ID          string
	ComplaintID string
	FileURL     string
	ContentType string
	SizeBytes   int64
	UploadedAt  time.Time
}
